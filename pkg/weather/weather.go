// Package weather looks up current conditions from an OpenWeatherMap
// compatible API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mkulima/pkg/apperr"
)

const service = "weather"

// Conditions are the current readings for one city, in metric units.
type Conditions struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
	WindSpeed   float64 `json:"wind_speed"`  // m/s
	Pressure    float64 `json:"pressure"`    // hPa
	Clouds      float64 `json:"clouds"`      // %
	Description string  `json:"description"`
}

type Lookup interface {
	Current(ctx context.Context, city string) (*Conditions, error)
}

type Client struct {
	endpoint string
	key      string
	httpc    *http.Client
}

func New(endpoint, key string) *Client {
	return &Client{endpoint: strings.TrimRight(endpoint, "/"), key: key, httpc: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) Current(ctx context.Context, city string) (*Conditions, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, apperr.MissingFields("city")
	}
	q := url.Values{"q": {city}, "appid": {c.key}, "units": {"metric"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, apperr.Upstream(service, "", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, apperr.Upstream(service, "", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.Upstream(service, "", err)
	}

	var out struct {
		Name string `json:"name"`
		Main struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
			Pressure float64  `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Clouds struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Message string `json:"message"`
	}
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream(service, out.Message, fmt.Errorf("status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return nil, apperr.Upstream(service, "", decodeErr)
	}
	if out.Main.Temp == nil || out.Main.Humidity == nil {
		return nil, apperr.Upstream(service, "", fmt.Errorf("incomplete weather for %q", city))
	}
	cond := &Conditions{
		City:        out.Name,
		Temperature: *out.Main.Temp,
		Humidity:    *out.Main.Humidity,
		WindSpeed:   out.Wind.Speed,
		Pressure:    out.Main.Pressure,
		Clouds:      out.Clouds.All,
	}
	if cond.City == "" {
		cond.City = city
	}
	if len(out.Weather) > 0 {
		cond.Description = out.Weather[0].Description
	}
	return cond, nil
}
