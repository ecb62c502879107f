package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mkulima/pkg/apperr"
)

func server(t *testing.T, status int, body string) (*Client, *url.URL) {
	t.Helper()
	seen := &url.URL{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = *r.URL
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "k3y"), seen
}

func TestCurrent(t *testing.T) {
	c, seen := server(t, http.StatusOK, `{"name":"Nairobi","main":{"temp":22.5,"humidity":61,"pressure":1018},
		"wind":{"speed":3.1},"clouds":{"all":40},"weather":[{"description":"scattered clouds"}]}`)

	got, err := c.Current(context.Background(), " nairobi ")
	require.NoError(t, err)
	assert.Equal(t, &Conditions{
		City: "Nairobi", Temperature: 22.5, Humidity: 61, WindSpeed: 3.1,
		Pressure: 1018, Clouds: 40, Description: "scattered clouds",
	}, got)

	assert.Equal(t, "/data/2.5/weather", seen.Path)
	assert.Equal(t, "nairobi", seen.Query().Get("q"))
	assert.Equal(t, "k3y", seen.Query().Get("appid"))
	assert.Equal(t, "metric", seen.Query().Get("units"))
}

func TestCurrent_ProviderMessage(t *testing.T) {
	c, _ := server(t, http.StatusNotFound, `{"cod":"404","message":"city not found"}`)

	_, err := c.Current(context.Background(), "Atlantis")
	var ue *apperr.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "weather", ue.Service)
	assert.Equal(t, "city not found", apperr.Describe(err))
}

func TestCurrent_IncompleteData(t *testing.T) {
	c, _ := server(t, http.StatusOK, `{"name":"Kisumu","main":{"pressure":1000}}`)

	_, err := c.Current(context.Background(), "Kisumu")
	assert.Equal(t, "upstream", apperr.Kind(err))
	assert.Equal(t, "weather unavailable, please try again later", apperr.Describe(err))
}

func TestCurrent_FallsBackToRequestedCity(t *testing.T) {
	c, _ := server(t, http.StatusOK, `{"main":{"temp":30,"humidity":40}}`)

	got, err := c.Current(context.Background(), "Garissa")
	require.NoError(t, err)
	assert.Equal(t, "Garissa", got.City)
	assert.Empty(t, got.Description)
}

func TestCurrent_EmptyCity(t *testing.T) {
	c := New("http://127.0.0.1:1", "")
	_, err := c.Current(context.Background(), "  ")
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"city"}, ve.Fields)
}
