// Package reading parses and validates the seven agronomic readings that feed
// the prediction engines.
package reading

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"mkulima/pkg/apperr"
)

// Reading names in the engine's positional order.
const (
	N           = "N"
	P           = "P"
	K           = "K"
	Temperature = "temperature"
	Humidity    = "humidity"
	PH          = "ph"
	Rainfall    = "rainfall"
)

// Names lists every reading in positional order.
var Names = []string{N, P, K, Temperature, Humidity, PH, Rainfall}

// Values maps reading name to value.
type Values map[string]float64

// Set is a complete, validated group of readings.
type Set struct {
	N           float64 `json:"N"`
	P           float64 `json:"P"`
	K           float64 `json:"K"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

// Positional returns the readings in engine argument order.
func (s Set) Positional() []float64 {
	return []float64{s.N, s.P, s.K, s.Temperature, s.Humidity, s.PH, s.Rainfall}
}

// Values converts the set back to a name map.
func (s Set) Values() Values {
	out := make(Values, len(Names))
	for i, v := range s.Positional() {
		out[Names[i]] = v
	}
	return out
}

// Validate checks that every named reading is present and finite. With no
// names it checks all seven. The error lists the offending names in order.
func Validate(v Values, names ...string) error {
	if len(names) == 0 {
		names = Names
	}
	var bad []string
	for _, n := range names {
		x, ok := v[n]
		if !ok || math.IsNaN(x) || math.IsInf(x, 0) {
			bad = append(bad, n)
		}
	}
	if len(bad) > 0 {
		return apperr.MissingFields(bad...)
	}
	return nil
}

// ToSet validates all seven readings and packs them.
func ToSet(v Values) (Set, error) {
	if err := Validate(v); err != nil {
		return Set{}, err
	}
	return Set{
		N: v[N], P: v[P], K: v[K],
		Temperature: v[Temperature], Humidity: v[Humidity],
		PH: v[PH], Rainfall: v[Rainfall],
	}, nil
}

// ParseFloat is the explicit text-to-number step. It reports failure instead
// of yielding a sentinel.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Coerce accepts JSON-decoded numbers or numeric strings.
func Coerce(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		return ParseFloat(x)
	}
	return 0, false
}

// Parse converts raw text values and validates the named readings (all seven
// when no names are given). Unparseable entries are reported as missing.
func Parse(raw map[string]string, names ...string) (Values, error) {
	out := Values{}
	for k, s := range raw {
		if f, ok := ParseFloat(s); ok {
			out[k] = f
		}
	}
	return out, Validate(out, names...)
}

// FromAny is Parse for loosely typed JSON bodies.
func FromAny(raw map[string]any, names ...string) (Values, error) {
	if len(names) == 0 {
		names = Names
	}
	out := Values{}
	for _, n := range names {
		if f, ok := Coerce(raw[n]); ok {
			out[n] = f
		}
	}
	return out, Validate(out, names...)
}
