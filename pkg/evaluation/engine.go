// Package evaluation invokes the external prediction engines and turns their
// output into typed results. The engines themselves are opaque.
package evaluation

import (
	"context"
	"strings"

	"mkulima/pkg/apperr"
	"mkulima/pkg/reading"
)

// Prediction values the suitability engine may emit.
const (
	Suitable    = "suitable"
	NotSuitable = "not suitable"
)

// Flag statuses. NoData is rendered for a reading absent from the flag map.
const (
	FlagOK   = "ok"
	FlagLow  = "low"
	FlagHigh = "high"
	NoData   = "no data"
)

// Result is one suitability verdict. It lives for a single request.
type Result struct {
	Crop      string            `json:"crop"`
	Stage     string            `json:"stage"`
	Suitable  bool              `json:"suitable"`
	Score     float64           `json:"suitability_score"`
	Threshold *float64          `json:"threshold,omitempty"`
	Flags     map[string]string `json:"flags"`
	Advice    string            `json:"advice"`
}

// Prediction renders the verdict the way the engine spells it.
func (r *Result) Prediction() string {
	if r.Suitable {
		return Suitable
	}
	return NotSuitable
}

// Flag returns the status of one reading or NoData.
func (r *Result) Flag(name string) string {
	if s, ok := r.Flags[name]; ok {
		return s
	}
	return NoData
}

// OffRange lists readings flagged low or high, in positional order.
func (r *Result) OffRange() []string {
	var out []string
	for _, n := range reading.Names {
		if s := r.Flags[n]; s == FlagLow || s == FlagHigh {
			out = append(out, n+" "+s)
		}
	}
	return out
}

// Engine evaluates crop suitability for a stage and a set of readings.
type Engine interface {
	Evaluate(ctx context.Context, crop, stage string, r reading.Set) (*Result, error)
}

// Recommendation is the quick crop recommendation made without crop or
// stage context.
type Recommendation struct {
	Prediction   string   `json:"prediction"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Alternatives []string `json:"alternatives"`
	Message      string   `json:"message"`
}

// Recommender suggests a crop from readings alone.
type Recommender interface {
	Recommend(ctx context.Context, r reading.Set) (*Recommendation, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, crop, stage string, r reading.Set) (*Result, error)

func (f EngineFunc) Evaluate(ctx context.Context, crop, stage string, r reading.Set) (*Result, error) {
	return f(ctx, crop, stage, r)
}

// RecommenderFunc adapts a function to Recommender.
type RecommenderFunc func(ctx context.Context, r reading.Set) (*Recommendation, error)

func (f RecommenderFunc) Recommend(ctx context.Context, r reading.Set) (*Recommendation, error) {
	return f(ctx, r)
}

// prepare checks the preconditions of an evaluation and normalizes the crop.
func prepare(crop, stage string, r reading.Set) (string, string, error) {
	crop = strings.ToLower(strings.TrimSpace(crop))
	stage = strings.TrimSpace(stage)
	var missing []string
	if crop == "" {
		missing = append(missing, "crop")
	}
	if stage == "" {
		missing = append(missing, "stage")
	}
	if len(missing) > 0 {
		return "", "", apperr.MissingFields(missing...)
	}
	if err := reading.Validate(r.Values()); err != nil {
		return "", "", err
	}
	return crop, stage, nil
}
