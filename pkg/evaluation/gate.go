package evaluation

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"mkulima/pkg/apperr"
	"mkulima/pkg/reading"
)

// Gate bounds engine invocations: at most max run at once and each call,
// queue wait included, is cut off after timeout. Engines wrapped by the same
// Gate share its slots.
type Gate struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

func NewGate(max int, timeout time.Duration) *Gate {
	if max <= 0 {
		max = 1
	}
	return &Gate{sem: semaphore.NewWeighted(int64(max)), timeout: timeout}
}

func (g *Gate) do(ctx context.Context, fn func(context.Context) error) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return &apperr.EngineError{Kind: apperr.ProcessFailed, Detail: "waiting for engine slot", Err: err}
	}
	defer g.sem.Release(1)
	return fn(ctx)
}

// Engine wraps e with the gate.
func (g *Gate) Engine(e Engine) Engine {
	return EngineFunc(func(ctx context.Context, crop, stage string, r reading.Set) (*Result, error) {
		if _, _, err := prepare(crop, stage, r); err != nil {
			return nil, err // invalid input never takes a slot
		}
		var res *Result
		err := g.do(ctx, func(ctx context.Context) error {
			var err error
			res, err = e.Evaluate(ctx, crop, stage, r)
			return err
		})
		return res, err
	})
}

// Recommender wraps r with the gate.
func (g *Gate) Recommender(rec Recommender) Recommender {
	return RecommenderFunc(func(ctx context.Context, r reading.Set) (*Recommendation, error) {
		if err := reading.Validate(r.Values()); err != nil {
			return nil, err
		}
		var out *Recommendation
		err := g.do(ctx, func(ctx context.Context) error {
			var err error
			out, err = rec.Recommend(ctx, r)
			return err
		})
		return out, err
	})
}
