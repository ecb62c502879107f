package evaluation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"mkulima/pkg/apperr"
	"mkulima/pkg/reading"
)

// Observer logs and counts every engine call.
type Observer struct {
	log      *zap.Logger
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

func NewObserver(log *zap.Logger, reg prometheus.Registerer) *Observer {
	o := &Observer{
		log: log,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mkulima", Subsystem: "engine", Name: "calls_total",
			Help: "Prediction engine calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mkulima", Subsystem: "engine", Name: "call_seconds",
			Help:    "Prediction engine call latency.",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30, 60},
		}, []string{"op"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mkulima", Subsystem: "engine", Name: "inflight",
			Help: "Engine calls currently running or waiting for a slot.",
		}),
	}
	if reg != nil {
		reg.MustRegister(o.calls, o.duration, o.inflight)
	}
	return o
}

func (o *Observer) record(op string, start time.Time, fields []zap.Field, err error) {
	took := time.Since(start)
	outcome := apperr.Kind(err)
	o.calls.WithLabelValues(op, outcome).Inc()
	o.duration.WithLabelValues(op).Observe(took.Seconds())

	fields = append(fields, zap.String("outcome", outcome), zap.Duration("took", took))
	var ee *apperr.EngineError
	if errors.As(err, &ee) {
		o.log.Warn("engine call failed", append(fields, zap.String("detail", ee.Detail), zap.Error(err))...)
		return
	}
	o.log.Info("engine call", fields...)
}

// Engine wraps e with logging and metrics.
func (o *Observer) Engine(e Engine) Engine {
	return EngineFunc(func(ctx context.Context, crop, stage string, r reading.Set) (*Result, error) {
		o.inflight.Inc()
		defer o.inflight.Dec()
		start := time.Now()
		res, err := e.Evaluate(ctx, crop, stage, r)
		o.record("evaluate", start, []zap.Field{
			zap.String("call_id", uuid.NewString()),
			zap.String("crop", crop),
			zap.String("stage", stage),
		}, err)
		return res, err
	})
}

// Recommender wraps r with logging and metrics.
func (o *Observer) Recommender(rec Recommender) Recommender {
	return RecommenderFunc(func(ctx context.Context, r reading.Set) (*Recommendation, error) {
		o.inflight.Inc()
		defer o.inflight.Dec()
		start := time.Now()
		out, err := rec.Recommend(ctx, r)
		o.record("recommend", start, []zap.Field{zap.String("call_id", uuid.NewString())}, err)
		return out, err
	})
}
