// Package session interprets the turn-based menu protocol used by feature
// phones. Nothing is kept between requests: every reply is derived from the
// accumulated answer trail the caller sends each turn.
//
// A trail is the menu choice followed by one answer per prompt, joined by
// Delimiter. While answers are missing the reply is CONTINUE with the next
// prompt; once every prompt is answered the flow's action runs and the reply
// is TERMINAL.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mkulima/entities"
	"mkulima/pkg/apperr"
	"mkulima/pkg/climate"
	"mkulima/pkg/diagnosis"
	"mkulima/pkg/evaluation"
	farmersvc "mkulima/pkg/farmer/service"
	feedbacksvc "mkulima/pkg/feedback/service"
	procsvc "mkulima/pkg/process/service"
	"mkulima/pkg/reading"
	"mkulima/pkg/weather"
)

const Delimiter = "*"

type Status string

const (
	Continue Status = "CONTINUE"
	Terminal Status = "TERMINAL"
)

type Response struct {
	Status Status `json:"status"`
	Text   string `json:"text"`
}

// Identity is the farmer account service.
type Identity interface {
	Register(ctx context.Context, in farmersvc.Registration) (*entities.Farmer, error)
	Login(ctx context.Context, farmerID, password string) (*entities.Farmer, error)
}

// Processes is the part of the process service the menu needs.
type Processes interface {
	Record(ctx context.Context, ev procsvc.Event) (*entities.CropProcess, error)
	Evaluate(ctx context.Context, crop, stage string, r reading.Set) (*evaluation.Result, error)
	List(ctx context.Context, farmerID string) ([]entities.CropProcess, error)
}

type Diagnoser interface {
	Diagnose(ctx context.Context, symptoms string) (*diagnosis.Result, error)
}

type Feedback interface {
	Submit(ctx context.Context, in feedbacksvc.Entry) (*entities.Feedback, error)
}

// Deps are the collaborators of the terminal actions. Weather and Climate
// may be nil.
type Deps struct {
	Identity    Identity
	Processes   Processes
	Recommender evaluation.Recommender
	Weather     weather.Lookup
	Climate     climate.RulesEngine
	Diagnoser   Diagnoser
	Feedback    Feedback
}

// Interpreter is safe for concurrent use; it holds no per-session state.
type Interpreter struct {
	Deps
	log *zap.Logger
}

func New(d Deps, log *zap.Logger) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interpreter{Deps: d, log: log}
}

// Menu is the root prompt.
func Menu() string { return menu }

// Interpret splits trail on Delimiter and interprets the tokens. An empty
// trail yields the root menu.
func (s *Interpreter) Interpret(ctx context.Context, trail string) Response {
	trail = strings.TrimSpace(trail)
	if trail == "" {
		return Response{Status: Continue, Text: menu}
	}
	return s.InterpretTokens(ctx, strings.Split(trail, Delimiter))
}

// InterpretTokens is Interpret on an already split trail.
func (s *Interpreter) InterpretTokens(ctx context.Context, tokens []string) Response {
	if len(tokens) == 0 {
		return Response{Status: Continue, Text: menu}
	}
	f, ok := byKey[strings.TrimSpace(tokens[0])]
	if !ok {
		return Response{Status: Continue, Text: menu}
	}
	if n := len(f.prompts); len(tokens) <= n {
		return Response{Status: Continue, Text: f.prompts[len(tokens)-1]}
	}
	return Response{Status: Terminal, Text: s.finish(ctx, f, f.bind(tokens))}
}

// bind maps tokens[1..N] onto the flow's fields. A free-text flow takes every
// token from its last field on, rejoined with spaces.
func (f *flow) bind(tokens []string) []string {
	n := len(f.prompts)
	fields := make([]string, n)
	for i := range fields {
		fields[i] = strings.TrimSpace(tokens[i+1])
	}
	if f.freeText && n > 0 {
		fields[n-1] = strings.Join(strings.Fields(strings.Join(tokens[n:], " ")), " ")
	}
	return fields
}

// finish runs the action once. Whatever happens the result is a message.
func (s *Interpreter) finish(ctx context.Context, f *flow, fields []string) (text string) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("terminal action panicked",
				zap.String("flow", f.name),
				zap.Any("panic", r),
				zap.Stack("stack"))
			text = f.failure + ": " + apperr.Describe(fmt.Errorf("panic: %v", r))
		}
	}()

	out, err := f.run(s, ctx, fields)
	if err != nil {
		s.log.Warn("terminal action failed",
			zap.String("flow", f.name),
			zap.String("kind", apperr.Kind(err)),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return f.failure + ": " + apperr.Describe(err)
	}
	s.log.Info("terminal action", zap.String("flow", f.name), zap.Duration("took", time.Since(start)))
	return out
}
