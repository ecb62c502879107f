package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"mkulima/pkg/apperr"
	"mkulima/pkg/reading"
)

// PythonEngine runs the engine scripts as one-shot subprocesses:
//
//	<python> <evalScript> crop stage N P K temperature humidity ph rainfall
//	<python> <recommendScript> N P K temperature humidity ph rainfall
//
// Each script prints one JSON document on stdout. No retry is attempted.
type PythonEngine struct {
	python          string
	dir             string
	evalScript      string
	recommendScript string
}

func NewPythonEngine(python, dir, evalScript, recommendScript string) *PythonEngine {
	if python == "" {
		python = "python3"
	}
	return &PythonEngine{python: python, dir: dir, evalScript: evalScript, recommendScript: recommendScript}
}

type evalDoc struct {
	Prediction *string           `json:"prediction"`
	Score      *float64          `json:"suitability_score"`
	Threshold  *float64          `json:"threshold"`
	Flags      map[string]string `json:"flags"`
	Advice     string            `json:"advice"`
}

type recommendDoc struct {
	Prediction   string   `json:"prediction"`
	Confidence   *float64 `json:"confidence"`
	Alternatives []string `json:"alternatives"`
	Message      string   `json:"message"`
}

func (p *PythonEngine) Evaluate(ctx context.Context, crop, stage string, r reading.Set) (*Result, error) {
	crop, stage, err := prepare(crop, stage, r)
	if err != nil {
		return nil, err
	}
	args := append([]string{p.evalScript, crop, stage}, positional(r)...)
	out, err := p.run(ctx, args)
	if err != nil {
		return nil, err
	}
	return parseEval(crop, stage, out)
}

func (p *PythonEngine) Recommend(ctx context.Context, r reading.Set) (*Recommendation, error) {
	if err := reading.Validate(r.Values()); err != nil {
		return nil, err
	}
	out, err := p.run(ctx, append([]string{p.recommendScript}, positional(r)...))
	if err != nil {
		return nil, err
	}
	var doc recommendDoc
	if err := json.Unmarshal(bytes.TrimSpace(out), &doc); err != nil {
		return nil, &apperr.EngineError{Kind: apperr.BadOutput, Detail: string(out), Err: err}
	}
	if strings.TrimSpace(doc.Prediction) == "" {
		return nil, &apperr.EngineError{Kind: apperr.BadOutput, Detail: string(out), Err: errors.New("missing prediction")}
	}
	return &Recommendation{
		Prediction:   doc.Prediction,
		Confidence:   doc.Confidence,
		Alternatives: doc.Alternatives,
		Message:      doc.Message,
	}, nil
}

func (p *PythonEngine) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, p.python, args...)
	cmd.Dir = p.dir
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(ctxErr, err)
		}
		detail := stderr.String()
		if detail == "" {
			detail = stdout.String()
		}
		return nil, &apperr.EngineError{Kind: apperr.ProcessFailed, Detail: detail, Err: err}
	}
	return stdout.Bytes(), nil
}

func parseEval(crop, stage string, out []byte) (*Result, error) {
	bad := func(err error) error {
		return &apperr.EngineError{Kind: apperr.BadOutput, Detail: string(out), Err: err}
	}
	var doc evalDoc
	if err := json.Unmarshal(bytes.TrimSpace(out), &doc); err != nil {
		return nil, bad(err)
	}
	if doc.Prediction == nil {
		return nil, bad(errors.New("missing prediction"))
	}
	pred := strings.ToLower(strings.TrimSpace(*doc.Prediction))
	if pred != Suitable && pred != NotSuitable {
		return nil, bad(fmt.Errorf("unexpected prediction %q", *doc.Prediction))
	}
	if doc.Score == nil {
		return nil, bad(errors.New("missing suitability_score"))
	}

	flags := make(map[string]string, len(reading.Names))
	for _, n := range reading.Names {
		switch s := strings.ToLower(doc.Flags[n]); s {
		case FlagOK, FlagLow, FlagHigh:
			flags[n] = s
		}
	}
	return &Result{
		Crop:      crop,
		Stage:     stage,
		Suitable:  pred == Suitable,
		Score:     *doc.Score, // not re-clamped
		Threshold: doc.Threshold,
		Flags:     flags,
		Advice:    strings.TrimSpace(doc.Advice),
	}, nil
}

func positional(r reading.Set) []string {
	vs := r.Positional()
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}
