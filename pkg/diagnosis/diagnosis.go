// Package diagnosis answers a free-text symptom description from the local
// knowledge base first and the AI collaborator second.
package diagnosis

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"mkulima/pkg/ai"
	"mkulima/pkg/apperr"
	kbsvc "mkulima/pkg/kb/service"
)

// Sources of a diagnosis.
const (
	FromKB   = "kb"
	FromAI   = "ai"
	FromChat = "chat"
)

// MinScore is the knowledge-base relevance needed to answer without the AI.
const MinScore = 0.6

type Result struct {
	Source    string   `json:"source"`
	Disease   string   `json:"disease,omitempty"`
	Remedies  []string `json:"remedies,omitempty"`
	Reply     string   `json:"reply,omitempty"`
	Article   string   `json:"article,omitempty"`
	SourceURL string   `json:"source_url,omitempty"`
}

// Text renders the result for a one-screen reply.
func (r *Result) Text() string {
	switch {
	case r.Disease != "":
		s := "Likely: " + r.Disease + "."
		if len(r.Remedies) > 0 {
			s += " Remedies: " + strings.Join(r.Remedies, "; ") + "."
		}
		return s
	case r.Article != "":
		return r.Article + ": " + excerpt(r.Reply, 140)
	}
	return r.Reply
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]kbsvc.Hit, error)
}

type Service struct {
	kb  Searcher
	ai  ai.Client
	log *zap.Logger
}

// New builds the chain; kb may be nil.
func New(kb Searcher, client ai.Client, log *zap.Logger) *Service {
	return &Service{kb: kb, ai: client, log: log}
}

func (s *Service) Diagnose(ctx context.Context, symptoms string) (*Result, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return nil, apperr.MissingFields("symptoms")
	}

	var kbCtx []string
	if s.kb != nil {
		hits, err := s.kb.Search(ctx, symptoms, 3)
		if err != nil {
			s.log.Warn("kb search failed", zap.Error(err))
		}
		if len(hits) > 0 && hits[0].Score >= MinScore {
			h := hits[0]
			return &Result{Source: FromKB, Article: h.DocTitle, Reply: h.Text, SourceURL: h.SourceURL}, nil
		}
		for _, h := range hits {
			kbCtx = append(kbCtx, h.Text)
		}
	}

	d, err := s.ai.Diagnose(ctx, symptoms, strings.Join(kbCtx, "\n---\n"))
	if err == nil {
		return &Result{Source: FromAI, Disease: d.Disease, Remedies: d.Remedies}, nil
	}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return nil, err
	}
	s.log.Warn("structured diagnosis failed, asking chat", zap.String("kind", apperr.Kind(err)), zap.Error(err))

	reply, chatErr := s.ai.Chat(ctx, "My crop shows these symptoms: "+symptoms+". What is the likely disease and a natural remedy?")
	if chatErr != nil {
		return nil, chatErr
	}
	return &Result{Source: FromChat, Reply: reply}, nil
}
