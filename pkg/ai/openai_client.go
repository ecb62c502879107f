package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mkulima/pkg/apperr"
)

const service = "ai"

type openAI struct {
	endpoint string
	key      string
	model    string
	httpc    *http.Client
}

func NewOpenAI(endpoint, key, model string) Client {
	return &openAI{endpoint: endpoint, key: key, model: model, httpc: &http.Client{Timeout: 25 * time.Second}}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *openAI) complete(ctx context.Context, msgs []message, maxTokens int) (string, error) {
	b, _ := json.Marshal(map[string]any{
		"model":       c.model,
		"messages":    msgs,
		"temperature": 0.2,
		"max_tokens":  maxTokens,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.endpoint, "/")+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", apperr.Upstream(service, "", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", apperr.Upstream(service, "", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperr.Upstream(service, "", err)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode/100 != 2 {
		msg := ""
		if decodeErr == nil && out.Error != nil {
			msg = out.Error.Message
		}
		return "", apperr.Upstream(service, msg, fmt.Errorf("status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return "", apperr.Upstream(service, "", decodeErr)
	}
	if len(out.Choices) == 0 {
		return "", apperr.Upstream(service, "", errors.New("no choices"))
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", apperr.Upstream(service, "", errors.New("empty response"))
	}
	return content, nil
}

func (c *openAI) Chat(ctx context.Context, msg string) (string, error) {
	if strings.TrimSpace(msg) == "" {
		return "", apperr.MissingFields("message")
	}
	return c.complete(ctx, []message{
		{Role: "system", Content: "You are an agronomist advising smallholder farmers in East Africa. Answer briefly and practically."},
		{Role: "user", Content: msg},
	}, 200)
}

func (c *openAI) Diagnose(ctx context.Context, symptoms, kbCtx string) (*Diagnosis, error) {
	if strings.TrimSpace(symptoms) == "" {
		return nil, apperr.MissingFields("symptoms")
	}
	content, err := c.complete(ctx, []message{
		{Role: "system", Content: "You are a crop pathologist. Reply ONLY valid JSON."},
		{Role: "user", Content: renderDiagnosePrompt(symptoms, kbCtx)},
	}, 200)
	if err != nil {
		return nil, err
	}
	return ParseDiagnosis(content)
}

// ParseDiagnosis accepts a {"disease","remedies":[...]} document, optionally
// wrapped in a Markdown code fence.
func ParseDiagnosis(content string) (*Diagnosis, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	var d struct {
		Disease  string    `json:"disease"`
		Remedies *[]string `json:"remedies"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &d); err != nil {
		return nil, apperr.Upstream(service, "", fmt.Errorf("parse diagnosis: %w", err))
	}
	if strings.TrimSpace(d.Disease) == "" || d.Remedies == nil {
		return nil, apperr.Upstream(service, "", errors.New("malformed diagnosis"))
	}
	return &Diagnosis{Disease: strings.TrimSpace(d.Disease), Remedies: *d.Remedies}, nil
}

func renderDiagnosePrompt(symptoms, kbCtx string) string {
	p := fmt.Sprintf(`Given the following crop symptoms, provide a JSON object with the likely disease and natural remedies.
Symptoms: %s
Format: {"disease": "...", "remedies": ["..."]}`, symptoms)
	if strings.TrimSpace(kbCtx) != "" {
		p += "\n\nKB NOTES:\n" + kbCtx
	}
	return p
}
