package ai

import (
	"context"
	"strings"

	"mkulima/pkg/apperr"
)

// mockClient answers from a few keyword rules; used when no AI endpoint is
// configured.
type mockClient struct{}

func NewMock() Client { return &mockClient{} }

var mockRules = []struct {
	keywords  []string
	diagnosis Diagnosis
}{
	{[]string{"yellow", "chlorosis"}, Diagnosis{"Nitrogen deficiency", []string{"Top-dress with compost or manure", "Intercrop with beans"}}},
	{[]string{"spots", "blight", "lesion"}, Diagnosis{"Leaf blight", []string{"Remove infected leaves", "Spray neem extract", "Rotate crops"}}},
	{[]string{"wilt", "droop"}, Diagnosis{"Bacterial wilt", []string{"Uproot and burn affected plants", "Avoid waterlogging"}}},
	{[]string{"hole", "caterpillar", "worm"}, Diagnosis{"Fall armyworm", []string{"Hand-pick larvae", "Apply wood ash in the whorl"}}},
}

func (m *mockClient) Chat(ctx context.Context, msg string) (string, error) {
	if strings.TrimSpace(msg) == "" {
		return "", apperr.MissingFields("message")
	}
	return "Check soil moisture and scout the field twice a week.", nil
}

func (m *mockClient) Diagnose(ctx context.Context, symptoms, kbCtx string) (*Diagnosis, error) {
	s := strings.ToLower(symptoms)
	for _, r := range mockRules {
		for _, k := range r.keywords {
			if strings.Contains(s, k) {
				d := r.diagnosis
				return &d, nil
			}
		}
	}
	return nil, apperr.Upstream(service, "no diagnosis for these symptoms", nil)
}
