package diagnosis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mkulima/pkg/ai"
	"mkulima/pkg/apperr"
	kbsvc "mkulima/pkg/kb/service"
)

type fixedKB []kbsvc.Hit

func (f fixedKB) Search(ctx context.Context, q string, k int) ([]kbsvc.Hit, error) { return f, nil }

type fakeAI struct {
	diag        *ai.Diagnosis
	diagErr     error
	chat        string
	chatErr     error
	gotKB       string
	chatInvoked bool
}

func (f *fakeAI) Chat(ctx context.Context, msg string) (string, error) {
	f.chatInvoked = true
	return f.chat, f.chatErr
}

func (f *fakeAI) Diagnose(ctx context.Context, symptoms, kbCtx string) (*ai.Diagnosis, error) {
	f.gotKB = kbCtx
	return f.diag, f.diagErr
}

func TestDiagnose_StrongKBHitSkipsAI(t *testing.T) {
	a := &fakeAI{}
	s := New(fixedKB{{DocTitle: "Fall armyworm", Text: "Larvae chew holes", Score: 0.9}}, a, zap.NewNop())

	r, err := s.Diagnose(context.Background(), "holes in maize")
	require.NoError(t, err)
	assert.Equal(t, FromKB, r.Source)
	assert.Equal(t, "Fall armyworm: Larvae chew holes", r.Text())
	assert.Empty(t, a.gotKB)
	assert.False(t, a.chatInvoked)
}

func TestDiagnose_WeakKBHitFeedsAI(t *testing.T) {
	a := &fakeAI{diag: &ai.Diagnosis{Disease: "Leaf rust", Remedies: []string{"Resistant varieties"}}}
	s := New(fixedKB{{Text: "rust pustules", Score: 0.3}}, a, zap.NewNop())

	r, err := s.Diagnose(context.Background(), "orange powder on leaves")
	require.NoError(t, err)
	assert.Equal(t, FromAI, r.Source)
	assert.Equal(t, "rust pustules", a.gotKB)
	assert.Equal(t, "Likely: Leaf rust. Remedies: Resistant varieties.", r.Text())
}

func TestDiagnose_FallsBackToChat(t *testing.T) {
	a := &fakeAI{diagErr: apperr.Upstream("ai", "", errors.New("malformed")), chat: "Probably blight."}
	r, err := New(nil, a, zap.NewNop()).Diagnose(context.Background(), "brown spots")
	require.NoError(t, err)
	assert.Equal(t, FromChat, r.Source)
	assert.Equal(t, "Probably blight.", r.Text())
}

func TestDiagnose_AllFail(t *testing.T) {
	a := &fakeAI{diagErr: apperr.Upstream("ai", "", nil), chatErr: apperr.Upstream("ai", "quota exceeded", nil)}
	_, err := New(nil, a, zap.NewNop()).Diagnose(context.Background(), "brown spots")
	assert.Equal(t, "quota exceeded", apperr.Describe(err))
}

func TestDiagnose_EmptySymptoms(t *testing.T) {
	a := &fakeAI{}
	_, err := New(nil, a, zap.NewNop()).Diagnose(context.Background(), "  ")
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.False(t, a.chatInvoked)
}
