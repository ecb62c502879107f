package serviceImp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mkulima/database/dbtest"
	"mkulima/pkg/feedback/repositoryImp"
	"mkulima/pkg/feedback/service"
)

func TestSubmit_NoDedup(t *testing.T) {
	s := NewFeedbackService(repositoryImp.New(dbtest.New(t)))
	ctx := context.Background()
	in := service.Entry{FarmerID: "F100", Comment: "Great app", Channel: service.ChannelUSSD}

	a, err := s.Submit(ctx, in)
	require.NoError(t, err)
	b, err := s.Submit(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	list, err := s.List(ctx, "F100")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, f := range list {
		assert.Equal(t, "Great app", f.Comment)
		assert.Equal(t, service.ChannelUSSD, f.Channel)
	}
}

func TestSubmit_Validation(t *testing.T) {
	s := NewFeedbackService(repositoryImp.New(dbtest.New(t)))
	ctx := context.Background()

	_, err := s.Submit(ctx, service.Entry{Comment: "hi"})
	assert.EqualError(t, err, "missing or non-numeric: farmers_id")

	_, err = s.Submit(ctx, service.Entry{FarmerID: "F1", Comment: "  "})
	assert.EqualError(t, err, "feedback is empty")

	yes := true
	f, err := s.Submit(ctx, service.Entry{FarmerID: "F1", Status: &yes})
	require.NoError(t, err)
	assert.Equal(t, service.ChannelWeb, f.Channel)
	require.NotNil(t, f.Status)
	assert.True(t, *f.Status)
}
