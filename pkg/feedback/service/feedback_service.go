package service

import (
	"context"

	"mkulima/entities"
)

const (
	ChannelWeb  = "web"
	ChannelUSSD = "ussd"
)

type Entry struct {
	FarmerID string
	Status   *bool
	Comment  string
	Channel  string
}

// FeedbackService stores every submission as its own row; repeats are not
// merged.
type FeedbackService interface {
	Submit(ctx context.Context, in Entry) (*entities.Feedback, error)
	List(ctx context.Context, farmerID string) ([]entities.Feedback, error)
}
