package repository

import (
	"context"

	"mkulima/entities"
)

type FeedbackRepository interface {
	Create(ctx context.Context, f *entities.Feedback) error
	ListByFarmer(ctx context.Context, farmerID string) ([]entities.Feedback, error)
}
