package repositoryImp

import (
	"context"

	"gorm.io/gorm"

	"mkulima/entities"
	"mkulima/pkg/apperr"
	"mkulima/pkg/feedback/repository"
)

type feedbackRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.FeedbackRepository { return &feedbackRepo{db} }

func (r *feedbackRepo) Create(ctx context.Context, f *entities.Feedback) error {
	return apperr.Persist("create feedback", r.db.WithContext(ctx).Create(f).Error)
}

func (r *feedbackRepo) ListByFarmer(ctx context.Context, farmerID string) ([]entities.Feedback, error) {
	var out []entities.Feedback
	if err := r.db.WithContext(ctx).Where("farmer_id = ?", farmerID).Order("id desc").Find(&out).Error; err != nil {
		return nil, apperr.Persist("list feedback", err)
	}
	return out, nil
}
