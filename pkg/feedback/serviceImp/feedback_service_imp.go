package serviceImp

import (
	"context"
	"strings"
	"time"

	"mkulima/entities"
	"mkulima/pkg/apperr"
	repo "mkulima/pkg/feedback/repository"
	"mkulima/pkg/feedback/service"
)

type feedbackSvc struct {
	r   repo.FeedbackRepository
	now func() time.Time
}

func NewFeedbackService(r repo.FeedbackRepository) service.FeedbackService {
	return &feedbackSvc{r: r, now: time.Now}
}

func (s *feedbackSvc) Submit(ctx context.Context, in service.Entry) (*entities.Feedback, error) {
	in.FarmerID = strings.TrimSpace(in.FarmerID)
	in.Comment = strings.TrimSpace(in.Comment)
	if in.FarmerID == "" {
		return nil, apperr.MissingFields("farmers_id")
	}
	if in.Status == nil && in.Comment == "" {
		return nil, apperr.Invalid("feedback is empty")
	}
	if in.Channel == "" {
		in.Channel = service.ChannelWeb
	}
	f := &entities.Feedback{
		FarmerID: in.FarmerID,
		Date:     s.now(),
		Status:   in.Status,
		Comment:  in.Comment,
		Channel:  in.Channel,
	}
	if err := s.r.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *feedbackSvc) List(ctx context.Context, farmerID string) ([]entities.Feedback, error) {
	return s.r.ListByFarmer(ctx, strings.TrimSpace(farmerID))
}
