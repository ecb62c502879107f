package repositoryImp

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"mkulima/entities"
	"mkulima/pkg/apperr"
	"mkulima/pkg/process/repository"
)

type processRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ProcessRepository { return &processRepo{db} }

func (r *processRepo) Create(ctx context.Context, p *entities.CropProcess) (uint, error) {
	if err := check(p); err != nil {
		return 0, err
	}
	// stored as text; one offset keeps the date ordering chronological
	p.ProcessDate = p.ProcessDate.UTC()
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return 0, apperr.Persist("create crop process", err)
	}
	return p.ProcessID, nil
}

func (r *processRepo) ListByFarmer(ctx context.Context, farmerID string) ([]entities.CropProcess, error) {
	var out []entities.CropProcess
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("process_date desc").
		Order("process_id asc").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Persist("list crop processes", err)
	}
	return out, nil
}

// check rejects rows missing their identity or mixing bare and evaluated data.
func check(p *entities.CropProcess) error {
	if p == nil {
		return apperr.Invalid("nil crop process")
	}
	var missing []string
	if strings.TrimSpace(p.FarmerID) == "" {
		missing = append(missing, "farmers_id")
	}
	if strings.TrimSpace(p.Crop) == "" {
		missing = append(missing, "crop")
	}
	if strings.TrimSpace(p.ProcessType) == "" {
		missing = append(missing, "process_type")
	}
	if p.ProcessDate.IsZero() {
		missing = append(missing, "process_date")
	}
	if len(missing) > 0 {
		return apperr.MissingFields(missing...)
	}
	if !p.IsBare() && !p.IsComplete() {
		return apperr.Invalid("readings and evaluation must be saved together")
	}
	return nil
}
