package repositoryImp

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"mkulima/entities"
	"mkulima/pkg/apperr"
	"mkulima/pkg/farmer/repository"
)

type farmerRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.FarmerRepository { return &farmerRepo{db} }

func (r *farmerRepo) Create(ctx context.Context, f *entities.Farmer) error {
	err := r.db.WithContext(ctx).Create(f).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrExists
	}
	return apperr.Persist("create farmer", err)
}

func (r *farmerRepo) FindByID(ctx context.Context, id string) (*entities.Farmer, error) {
	var f entities.Farmer
	err := r.db.WithContext(ctx).Where("farmer_id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Persist("find farmer", err)
	}
	return &f, nil
}
