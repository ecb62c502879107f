package repository

import (
	"context"
	"errors"

	"mkulima/entities"
)

var (
	ErrNotFound = errors.New("farmer not found")
	ErrExists   = errors.New("farmer already exists")
)

type FarmerRepository interface {
	// Create returns ErrExists when the id is taken.
	Create(ctx context.Context, f *entities.Farmer) error
	// FindByID returns ErrNotFound for an unknown id.
	FindByID(ctx context.Context, id string) (*entities.Farmer, error)
}
