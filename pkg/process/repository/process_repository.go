package repository

import (
	"context"

	"mkulima/entities"
)

// ProcessRepository stores crop-process records. Records are never updated
// or deleted; corrections are new rows.
type ProcessRepository interface {
	Create(ctx context.Context, p *entities.CropProcess) (uint, error)
	// ListByFarmer returns newest process date first, ties in insertion order.
	ListByFarmer(ctx context.Context, farmerID string) ([]entities.CropProcess, error)
}
