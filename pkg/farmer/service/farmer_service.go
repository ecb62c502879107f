package service

import (
	"context"

	"mkulima/entities"
	"mkulima/pkg/apperr"
)

// Login failures share one message so ids cannot be probed.
var ErrInvalidCredentials = &apperr.ValidationError{Reason: "invalid farmer ID or password"}

var ErrDuplicate = &apperr.ValidationError{Reason: "a farmer with this ID already exists"}

type Registration struct {
	FarmerID        string
	FullName        string
	Contact         string
	LandSize        string // acres, parsed by Register
	SoilType        string
	Password        string
	ConfirmPassword string
}

type FarmerService interface {
	Register(ctx context.Context, in Registration) (*entities.Farmer, error)
	Login(ctx context.Context, farmerID, password string) (*entities.Farmer, error)
}
