package serviceImp

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mkulima/entities"
	"mkulima/pkg/apperr"
	repo "mkulima/pkg/farmer/repository"
	"mkulima/pkg/farmer/service"
	"mkulima/pkg/reading"
)

type farmerSvc struct {
	r    repo.FarmerRepository
	cost int
	log  *zap.Logger
}

// NewFarmerService hashes with cost, or bcrypt.DefaultCost when cost is 0.
func NewFarmerService(r repo.FarmerRepository, cost int, log *zap.Logger) service.FarmerService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &farmerSvc{r: r, cost: cost, log: log}
}

func (s *farmerSvc) Register(ctx context.Context, in service.Registration) (*entities.Farmer, error) {
	in.FarmerID = strings.TrimSpace(in.FarmerID)
	in.FullName = strings.TrimSpace(in.FullName)
	var missing []string
	if in.FarmerID == "" {
		missing = append(missing, "farmers_id")
	}
	if in.FullName == "" {
		missing = append(missing, "full_name")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	land, ok := reading.ParseFloat(in.LandSize)
	if !ok || land < 0 || math.IsNaN(land) || math.IsInf(land, 0) {
		missing = append(missing, "land_size")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperr.Invalid("passwords do not match")
	}

	switch _, err := s.r.FindByID(ctx, in.FarmerID); {
	case err == nil:
		return nil, service.ErrDuplicate
	case !errors.Is(err, repo.ErrNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.Invalid("password too long")
	}
	if err != nil {
		return nil, err
	}
	f := &entities.Farmer{
		FarmerID:     in.FarmerID,
		FullName:     in.FullName,
		Contact:      strings.TrimSpace(in.Contact),
		LandSize:     land,
		SoilType:     strings.ToLower(strings.TrimSpace(in.SoilType)),
		PasswordHash: string(hash),
	}
	// a concurrent register can pass the lookup above
	switch err := s.r.Create(ctx, f); {
	case errors.Is(err, repo.ErrExists):
		return nil, service.ErrDuplicate
	case err != nil:
		return nil, err
	}
	s.log.Info("farmer registered", zap.String("farmer_id", f.FarmerID))
	return f, nil
}

func (s *farmerSvc) Login(ctx context.Context, farmerID, password string) (*entities.Farmer, error) {
	f, err := s.r.FindByID(ctx, strings.TrimSpace(farmerID))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, service.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(f.PasswordHash), []byte(password)) != nil {
		return nil, service.ErrInvalidCredentials
	}
	return f, nil
}
