package serviceImp

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"mkulima/entities"
	"mkulima/pkg/evaluation"
	repo "mkulima/pkg/process/repository"
	"mkulima/pkg/process/service"
	"mkulima/pkg/reading"
	"mkulima/pkg/stage"
)

type processSvc struct {
	r      repo.ProcessRepository
	engine evaluation.Engine
	log    *zap.Logger
}

func NewProcessService(r repo.ProcessRepository, engine evaluation.Engine, log *zap.Logger) service.ProcessService {
	return &processSvc{r: r, engine: engine, log: log}
}

func normalize(ev service.Event) service.Event {
	ev.FarmerID = strings.TrimSpace(ev.FarmerID)
	ev.Crop = strings.ToLower(strings.TrimSpace(ev.Crop))
	ev.ProcessType = strings.TrimSpace(ev.ProcessType)
	return ev
}

func (s *processSvc) Record(ctx context.Context, ev service.Event) (*entities.CropProcess, error) {
	ev = normalize(ev)
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	p := &entities.CropProcess{FarmerID: ev.FarmerID, Crop: ev.Crop, ProcessType: ev.ProcessType, ProcessDate: ev.Date}
	if _, err := s.r.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("process recorded", zap.Uint("process_id", p.ProcessID), zap.String("farmer_id", p.FarmerID))
	return p, nil
}

func (s *processSvc) Evaluate(ctx context.Context, crop, stg string, r reading.Set) (*evaluation.Result, error) {
	return s.engine.Evaluate(ctx, crop, stg, r)
}

func (s *processSvc) EvaluateAndSave(ctx context.Context, ev service.Event, r reading.Set) (*entities.CropProcess, *evaluation.Result, error) {
	ev = normalize(ev)
	// nothing is evaluated for an event that could not be saved
	if err := ev.Validate(); err != nil {
		return nil, nil, err
	}
	res, err := s.engine.Evaluate(ctx, ev.Crop, stage.Map(ev.ProcessType), r)
	if err != nil {
		return nil, nil, err
	}
	p := complete(ev, r, res)
	if _, err := s.r.Create(ctx, p); err != nil {
		s.log.Error("evaluated process not saved", zap.String("farmer_id", ev.FarmerID), zap.Error(err))
		return nil, res, err
	}
	s.log.Info("process evaluated",
		zap.Uint("process_id", p.ProcessID),
		zap.String("farmer_id", p.FarmerID),
		zap.String("stage", res.Stage),
		zap.Bool("suitable", res.Suitable))
	return p, res, nil
}

func (s *processSvc) List(ctx context.Context, farmerID string) ([]entities.CropProcess, error) {
	return s.r.ListByFarmer(ctx, strings.TrimSpace(farmerID))
}

func complete(ev service.Event, r reading.Set, res *evaluation.Result) *entities.CropProcess {
	flags := make(map[string]string, len(res.Flags))
	for k, v := range res.Flags {
		flags[k] = v
	}
	stg, suitable, score, advice := res.Stage, res.Suitable, res.Score, res.Advice
	return &entities.CropProcess{
		FarmerID:    ev.FarmerID,
		Crop:        ev.Crop,
		ProcessType: ev.ProcessType,
		ProcessDate: ev.Date,
		Readings: entities.Readings{
			N: &r.N, P: &r.P, K: &r.K,
			Temperature: &r.Temperature, Humidity: &r.Humidity,
			PH: &r.PH, Rainfall: &r.Rainfall,
		},
		Stage:            &stg,
		Suitable:         &suitable,
		SuitabilityScore: &score,
		Flags:            flags,
		Advice:           &advice,
	}
}
