package stage

import (
	"context"
	"room-engine/auth"
	"room-engine/domain"
)

// GenericStrategy is a stage the organizer runs outside the platform. It never scores.
type GenericStrategy struct {
	deps Deps
}

func NewGenericStrategy(deps Deps) *GenericStrategy {
	return &GenericStrategy{deps: deps}
}

func (s *GenericStrategy) Kind() domain.StageKind { return domain.GenericStage }

func (s *GenericStrategy) Validate(req Request) error {
	if err := checkRequestKind(s, req.Kind); err != nil {
		return err
	}
	return auth.Validate(req)
}

func (s *GenericStrategy) CreateStage(req Request) (domain.Stage, error) {
	if err := s.Validate(req); err != nil {
		return domain.Stage{}, err
	}
	return newStage(req, domain.GenericSettings{Description: req.Description}), nil
}

func (s *GenericStrategy) UpdateStage(req UpdateRequest, existing domain.Stage) (domain.Stage, error) {
	if err := checkKind(s, existing); err != nil {
		return domain.Stage{}, err
	}
	if err := auth.Validate(req); err != nil {
		return domain.Stage{}, err
	}
	settings := existing.Settings.(domain.GenericSettings)
	if req.Description != nil {
		settings.Description = *req.Description
	}
	patchCommon(req, &existing)
	existing.Settings = settings
	return existing, nil
}

func (s *GenericStrategy) RunStage(ctx context.Context, stageID string) (domain.StageSettings, error) {
	stage, err := s.deps.Contests.GetStage(stageID)
	if err != nil {
		return nil, err
	}
	return s.GetSettings(stage)
}

func (s *GenericStrategy) GetSettings(stage domain.Stage) (domain.StageSettings, error) {
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	settings := stage.Settings.(domain.GenericSettings)
	settings.StageID = stage.ID
	return settings, nil
}

func (s *GenericStrategy) FinishStage(ctx context.Context, stage domain.Stage) (map[string]float64, error) {
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	return map[string]float64{}, nil
}
