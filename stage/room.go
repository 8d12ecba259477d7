package stage

import (
	"context"
	"fmt"
	"room-engine/auth"
	"room-engine/contract"
	"room-engine/domain"
	"room-engine/errors"

	"github.com/samber/lo"
)

// QuizStrategy plays a stage in a private quiz room. Entrants ranked with a
// positive score earn (N - rank + 1) * weight, N being the number of such entrants.
// Equal room scores share the best rank of the group (1, 1, 3).
type QuizStrategy struct {
	deps  Deps
	rooms contract.RoomProvisioner
}

func NewQuizStrategy(deps Deps, rooms contract.RoomProvisioner) *QuizStrategy {
	return &QuizStrategy{deps: deps, rooms: rooms}
}

func (s *QuizStrategy) Kind() domain.StageKind { return domain.QuizStage }

func (s *QuizStrategy) Validate(req Request) error {
	if err := checkRequestKind(s, req.Kind); err != nil {
		return err
	}
	if err := auth.Validate(req); err != nil {
		return err
	}
	if req.FormID == "" {
		return fmt.Errorf("%w: quiz stage needs a form", errors.ErrFormNotFound)
	}
	return nil
}

func (s *QuizStrategy) CreateStage(req Request) (domain.Stage, error) {
	if err := s.Validate(req); err != nil {
		return domain.Stage{}, err
	}
	settings := domain.QuizSettings{
		FormID:          req.FormID,
		MaxParticipants: req.MaxParticipants,
		TimePerQuestion: req.TimePerQuestion,
		Weight:          weightOr(req.Weight),
	}
	if settings.MaxParticipants == 0 {
		settings.MaxParticipants = DefaultQuizParticipants
	}
	if settings.TimePerQuestion == 0 {
		settings.TimePerQuestion = DefaultQuizTimePerQuestion
	}
	return newStage(req, settings), nil
}

func (s *QuizStrategy) UpdateStage(req UpdateRequest, existing domain.Stage) (domain.Stage, error) {
	if err := checkKind(s, existing); err != nil {
		return domain.Stage{}, err
	}
	if err := auth.Validate(req); err != nil {
		return domain.Stage{}, err
	}
	settings := existing.Settings.(domain.QuizSettings)
	if req.FormID != nil {
		settings.FormID = *req.FormID
	}
	if req.Weight != nil {
		settings.Weight = *req.Weight
	}
	if req.MaxParticipants != nil {
		settings.MaxParticipants = *req.MaxParticipants
	}
	if req.TimePerQuestion != nil {
		settings.TimePerQuestion = *req.TimePerQuestion
	}
	patchCommon(req, &existing)
	existing.Settings = settings
	return existing, nil
}

func (s *QuizStrategy) RunStage(ctx context.Context, stageID string) (domain.StageSettings, error) {
	stage, err := s.deps.Contests.GetStage(stageID)
	if err != nil {
		return nil, err
	}
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	settings := stage.Settings.(domain.QuizSettings)
	if settings.RoomKey != "" {
		return settings, nil
	}
	key, err := provisionRoom(ctx, s.deps, s.rooms, stage, domain.QuizRoom, settings.FormID,
		settings.MaxParticipants, settings.TimePerQuestion)
	if err != nil {
		return nil, err
	}
	settings.RoomKey = key
	stage.Settings = settings
	if err := s.deps.Contests.SaveStage(stage); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *QuizStrategy) GetSettings(stage domain.Stage) (domain.StageSettings, error) {
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	settings := stage.Settings.(domain.QuizSettings)
	settings.StageID = stage.ID
	return settings, nil
}

func (s *QuizStrategy) FinishStage(ctx context.Context, stage domain.Stage) (map[string]float64, error) {
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	settings := stage.Settings.(domain.QuizSettings)
	scores := make(map[string]float64)
	if settings.RoomKey == "" {
		return scores, nil
	}
	if err := s.rooms.CloseRoom(ctx, settings.RoomKey, domain.ReasonStageFinished); err != nil {
		return nil, err
	}
	board, err := s.rooms.Leaderboard(ctx, settings.RoomKey)
	if err != nil {
		return nil, err
	}
	var positive []float64
	for _, entry := range board {
		if entry.Score > 0 {
			positive = append(positive, entry.Score)
		}
	}
	for _, entry := range board {
		if entry.Score <= 0 {
			continue
		}
		rank := 1 + lo.CountBy(positive, func(score float64) bool { return score > entry.Score })
		scores[entry.UserID] = float64(len(positive)-rank+1) * settings.Weight
	}
	return scores, nil
}

// SurveyStrategy plays a stage in a survey room. Surveys collect opinions and never score.
type SurveyStrategy struct {
	deps  Deps
	rooms contract.RoomProvisioner
}

func NewSurveyStrategy(deps Deps, rooms contract.RoomProvisioner) *SurveyStrategy {
	return &SurveyStrategy{deps: deps, rooms: rooms}
}

func (s *SurveyStrategy) Kind() domain.StageKind { return domain.SurveyStage }

func (s *SurveyStrategy) Validate(req Request) error {
	if err := checkRequestKind(s, req.Kind); err != nil {
		return err
	}
	if err := auth.Validate(req); err != nil {
		return err
	}
	if req.FormID == "" {
		return fmt.Errorf("%w: survey stage needs a form", errors.ErrFormNotFound)
	}
	return nil
}

func (s *SurveyStrategy) CreateStage(req Request) (domain.Stage, error) {
	if err := s.Validate(req); err != nil {
		return domain.Stage{}, err
	}
	settings := domain.SurveySettings{
		FormID:          req.FormID,
		MaxParticipants: req.MaxParticipants,
		TimePerQuestion: req.TimePerQuestion,
	}
	if settings.MaxParticipants == 0 {
		settings.MaxParticipants = DefaultQuizParticipants
	}
	if settings.TimePerQuestion == 0 {
		settings.TimePerQuestion = DefaultSurveyTimePerItem
	}
	return newStage(req, settings), nil
}

func (s *SurveyStrategy) UpdateStage(req UpdateRequest, existing domain.Stage) (domain.Stage, error) {
	if err := checkKind(s, existing); err != nil {
		return domain.Stage{}, err
	}
	if err := auth.Validate(req); err != nil {
		return domain.Stage{}, err
	}
	settings := existing.Settings.(domain.SurveySettings)
	if req.FormID != nil {
		settings.FormID = *req.FormID
	}
	if req.MaxParticipants != nil {
		settings.MaxParticipants = *req.MaxParticipants
	}
	if req.TimePerQuestion != nil {
		settings.TimePerQuestion = *req.TimePerQuestion
	}
	patchCommon(req, &existing)
	existing.Settings = settings
	return existing, nil
}

func (s *SurveyStrategy) RunStage(ctx context.Context, stageID string) (domain.StageSettings, error) {
	stage, err := s.deps.Contests.GetStage(stageID)
	if err != nil {
		return nil, err
	}
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	settings := stage.Settings.(domain.SurveySettings)
	if settings.RoomKey != "" {
		return settings, nil
	}
	key, err := provisionRoom(ctx, s.deps, s.rooms, stage, domain.SurveyRoom, settings.FormID,
		settings.MaxParticipants, settings.TimePerQuestion)
	if err != nil {
		return nil, err
	}
	settings.RoomKey = key
	stage.Settings = settings
	if err := s.deps.Contests.SaveStage(stage); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *SurveyStrategy) GetSettings(stage domain.Stage) (domain.StageSettings, error) {
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	settings := stage.Settings.(domain.SurveySettings)
	settings.StageID = stage.ID
	return settings, nil
}

func (s *SurveyStrategy) FinishStage(ctx context.Context, stage domain.Stage) (map[string]float64, error) {
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	settings := stage.Settings.(domain.SurveySettings)
	if settings.RoomKey != "" {
		if err := s.rooms.CloseRoom(ctx, settings.RoomKey, domain.ReasonStageFinished); err != nil {
			return nil, err
		}
	}
	return map[string]float64{}, nil
}

// provisionRoom opens the private room of a stage, hosted by the contest organizer.
func provisionRoom(ctx context.Context, deps Deps, rooms contract.RoomProvisioner, stage domain.Stage,
	kind domain.RoomKind, formID string, maxParticipants, timePerItem int) (domain.RoomKey, error) {
	contest, err := deps.Contests.GetContest(stage.ContestID)
	if err != nil {
		return "", err
	}
	room, err := rooms.OpenRoom(ctx, domain.OpenRoomRequest{
		Kind:            kind,
		FormID:          formID,
		HostID:          contest.OrganizerID,
		MaxParticipants: maxParticipants,
		TimePerItem:     timePerItem,
		Private:         true,
	})
	if err != nil {
		return "", fmt.Errorf("open room for stage %s: %w", stage.ID, err)
	}
	deps.Log.Info("Stage room opened", "stage", stage.ID, "contest", stage.ContestID, "room", room.Key)
	return room.Key, nil
}
