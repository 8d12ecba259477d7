// Package stage holds one strategy per stage kind. The contest service never
// switches on kinds itself: it looks the strategy up in the Registry and works
// with the normalized score maps the strategies return.
package stage

import (
	"context"
	"fmt"
	"log/slog"
	"room-engine/domain"
	"room-engine/errors"
	"room-engine/ledger"
	"room-engine/repositories"
)

// Strategy is the lifecycle of one stage kind.
type Strategy interface {
	Kind() domain.StageKind
	Validate(req Request) error
	CreateStage(req Request) (domain.Stage, error)
	UpdateStage(req UpdateRequest, existing domain.Stage) (domain.Stage, error)
	// RunStage activates the stage settings, provisioning a room when the kind plays in one.
	// Running a stage twice returns the settings of the first run.
	RunStage(ctx context.Context, stageID string) (domain.StageSettings, error)
	GetSettings(stage domain.Stage) (domain.StageSettings, error)
	// FinishStage returns participant -> weighted score contribution.
	FinishStage(ctx context.Context, stage domain.Stage) (map[string]float64, error)
}

// Ballot is implemented by the kinds that collect votes on submissions.
type Ballot interface {
	CastVote(stage domain.Stage, voter domain.ContestParticipant, submission domain.Submission, score int64) (domain.Tally, error)
	Results(stage domain.Stage) ([]domain.Tally, error)
}

// Request creates a stage. Kind specific fields left empty take the strategy defaults.
type Request struct {
	ContestID       string            `validate:"required"`
	Name            string            `validate:"required,max=100"`
	Kind            domain.StageKind  `validate:"required,oneof=QUIZ SURVEY PUBLIC_VOTE JURY_VOTE GENERIC"`
	Position        int               `validate:"gte=0"`
	DurationMinutes int               `validate:"omitempty,min=1,max=1440"`
	FormID          string            `validate:"max=64"`
	Weight          *float64          `validate:"omitempty,gt=0,lte=100"`
	MaxScore        *int64            `validate:"omitempty,min=1,max=100"`
	MaxParticipants int               `validate:"omitempty,min=1,max=1000"`
	TimePerQuestion int               `validate:"omitempty,min=5,max=300"`
	RevealMode      domain.RevealMode `validate:"omitempty,oneof=IMMEDIATE ON_FINISH"`
	ShowJudgeNames  bool
	Description     string `validate:"max=2000"`
}

// UpdateRequest patches a stage; nil fields are left unchanged.
type UpdateRequest struct {
	StageID         string             `validate:"required"`
	Name            *string            `validate:"omitempty,min=1,max=100"`
	DurationMinutes *int               `validate:"omitempty,min=1,max=1440"`
	FormID          *string            `validate:"omitempty,min=1,max=64"`
	Weight          *float64           `validate:"omitempty,gt=0,lte=100"`
	MaxScore        *int64             `validate:"omitempty,min=1,max=100"`
	MaxParticipants *int               `validate:"omitempty,min=1,max=1000"`
	TimePerQuestion *int               `validate:"omitempty,min=5,max=300"`
	RevealMode      *domain.RevealMode `validate:"omitempty,oneof=IMMEDIATE ON_FINISH"`
	ShowJudgeNames  *bool
	Description     *string `validate:"omitempty,max=2000"`
}

// Registry maps every stage kind to its strategy. It is built once and only read afterwards.
type Registry struct {
	log        *slog.Logger
	strategies map[domain.StageKind]Strategy
}

// NewRegistry fails when a kind has no strategy or two strategies claim the same kind.
func NewRegistry(log *slog.Logger, strategies ...Strategy) (*Registry, error) {
	byKind := make(map[domain.StageKind]Strategy, len(strategies))
	for _, s := range strategies {
		if _, dup := byKind[s.Kind()]; dup {
			return nil, fmt.Errorf("duplicate strategy for stage kind %s", s.Kind())
		}
		byKind[s.Kind()] = s
	}
	for _, kind := range domain.StageKinds {
		if _, ok := byKind[kind]; !ok {
			log.Error("Stage kind without strategy", "kind", kind, "fault", "configuration")
			return nil, fmt.Errorf("%w: %s", errors.ErrNoStrategyForStageKind, kind)
		}
	}
	return &Registry{log: log, strategies: byKind}, nil
}

// Lookup serves authoring requests: an unknown kind is the caller's mistake.
func (r *Registry) Lookup(kind domain.StageKind) (Strategy, error) {
	s, ok := r.strategies[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrNoStrategyForStageKind, kind)
	}
	return s, nil
}

// ForStage serves stored stages. A stored stage without strategy means corrupted data.
func (r *Registry) ForStage(stage domain.Stage) (Strategy, error) {
	s, err := r.Lookup(stage.Kind)
	if err != nil {
		r.log.Error("Stored stage has no strategy", "stage", stage.ID, "contest", stage.ContestID,
			"kind", stage.Kind, "fault", "data_integrity")
		return nil, err
	}
	return s, nil
}

// Defaults applied when a request leaves a setting empty.
const (
	DefaultWeight              = 1.0
	DefaultPublicMaxScore      = 1
	DefaultJuryMaxScore        = 10
	DefaultQuizParticipants    = 100
	DefaultQuizTimePerQuestion = 30
	DefaultSurveyTimePerItem   = 60
)

// Deps are the collaborators shared by the strategies.
type Deps struct {
	Log      *slog.Logger
	Contests repositories.IContestRepository
	Ledger   *ledger.Ledger
}

// VoteScope is the ledger scope collecting the votes of a voting stage.
func VoteScope(stageID string) string {
	return "stage:" + stageID
}

func newStage(req Request, settings domain.StageSettings) domain.Stage {
	return domain.Stage{
		ContestID:       req.ContestID,
		Name:            req.Name,
		Kind:            req.Kind,
		Position:        req.Position,
		DurationMinutes: req.DurationMinutes,
		Status:          domain.StagePending,
		Settings:        settings,
	}
}

// patchCommon applies the kind independent fields of an update.
func patchCommon(req UpdateRequest, stage *domain.Stage) {
	if req.Name != nil {
		stage.Name = *req.Name
	}
	if req.DurationMinutes != nil {
		stage.DurationMinutes = *req.DurationMinutes
	}
}

func checkKind(s Strategy, stage domain.Stage) error {
	if stage.Kind != s.Kind() || stage.Settings == nil || stage.Settings.Kind() != s.Kind() {
		return fmt.Errorf("%w: stage %s is %s, strategy is %s", errors.ErrStageKindMismatch, stage.ID, stage.Kind, s.Kind())
	}
	return nil
}

func checkRequestKind(s Strategy, kind domain.StageKind) error {
	if kind != s.Kind() {
		return fmt.Errorf("%w: request is %s, strategy is %s", errors.ErrStageKindMismatch, kind, s.Kind())
	}
	return nil
}

func weightOr(w *float64) float64 {
	if w == nil {
		return DefaultWeight
	}
	return *w
}
