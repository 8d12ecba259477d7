package stage

import (
	"context"
	"fmt"
	"room-engine/auth"
	"room-engine/domain"
	"room-engine/errors"
)

// PublicVoteStrategy lets every participant give one point to one submission.
// A submission's owner earns its tally times the stage weight.
type PublicVoteStrategy struct {
	deps Deps
}

func NewPublicVoteStrategy(deps Deps) *PublicVoteStrategy {
	return &PublicVoteStrategy{deps: deps}
}

func (s *PublicVoteStrategy) Kind() domain.StageKind { return domain.PublicVoteStage }

func (s *PublicVoteStrategy) Validate(req Request) error {
	if err := checkRequestKind(s, req.Kind); err != nil {
		return err
	}
	return auth.Validate(req)
}

func (s *PublicVoteStrategy) CreateStage(req Request) (domain.Stage, error) {
	if err := s.Validate(req); err != nil {
		return domain.Stage{}, err
	}
	settings := domain.PublicVoteSettings{Weight: weightOr(req.Weight), MaxScore: DefaultPublicMaxScore}
	if req.MaxScore != nil {
		settings.MaxScore = *req.MaxScore
	}
	return newStage(req, settings), nil
}

func (s *PublicVoteStrategy) UpdateStage(req UpdateRequest, existing domain.Stage) (domain.Stage, error) {
	if err := checkKind(s, existing); err != nil {
		return domain.Stage{}, err
	}
	if err := auth.Validate(req); err != nil {
		return domain.Stage{}, err
	}
	settings := existing.Settings.(domain.PublicVoteSettings)
	if req.Weight != nil {
		settings.Weight = *req.Weight
	}
	if req.MaxScore != nil {
		settings.MaxScore = *req.MaxScore
	}
	patchCommon(req, &existing)
	existing.Settings = settings
	return existing, nil
}

func (s *PublicVoteStrategy) RunStage(ctx context.Context, stageID string) (domain.StageSettings, error) {
	stage, err := s.deps.Contests.GetStage(stageID)
	if err != nil {
		return nil, err
	}
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	if err := s.deps.Ledger.Open(VoteScope(stage.ID)); err != nil {
		return nil, err
	}
	return s.GetSettings(stage)
}

func (s *PublicVoteStrategy) GetSettings(stage domain.Stage) (domain.StageSettings, error) {
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	settings := stage.Settings.(domain.PublicVoteSettings)
	settings.StageID = stage.ID
	if settings.Weight == 0 {
		settings.Weight = DefaultWeight
	}
	return settings, nil
}

// CastVote records one point. The score argument is ignored: a public vote is worth one.
func (s *PublicVoteStrategy) CastVote(stage domain.Stage, voter domain.ContestParticipant,
	submission domain.Submission, _ int64) (domain.Tally, error) {
	if err := checkKind(s, stage); err != nil {
		return domain.Tally{}, err
	}
	return castInScope(s.deps, stage, voter.UserID, submission.ID, 1)
}

func (s *PublicVoteStrategy) Results(stage domain.Stage) ([]domain.Tally, error) {
	return results(s.deps, stage)
}

func (s *PublicVoteStrategy) FinishStage(ctx context.Context, stage domain.Stage) (map[string]float64, error) {
	settings, err := s.GetSettings(stage)
	if err != nil {
		return nil, err
	}
	tallies, err := sealAndTally(s.deps, stage)
	if err != nil {
		return nil, err
	}
	return toOwners(s.deps, stage, tallies, func(t domain.Tally) float64 {
		return float64(t.Score) * settings.StageWeight()
	})
}

// JuryVoteStrategy lets each juror score each submission once, from 1 to MaxScore.
// A submission's owner earns the average of its jury scores times the stage weight.
type JuryVoteStrategy struct {
	deps Deps
}

func NewJuryVoteStrategy(deps Deps) *JuryVoteStrategy {
	return &JuryVoteStrategy{deps: deps}
}

func (s *JuryVoteStrategy) Kind() domain.StageKind { return domain.JuryVoteStage }

func (s *JuryVoteStrategy) Validate(req Request) error {
	if err := checkRequestKind(s, req.Kind); err != nil {
		return err
	}
	return auth.Validate(req)
}

func (s *JuryVoteStrategy) CreateStage(req Request) (domain.Stage, error) {
	if err := s.Validate(req); err != nil {
		return domain.Stage{}, err
	}
	settings := domain.JuryVoteSettings{
		Weight:         weightOr(req.Weight),
		MaxScore:       DefaultJuryMaxScore,
		RevealMode:     req.RevealMode,
		ShowJudgeNames: req.ShowJudgeNames,
	}
	if req.MaxScore != nil {
		settings.MaxScore = *req.MaxScore
	}
	if settings.RevealMode == "" {
		settings.RevealMode = domain.RevealOnFinish
	}
	return newStage(req, settings), nil
}

func (s *JuryVoteStrategy) UpdateStage(req UpdateRequest, existing domain.Stage) (domain.Stage, error) {
	if err := checkKind(s, existing); err != nil {
		return domain.Stage{}, err
	}
	if err := auth.Validate(req); err != nil {
		return domain.Stage{}, err
	}
	settings := existing.Settings.(domain.JuryVoteSettings)
	if req.Weight != nil {
		settings.Weight = *req.Weight
	}
	if req.MaxScore != nil {
		settings.MaxScore = *req.MaxScore
	}
	if req.RevealMode != nil {
		settings.RevealMode = *req.RevealMode
	}
	if req.ShowJudgeNames != nil {
		settings.ShowJudgeNames = *req.ShowJudgeNames
	}
	patchCommon(req, &existing)
	existing.Settings = settings
	return existing, nil
}

func (s *JuryVoteStrategy) RunStage(ctx context.Context, stageID string) (domain.StageSettings, error) {
	stage, err := s.deps.Contests.GetStage(stageID)
	if err != nil {
		return nil, err
	}
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	if err := s.deps.Ledger.Open(VoteScope(stage.ID)); err != nil {
		return nil, err
	}
	return s.GetSettings(stage)
}

func (s *JuryVoteStrategy) GetSettings(stage domain.Stage) (domain.StageSettings, error) {
	if err := checkKind(s, stage); err != nil {
		return nil, err
	}
	settings := stage.Settings.(domain.JuryVoteSettings)
	settings.StageID = stage.ID
	if settings.Weight == 0 {
		settings.Weight = DefaultWeight
	}
	if settings.MaxScore == 0 {
		settings.MaxScore = DefaultJuryMaxScore
	}
	return settings, nil
}

// CastVote records a juror's score for one submission. The ledger record is keyed
// by juror and submission, so a juror scores every submission exactly once.
func (s *JuryVoteStrategy) CastVote(stage domain.Stage, voter domain.ContestParticipant,
	submission domain.Submission, score int64) (domain.Tally, error) {
	settings, err := s.GetSettings(stage)
	if err != nil {
		return domain.Tally{}, err
	}
	if !voter.HasRole(domain.RoleJury) {
		return domain.Tally{}, errors.ErrNotJuror
	}
	maxScore := settings.(domain.JuryVoteSettings).MaxScore
	if score < 1 || score > maxScore {
		return domain.Tally{}, fmt.Errorf("%w: %d not in [1, %d]", errors.ErrScoreOutOfRange, score, maxScore)
	}
	return castInScope(s.deps, stage, juryBallot(voter.UserID, submission.ID), submission.ID, score)
}

func (s *JuryVoteStrategy) Results(stage domain.Stage) ([]domain.Tally, error) {
	return results(s.deps, stage)
}

// JudgeScores lists juror -> score for a submission.
func (s *JuryVoteStrategy) JudgeScores(stage domain.Stage, submissionID string) (map[string]int64, error) {
	if err := restore(s.deps, stage); err != nil {
		return nil, err
	}
	detail, err := s.deps.Ledger.VoteDetail(VoteScope(stage.ID), submissionID)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]int64, len(detail))
	suffix := ":" + submissionID
	for ballot, points := range detail {
		scores[ballot[:len(ballot)-len(suffix)]] = points
	}
	return scores, nil
}

func (s *JuryVoteStrategy) FinishStage(ctx context.Context, stage domain.Stage) (map[string]float64, error) {
	settings, err := s.GetSettings(stage)
	if err != nil {
		return nil, err
	}
	tallies, err := sealAndTally(s.deps, stage)
	if err != nil {
		return nil, err
	}
	return toOwners(s.deps, stage, tallies, func(t domain.Tally) float64 {
		if t.Count == 0 {
			return 0
		}
		return float64(t.Score) / float64(t.Count) * settings.StageWeight()
	})
}

func juryBallot(jurorID, submissionID string) string {
	return jurorID + ":" + submissionID
}

// castInScope registers a vote in the stage scope. The scope is only rebuilt
// from the stored votes, after a restart, while the stage is still active.
func castInScope(deps Deps, stage domain.Stage, voter, submissionID string, points int64) (domain.Tally, error) {
	scope := VoteScope(stage.ID)
	total, err := deps.Ledger.RegisterVote(scope, submissionID, voter, points)
	if err == errors.ErrItemNotActive && stage.Status == domain.StageActive {
		if err := deps.Ledger.Open(scope); err != nil {
			return domain.Tally{}, err
		}
		total, err = deps.Ledger.RegisterVote(scope, submissionID, voter, points)
	}
	if err == errors.ErrItemNotActive {
		return domain.Tally{}, errors.ErrStageNotActive
	}
	if err != nil {
		return domain.Tally{}, err
	}
	detail, err := deps.Ledger.VoteDetail(scope, submissionID)
	if err != nil {
		return domain.Tally{}, err
	}
	return domain.Tally{Candidate: submissionID, Count: int64(len(detail)), Score: total}, nil
}

func results(deps Deps, stage domain.Stage) ([]domain.Tally, error) {
	if err := restore(deps, stage); err != nil {
		return nil, err
	}
	tallies, err := deps.Ledger.Tallies(VoteScope(stage.ID))
	if err == errors.ErrItemNotActive {
		return nil, nil
	}
	return tallies, err
}

// sealAndTally closes the stage scope and snapshots it. A missing scope means
// nobody voted in the stage.
func sealAndTally(deps Deps, stage domain.Stage) ([]domain.Tally, error) {
	scope := VoteScope(stage.ID)
	if err := deps.Ledger.Open(scope); err != nil {
		return nil, err
	}
	deps.Ledger.Seal(scope, errors.ErrStageNotActive)
	tallies, err := deps.Ledger.Tallies(scope)
	if err != nil {
		deps.Log.Warn("No votes for finished stage", "stage", stage.ID, "err", err)
		return nil, nil
	}
	return tallies, nil
}

// restore brings back the stored votes of a started stage missing from the
// ledger. A scope rebuilt for a stage that no longer runs is sealed straight away.
func restore(deps Deps, stage domain.Stage) error {
	if stage.Status == domain.StagePending {
		return nil
	}
	scope := VoteScope(stage.ID)
	if err := deps.Ledger.Open(scope); err != nil {
		return err
	}
	if stage.Status != domain.StageActive {
		deps.Ledger.Seal(scope, errors.ErrStageNotActive)
	}
	return nil
}

// toOwners credits each submission's score to the participant who submitted it.
func toOwners(deps Deps, stage domain.Stage, tallies []domain.Tally, score func(domain.Tally) float64) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, t := range tallies {
		submission, err := deps.Contests.GetSubmission(stage.ContestID, t.Candidate)
		if err != nil {
			if err == errors.ErrSubmissionNotFound {
				deps.Log.Warn("Votes for an unknown submission ignored", "stage", stage.ID, "submission", t.Candidate)
				continue
			}
			return nil, err
		}
		out[submission.ParticipantID] += score(t)
	}
	return out, nil
}
