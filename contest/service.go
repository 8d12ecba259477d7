// Package contest chains stages into a contest and sums what each stage contributes.
package contest

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"room-engine/auth"
	"room-engine/domain"
	"room-engine/domain/event"
	"room-engine/errors"
	"room-engine/ledger"
	"room-engine/repositories"
	"room-engine/stage"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const lockStripes = 32

// Service drives contests from stage to stage. Stage transitions of one contest
// are serialized; votes run concurrently and only meet in the ledger.
type Service struct {
	log      *slog.Logger
	contests repositories.IContestRepository
	registry *stage.Registry
	ledger   *ledger.Ledger
	events   chan<- event.DomainEvent
	locks    [lockStripes]sync.Mutex
	now      func() time.Time
}

func NewService(log *slog.Logger, contests repositories.IContestRepository, registry *stage.Registry,
	ledger *ledger.Ledger, events chan<- event.DomainEvent) *Service {
	return &Service{log: log, contests: contests, registry: registry, ledger: ledger, events: events, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateContest(ctx context.Context, req CreateContestRequest) (domain.Contest, error) {
	if err := auth.Validate(req); err != nil {
		return domain.Contest{}, err
	}
	contest := domain.Contest{
		ID:          uuid.NewString(),
		Name:        req.Name,
		OrganizerID: req.OrganizerID,
		Status:      domain.ContestDraft,
		CreatedAt:   s.now(),
	}
	if err := s.contests.SaveContest(contest); err != nil {
		return domain.Contest{}, err
	}
	return contest, nil
}

// AddParticipant registers a competitor or a juror. Registering again replaces the
// roles and keeps the first registration time.
func (s *Service) AddParticipant(ctx context.Context, organizerID string, req ParticipantRequest) (domain.ContestParticipant, error) {
	if err := auth.Validate(req); err != nil {
		return domain.ContestParticipant{}, err
	}
	if _, err := s.organizedBy(req.ContestID, organizerID); err != nil {
		return domain.ContestParticipant{}, err
	}
	participant, err := s.contests.GetParticipant(req.ContestID, req.UserID)
	switch {
	case err == errors.ErrNotParticipant:
		participant.JoinedAt = s.now()
	case err != nil:
		return domain.ContestParticipant{}, err
	}
	participant.ContestID = req.ContestID
	participant.UserID = req.UserID
	participant.DisplayName = req.DisplayName
	participant.Roles = lo.Uniq(req.Roles)
	if err := s.contests.SaveParticipant(participant); err != nil {
		return domain.ContestParticipant{}, err
	}
	return participant, nil
}

// AddSubmission stores a competitor's entry.
func (s *Service) AddSubmission(ctx context.Context, req SubmissionRequest) (domain.Submission, error) {
	if err := auth.Validate(req); err != nil {
		return domain.Submission{}, err
	}
	participant, err := s.contests.GetParticipant(req.ContestID, req.ParticipantID)
	if err != nil {
		return domain.Submission{}, err
	}
	if !participant.HasRole(domain.RoleCompetitor) {
		return domain.Submission{}, fmt.Errorf("%w: only competitors submit", errors.ErrAccessDenied)
	}
	submission := domain.Submission{
		ID:            uuid.NewString(),
		ContestID:     req.ContestID,
		ParticipantID: req.ParticipantID,
		Title:         req.Title,
		CreatedAt:     s.now(),
	}
	if err := s.contests.SaveSubmission(submission); err != nil {
		return domain.Submission{}, err
	}
	return submission, nil
}

// CreateStage validates and stores a new stage through the strategy of its kind.
func (s *Service) CreateStage(ctx context.Context, organizerID string, req stage.Request) (domain.Stage, error) {
	if _, err := s.organizedBy(req.ContestID, organizerID); err != nil {
		return domain.Stage{}, err
	}
	strategy, err := s.registry.Lookup(req.Kind)
	if err != nil {
		return domain.Stage{}, err
	}
	created, err := strategy.CreateStage(req)
	if err != nil {
		return domain.Stage{}, err
	}
	created.ID = uuid.NewString()
	if err := s.contests.SaveStage(created); err != nil {
		return domain.Stage{}, err
	}
	s.log.Info("Stage created", "contest", created.ContestID, "stage", created.ID, "kind", created.Kind)
	return created, nil
}

// UpdateStage patches a stage that has not finished yet.
func (s *Service) UpdateStage(ctx context.Context, organizerID string, req stage.UpdateRequest) (domain.Stage, error) {
	existing, err := s.contests.GetStage(req.StageID)
	if err != nil {
		return domain.Stage{}, err
	}
	if _, err := s.organizedBy(existing.ContestID, organizerID); err != nil {
		return domain.Stage{}, err
	}
	if existing.Status == domain.StageFinished {
		return domain.Stage{}, fmt.Errorf("%w: stage %s already finished", errors.ErrStageNotActive, existing.ID)
	}
	strategy, err := s.registry.Lookup(existing.Kind)
	if err != nil {
		return domain.Stage{}, err
	}
	updated, err := strategy.UpdateStage(req, existing)
	if err != nil {
		return domain.Stage{}, err
	}
	if err := s.contests.SaveStage(updated); err != nil {
		return domain.Stage{}, err
	}
	return updated, nil
}

func (s *Service) StageSettings(ctx context.Context, stageID string) (domain.StageSettings, error) {
	st, err := s.contests.GetStage(stageID)
	if err != nil {
		return nil, err
	}
	strategy, err := s.registry.Lookup(st.Kind)
	if err != nil {
		return nil, err
	}
	return strategy.GetSettings(st)
}

// NextStage finishes the running stage, if any, then runs the next pending stage
// by position. Without a pending stage the contest finishes and the zero stage is returned.
func (s *Service) NextStage(ctx context.Context, contestID, organizerID string) (domain.Stage, error) {
	unlock := s.lock(contestID)
	defer unlock()

	contest, err := s.organizedBy(contestID, organizerID)
	if err != nil {
		return domain.Stage{}, err
	}
	return s.nextStage(ctx, contest)
}

// AdvanceExpired moves every active contest whose running stage outlived its
// duration to the next stage. Stages without a duration wait for the organizer.
func (s *Service) AdvanceExpired(ctx context.Context, now time.Time) (int, error) {
	contests, err := s.contests.ListContests(domain.ContestActive)
	if err != nil {
		return 0, err
	}
	advanced := 0
	for _, candidate := range contests {
		if ctx.Err() != nil {
			return advanced, ctx.Err()
		}
		ok, err := s.advanceElapsed(ctx, candidate.ID, now)
		if err != nil {
			s.log.Error("Stage transition failed, retrying next tick", "contest", candidate.ID, "err", err)
			continue
		}
		if ok {
			advanced++
		}
	}
	return advanced, nil
}

func (s *Service) advanceElapsed(ctx context.Context, contestID string, now time.Time) (bool, error) {
	unlock := s.lock(contestID)
	defer unlock()

	contest, err := s.contests.GetContest(contestID)
	if err != nil {
		return false, err
	}
	if contest.Status != domain.ContestActive || contest.CurrentStageID == "" {
		return false, nil
	}
	current, err := s.contests.GetStage(contest.CurrentStageID)
	if err != nil {
		return false, err
	}
	if current.StartedAt == nil || current.DurationMinutes <= 0 ||
		now.Before(current.StartedAt.Add(time.Duration(current.DurationMinutes)*time.Minute)) {
		return false, nil
	}
	s.log.Info("Stage duration elapsed", "contest", contestID, "stage", current.ID, "minutes", current.DurationMinutes)
	_, err = s.nextStage(ctx, contest)
	return err == nil, err
}

func (s *Service) nextStage(ctx context.Context, contest domain.Contest) (domain.Stage, error) {
	contestID := contest.ID
	if contest.Status == domain.ContestFinished {
		return domain.Stage{}, errors.ErrContestNotActive
	}

	var err error
	previous := contest.CurrentStageID
	if previous != "" {
		if contest, err = s.finishCurrent(ctx, contest); err != nil {
			return domain.Stage{}, err
		}
	}

	stages, err := s.contests.ListStages(contestID)
	if err != nil {
		return domain.Stage{}, err
	}
	next, ok := lo.Find(stages, func(st domain.Stage) bool { return st.Status == domain.StagePending })
	if !ok {
		return domain.Stage{}, s.finishContest(contest, stages)
	}

	strategy, err := s.registry.ForStage(next)
	if err != nil {
		return domain.Stage{}, err
	}
	settings, err := strategy.RunStage(ctx, next.ID)
	if err != nil {
		return domain.Stage{}, err
	}
	// RunStage may have stored the provisioned room.
	if next, err = s.contests.GetStage(next.ID); err != nil {
		return domain.Stage{}, err
	}
	now := s.now()
	next.Status = domain.StageActive
	next.StartedAt = &now
	if err := s.contests.SaveStage(next); err != nil {
		return domain.Stage{}, err
	}
	contest.Status = domain.ContestActive
	contest.CurrentStageID = next.ID
	if err := s.contests.SaveContest(contest); err != nil {
		return domain.Stage{}, err
	}

	s.log.Info("Stage running", "contest", contestID, "stage", next.ID, "kind", next.Kind, "previous", previous)
	s.emit(event.StageChanged{
		ContestID:       contestID,
		PreviousStageID: previous,
		StageID:         next.ID,
		Kind:            next.Kind,
		StageRoom:       stageRoom(settings),
		At:              now,
	})
	return next, nil
}

// FinishCurrentStage ends the running stage without starting the next one.
func (s *Service) FinishCurrentStage(ctx context.Context, contestID, organizerID string) error {
	unlock := s.lock(contestID)
	defer unlock()

	contest, err := s.organizedBy(contestID, organizerID)
	if err != nil {
		return err
	}
	if contest.Status != domain.ContestActive || contest.CurrentStageID == "" {
		return errors.ErrStageNotActive
	}
	previous := contest.CurrentStageID
	if _, err := s.finishCurrent(ctx, contest); err != nil {
		return err
	}
	s.emit(event.StageChanged{ContestID: contestID, PreviousStageID: previous, At: s.now()})
	return nil
}

// finishCurrent asks the strategy for the stage contributions and adds them to
// the participants' totals. The stage is marked finished only once the scores are stored.
func (s *Service) finishCurrent(ctx context.Context, contest domain.Contest) (domain.Contest, error) {
	current, err := s.contests.GetStage(contest.CurrentStageID)
	if err != nil {
		return contest, err
	}
	strategy, err := s.registry.ForStage(current)
	if err != nil {
		return contest, err
	}
	scores, err := strategy.FinishStage(ctx, current)
	if err != nil {
		return contest, fmt.Errorf("finish stage %s: %w", current.ID, err)
	}
	skipped, err := s.contests.AddScores(contest.ID, scores)
	if err != nil {
		return contest, err
	}
	if len(skipped) > 0 {
		s.log.Warn("Stage scores for unknown participants ignored", "contest", contest.ID, "stage", current.ID, "users", skipped)
	}

	now := s.now()
	current.Status = domain.StageFinished
	current.FinishedAt = &now
	if err := s.contests.SaveStage(current); err != nil {
		return contest, err
	}
	contest.CurrentStageID = ""
	if err := s.contests.SaveContest(contest); err != nil {
		return contest, err
	}
	s.log.Info("Stage finished", "contest", contest.ID, "stage", current.ID, "kind", current.Kind, "scored", len(scores))
	return contest, nil
}

func (s *Service) finishContest(contest domain.Contest, stages []domain.Stage) error {
	contest.Status = domain.ContestFinished
	contest.CurrentStageID = ""
	if err := s.contests.SaveContest(contest); err != nil {
		return err
	}
	for _, st := range stages {
		s.ledger.DropPrefix(stage.VoteScope(st.ID))
	}
	final, err := s.leaderboard(contest.ID)
	if err != nil {
		s.log.Warn("Final contest leaderboard unavailable", "contest", contest.ID, "err", err)
	}
	s.log.Info("Contest finished", "contest", contest.ID, "stages", len(stages))
	s.emit(event.ContestFinished{ContestID: contest.ID, Final: final, At: s.now()})
	return nil
}

// CastVote records a vote of the contest's running stage.
func (s *Service) CastVote(ctx context.Context, req VoteRequest) (domain.Tally, error) {
	if err := auth.Validate(req); err != nil {
		return domain.Tally{}, err
	}
	contest, err := s.contests.GetContest(req.ContestID)
	if err != nil {
		return domain.Tally{}, err
	}
	if contest.Status != domain.ContestActive {
		return domain.Tally{}, errors.ErrContestNotActive
	}
	if contest.CurrentStageID != req.StageID {
		return domain.Tally{}, errors.ErrStageNotActive
	}
	current, err := s.contests.GetStage(req.StageID)
	if err != nil {
		return domain.Tally{}, err
	}
	voter, err := s.contests.GetParticipant(req.ContestID, req.VoterID)
	if err != nil {
		return domain.Tally{}, err
	}
	submission, err := s.contests.GetSubmission(req.ContestID, req.SubmissionID)
	if err != nil {
		return domain.Tally{}, err
	}
	strategy, err := s.registry.ForStage(current)
	if err != nil {
		return domain.Tally{}, err
	}
	ballot, ok := strategy.(stage.Ballot)
	if !ok {
		return domain.Tally{}, fmt.Errorf("%w: %s", errors.ErrVotingNotSupported, current.Kind)
	}
	tally, err := ballot.CastVote(current, voter, submission, req.Score)
	if err != nil {
		return domain.Tally{}, err
	}

	recorded := event.VoteRecorded{
		ContestID:    req.ContestID,
		StageID:      req.StageID,
		SubmissionID: req.SubmissionID,
		Count:        tally.Count,
		Total:        tally.Score,
		At:           s.now(),
	}
	if hidden(current) {
		recorded.Total = 0
	}
	s.emit(recorded)
	return tally, nil
}

// StageResults returns the running tallies of a voting stage.
func (s *Service) StageResults(ctx context.Context, stageID string) ([]domain.Tally, error) {
	st, err := s.contests.GetStage(stageID)
	if err != nil {
		return nil, err
	}
	strategy, err := s.registry.ForStage(st)
	if err != nil {
		return nil, err
	}
	ballot, ok := strategy.(stage.Ballot)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrVotingNotSupported, st.Kind)
	}
	if st.Status != domain.StageFinished && hidden(st) {
		return nil, nil
	}
	return ballot.Results(st)
}

// Leaderboard ranks competitors by total score.
func (s *Service) Leaderboard(ctx context.Context, contestID string) ([]domain.LeaderboardEntry, error) {
	if _, err := s.contests.GetContest(contestID); err != nil {
		return nil, err
	}
	return s.leaderboard(contestID)
}

func (s *Service) leaderboard(contestID string) ([]domain.LeaderboardEntry, error) {
	participants, err := s.contests.ListParticipants(contestID)
	if err != nil {
		return nil, err
	}
	competitors := lo.Filter(participants, func(p domain.ContestParticipant, _ int) bool {
		return p.HasRole(domain.RoleCompetitor)
	})
	// Ties go to the earlier registration.
	slices.SortStableFunc(competitors, func(a, b domain.ContestParticipant) int {
		switch {
		case a.TotalScore > b.TotalScore:
			return -1
		case a.TotalScore < b.TotalScore:
			return 1
		default:
			return a.JoinedAt.Compare(b.JoinedAt)
		}
	})
	return lo.Map(competitors, func(p domain.ContestParticipant, i int) domain.LeaderboardEntry {
		return domain.LeaderboardEntry{Rank: i + 1, UserID: p.UserID, Nickname: p.DisplayName, Score: p.TotalScore}
	}), nil
}

func (s *Service) organizedBy(contestID, organizerID string) (domain.Contest, error) {
	contest, err := s.contests.GetContest(contestID)
	if err != nil {
		return domain.Contest{}, err
	}
	if contest.OrganizerID != organizerID {
		return domain.Contest{}, errors.ErrNotOrganizer
	}
	return contest, nil
}

func (s *Service) emit(ev event.DomainEvent) {
	select {
	case s.events <- ev:
	default:
		s.log.Warn("Event channel full, event dropped", "topic", ev.RoomKey(), "type", fmt.Sprintf("%T", ev))
	}
}

func (s *Service) lock(contestID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(contestID))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// hidden is true for jury stages revealing their scores only once finished.
func hidden(st domain.Stage) bool {
	settings, ok := st.Settings.(domain.JuryVoteSettings)
	return ok && settings.RevealMode == domain.RevealOnFinish
}

func stageRoom(settings domain.StageSettings) domain.RoomKey {
	switch s := settings.(type) {
	case domain.QuizSettings:
		return s.RoomKey
	case domain.SurveySettings:
		return s.RoomKey
	default:
		return ""
	}
}
