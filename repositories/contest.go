package repositories

import (
	"cmp"
	"log/slog"
	"room-engine/domain"
	"room-engine/errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const (
	contestPrefix     = "contest:"
	stagePrefix       = "stage:"
	stageOwnerPrefix  = "stage-owner:"
	submissionPrefix  = "submission:"
	participantPrefix = "participant:"
)

type IContestRepository interface {
	SaveContest(contest domain.Contest) error
	GetContest(id string) (domain.Contest, error)
	ListContests(status domain.ContestStatus) ([]domain.Contest, error)
	SaveStage(stage domain.Stage) error
	GetStage(id string) (domain.Stage, error)
	ListStages(contestID string) ([]domain.Stage, error)
	SaveSubmission(submission domain.Submission) error
	GetSubmission(contestID, id string) (domain.Submission, error)
	SaveParticipant(participant domain.ContestParticipant) error
	GetParticipant(contestID, userID string) (domain.ContestParticipant, error)
	ListParticipants(contestID string) ([]domain.ContestParticipant, error)
	AddScores(contestID string, scores map[string]float64) ([]string, error)
}

// ContestRepository stores contests with their stages, submissions and participants.
// Stages live under "stage:{contest}:{stage}" with "stage-owner:{stage}" pointing back
// to the contest, so a stage can be loaded from its id alone.
type ContestRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewContestRepository(db *badger.DB, log *slog.Logger) ContestRepository {
	return ContestRepository{db: db, log: log}
}

func (c ContestRepository) SaveContest(contest domain.Contest) error {
	data, err := encode(record{
		"id":               contest.ID,
		"name":             contest.Name,
		"organizer_id":     contest.OrganizerID,
		"status":           string(contest.Status),
		"current_stage_id": contest.CurrentStageID,
		"created_at":       formatTime(contest.CreatedAt),
	})
	if err != nil {
		return err
	}
	return persistenceErr(c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(contestPrefix+contest.ID), data)
	}))
}

func (c ContestRepository) GetContest(id string) (domain.Contest, error) {
	var contest domain.Contest
	err := c.db.View(func(txn *badger.Txn) error {
		rec, err := getRecord(txn, []byte(contestPrefix+id), errors.ErrContestNotFound)
		if err != nil {
			return err
		}
		contest = toContest(rec)
		return nil
	})
	return contest, persistenceErr(err)
}

// ListContests scans every contest and keeps those in the given status.
func (c ContestRepository) ListContests(status domain.ContestStatus) ([]domain.Contest, error) {
	var contests []domain.Contest
	err := c.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, []byte(contestPrefix), func(_ []byte, value []byte) error {
			rec, err := decode(value)
			if err != nil {
				return err
			}
			if contest := toContest(rec); contest.Status == status {
				contests = append(contests, contest)
			}
			return nil
		})
	})
	return contests, persistenceErr(err)
}

func toContest(rec record) domain.Contest {
	return domain.Contest{
		ID:             rec.str("id"),
		Name:           rec.str("name"),
		OrganizerID:    rec.str("organizer_id"),
		Status:         domain.ContestStatus(rec.str("status")),
		CurrentStageID: rec.str("current_stage_id"),
		CreatedAt:      rec.time("created_at"),
	}
}

func (c ContestRepository) SaveStage(stage domain.Stage) error {
	data, err := encode(fromStage(stage))
	if err != nil {
		return err
	}
	return persistenceErr(c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(stageOwnerPrefix+stage.ID), []byte(stage.ContestID)); err != nil {
			return err
		}
		return txn.Set(stageKey(stage.ContestID, stage.ID), data)
	}))
}

func (c ContestRepository) GetStage(id string) (domain.Stage, error) {
	var stage domain.Stage
	err := c.db.View(func(txn *badger.Txn) error {
		owner, err := txn.Get([]byte(stageOwnerPrefix + id))
		if err == badger.ErrKeyNotFound {
			return errors.ErrStageNotFound
		}
		if err != nil {
			return err
		}
		contestID, err := owner.ValueCopy(nil)
		if err != nil {
			return err
		}
		rec, err := getRecord(txn, stageKey(string(contestID), id), errors.ErrStageNotFound)
		if err != nil {
			return err
		}
		stage = toStage(rec)
		return nil
	})
	return stage, persistenceErr(err)
}

// ListStages returns a contest's stages ordered by position.
func (c ContestRepository) ListStages(contestID string) ([]domain.Stage, error) {
	var stages []domain.Stage
	err := c.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, []byte(stagePrefix+contestID+":"), func(_ []byte, value []byte) error {
			rec, err := decode(value)
			if err != nil {
				return err
			}
			stages = append(stages, toStage(rec))
			return nil
		})
	})
	if err != nil {
		return nil, persistenceErr(err)
	}
	slices.SortStableFunc(stages, func(a, b domain.Stage) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return stages, nil
}

func (c ContestRepository) SaveSubmission(submission domain.Submission) error {
	data, err := encode(record{
		"id":             submission.ID,
		"contest_id":     submission.ContestID,
		"participant_id": submission.ParticipantID,
		"title":          submission.Title,
		"created_at":     formatTime(submission.CreatedAt),
	})
	if err != nil {
		return err
	}
	return persistenceErr(c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(submissionPrefix+submission.ContestID+":"+submission.ID), data)
	}))
}

func (c ContestRepository) GetSubmission(contestID, id string) (domain.Submission, error) {
	var submission domain.Submission
	err := c.db.View(func(txn *badger.Txn) error {
		rec, err := getRecord(txn, []byte(submissionPrefix+contestID+":"+id), errors.ErrSubmissionNotFound)
		if err != nil {
			return err
		}
		submission = domain.Submission{
			ID:            rec.str("id"),
			ContestID:     rec.str("contest_id"),
			ParticipantID: rec.str("participant_id"),
			Title:         rec.str("title"),
			CreatedAt:     rec.time("created_at"),
		}
		return nil
	})
	return submission, persistenceErr(err)
}

func (c ContestRepository) SaveParticipant(participant domain.ContestParticipant) error {
	return persistenceErr(c.db.Update(func(txn *badger.Txn) error {
		return setParticipant(txn, participant)
	}))
}

func (c ContestRepository) GetParticipant(contestID, userID string) (domain.ContestParticipant, error) {
	var participant domain.ContestParticipant
	err := c.db.View(func(txn *badger.Txn) error {
		rec, err := getRecord(txn, participantKey(contestID, userID), errors.ErrNotParticipant)
		if err != nil {
			return err
		}
		participant = toParticipant(rec)
		return nil
	})
	return participant, persistenceErr(err)
}

func (c ContestRepository) ListParticipants(contestID string) ([]domain.ContestParticipant, error) {
	var participants []domain.ContestParticipant
	err := c.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, []byte(participantPrefix+contestID+":"), func(_ []byte, value []byte) error {
			rec, err := decode(value)
			if err != nil {
				return err
			}
			participants = append(participants, toParticipant(rec))
			return nil
		})
	})
	if err != nil {
		return nil, persistenceErr(err)
	}
	return participants, nil
}

// AddScores adds each contribution to the participant's total in one transaction.
// Users that are not participants of the contest are skipped and returned.
func (c ContestRepository) AddScores(contestID string, scores map[string]float64) ([]string, error) {
	var skipped []string
	err := c.db.Update(func(txn *badger.Txn) error {
		skipped = nil
		for _, userID := range lo.Keys(scores) {
			rec, err := getRecord(txn, participantKey(contestID, userID), errors.ErrNotParticipant)
			if err == errors.ErrNotParticipant {
				skipped = append(skipped, userID)
				continue
			}
			if err != nil {
				return err
			}
			participant := toParticipant(rec)
			participant.TotalScore += scores[userID]
			if err := setParticipant(txn, participant); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, persistenceErr(err)
	}
	if len(skipped) > 0 {
		c.log.Warn("Scores for unknown participants skipped", "contest", contestID, "users", skipped)
	}
	return skipped, nil
}

func getRecord(txn *badger.Txn, key []byte, notFound error) (record, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	var rec record
	err = item.Value(func(val []byte) error {
		rec, err = decode(val)
		return err
	})
	return rec, err
}

func setParticipant(txn *badger.Txn, p domain.ContestParticipant) error {
	roles := lo.Map(p.Roles, func(r domain.ContestRole, _ int) string { return string(r) })
	data, err := encode(record{
		"contest_id":   p.ContestID,
		"user_id":      p.UserID,
		"display_name": p.DisplayName,
		"roles":        anyStrings(roles),
		"total_score":  p.TotalScore,
		"joined_at":    formatTime(p.JoinedAt),
	})
	if err != nil {
		return err
	}
	return txn.Set(participantKey(p.ContestID, p.UserID), data)
}

func toParticipant(rec record) domain.ContestParticipant {
	return domain.ContestParticipant{
		ContestID:   rec.str("contest_id"),
		UserID:      rec.str("user_id"),
		DisplayName: rec.str("display_name"),
		Roles:       lo.Map(rec.strings("roles"), func(r string, _ int) domain.ContestRole { return domain.ContestRole(r) }),
		TotalScore:  rec.float("total_score"),
		JoinedAt:    rec.time("joined_at"),
	}
}

func participantKey(contestID, userID string) []byte {
	return []byte(participantPrefix + contestID + ":" + userID)
}

func stageKey(contestID, stageID string) []byte {
	return []byte(stagePrefix + contestID + ":" + stageID)
}

func fromStage(stage domain.Stage) record {
	return record{
		"id":               stage.ID,
		"contest_id":       stage.ContestID,
		"name":             stage.Name,
		"kind":             string(stage.Kind),
		"position":         stage.Position,
		"duration_minutes": stage.DurationMinutes,
		"status":           string(stage.Status),
		"started_at":       formatTimePtr(stage.StartedAt),
		"finished_at":      formatTimePtr(stage.FinishedAt),
		"settings":         fromSettings(stage.Settings),
	}
}

func toStage(rec record) domain.Stage {
	kind := domain.StageKind(rec.str("kind"))
	return domain.Stage{
		ID:              rec.str("id"),
		ContestID:       rec.str("contest_id"),
		Name:            rec.str("name"),
		Kind:            kind,
		Position:        int(rec.int("position")),
		DurationMinutes: int(rec.int("duration_minutes")),
		Status:          domain.StageStatus(rec.str("status")),
		StartedAt:       rec.timePtr("started_at"),
		FinishedAt:      rec.timePtr("finished_at"),
		Settings:        toSettings(kind, rec.sub("settings")),
	}
}

func fromSettings(settings domain.StageSettings) map[string]any {
	switch s := settings.(type) {
	case domain.QuizSettings:
		return map[string]any{
			"stage_id":          s.StageID,
			"form_id":           s.FormID,
			"room_key":          string(s.RoomKey),
			"max_participants":  s.MaxParticipants,
			"time_per_question": s.TimePerQuestion,
			"weight":            s.Weight,
		}
	case domain.SurveySettings:
		return map[string]any{
			"stage_id":          s.StageID,
			"form_id":           s.FormID,
			"room_key":          string(s.RoomKey),
			"max_participants":  s.MaxParticipants,
			"time_per_question": s.TimePerQuestion,
		}
	case domain.PublicVoteSettings:
		return map[string]any{"stage_id": s.StageID, "weight": s.Weight, "max_score": s.MaxScore}
	case domain.JuryVoteSettings:
		return map[string]any{
			"stage_id":         s.StageID,
			"weight":           s.Weight,
			"max_score":        s.MaxScore,
			"reveal_mode":      string(s.RevealMode),
			"show_judge_names": s.ShowJudgeNames,
		}
	case domain.GenericSettings:
		return map[string]any{"stage_id": s.StageID, "description": s.Description}
	default:
		return map[string]any{}
	}
}

func toSettings(kind domain.StageKind, rec record) domain.StageSettings {
	switch kind {
	case domain.QuizStage:
		return domain.QuizSettings{
			StageID:         rec.str("stage_id"),
			FormID:          rec.str("form_id"),
			RoomKey:         domain.RoomKey(rec.str("room_key")),
			MaxParticipants: int(rec.int("max_participants")),
			TimePerQuestion: int(rec.int("time_per_question")),
			Weight:          rec.float("weight"),
		}
	case domain.SurveyStage:
		return domain.SurveySettings{
			StageID:         rec.str("stage_id"),
			FormID:          rec.str("form_id"),
			RoomKey:         domain.RoomKey(rec.str("room_key")),
			MaxParticipants: int(rec.int("max_participants")),
			TimePerQuestion: int(rec.int("time_per_question")),
		}
	case domain.PublicVoteStage:
		return domain.PublicVoteSettings{
			StageID:  rec.str("stage_id"),
			Weight:   rec.float("weight"),
			MaxScore: rec.int("max_score"),
		}
	case domain.JuryVoteStage:
		return domain.JuryVoteSettings{
			StageID:        rec.str("stage_id"),
			Weight:         rec.float("weight"),
			MaxScore:       rec.int("max_score"),
			RevealMode:     domain.RevealMode(rec.str("reveal_mode")),
			ShowJudgeNames: rec.bool("show_judge_names"),
		}
	case domain.GenericStage:
		return domain.GenericSettings{StageID: rec.str("stage_id"), Description: rec.str("description")}
	default:
		return nil
	}
}
