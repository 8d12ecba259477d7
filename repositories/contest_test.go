package repositories

import (
	"github.com/stretchr/testify/require"
	"log/slog"
	"room-engine/domain"
	"room-engine/errors"
	"testing"
	"time"
)

func TestContestRepository_StagesRoundTripSettings(t *testing.T) {
	req := require.New(t)
	repo := NewContestRepository(openDB(t), slog.Default())

	stages := []domain.Stage{
		{ID: "s2", ContestID: "c1", Kind: domain.JuryVoteStage, Position: 2, Status: domain.StagePending,
			Settings: domain.JuryVoteSettings{StageID: "s2", Weight: 2, MaxScore: 10, RevealMode: domain.RevealImmediate, ShowJudgeNames: true}},
		{ID: "s1", ContestID: "c1", Kind: domain.QuizStage, Position: 1, Status: domain.StagePending,
			Settings: domain.QuizSettings{StageID: "s1", FormID: "f1", MaxParticipants: 100, TimePerQuestion: 30, Weight: 1}},
		{ID: "s3", ContestID: "c1", Kind: domain.PublicVoteStage, Position: 3, Status: domain.StagePending,
			Settings: domain.PublicVoteSettings{StageID: "s3", Weight: 1, MaxScore: 1}},
	}
	for _, s := range stages {
		req.NoError(repo.SaveStage(s))
	}

	listed, err := repo.ListStages("c1")
	req.NoError(err)
	req.Len(listed, 3)
	req.Equal("s1", listed[0].ID)
	req.Equal("s2", listed[1].ID)
	req.Equal(domain.QuizSettings{StageID: "s1", FormID: "f1", MaxParticipants: 100, TimePerQuestion: 30, Weight: 1}, listed[0].Settings)

	jury, err := repo.GetStage("s2")
	req.NoError(err)
	req.Equal(stages[0].Settings, jury.Settings)

	_, err = repo.GetStage("missing")
	req.ErrorIs(err, errors.ErrStageNotFound)
}

func TestContestRepository_AddScores(t *testing.T) {
	req := require.New(t)
	repo := NewContestRepository(openDB(t), slog.Default())

	req.NoError(repo.SaveContest(domain.Contest{ID: "c1", OrganizerID: "org", Status: domain.ContestActive, CreatedAt: time.Now()}))
	joined := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	req.NoError(repo.SaveParticipant(domain.ContestParticipant{ContestID: "c1", UserID: "p1", Roles: []domain.ContestRole{domain.RoleCompetitor}, JoinedAt: joined}))
	req.NoError(repo.SaveParticipant(domain.ContestParticipant{ContestID: "c1", UserID: "p2", Roles: []domain.ContestRole{domain.RoleCompetitor}, TotalScore: 1.5}))

	// When two stages contribute scores, one naming an unknown user
	skipped, err := repo.AddScores("c1", map[string]float64{"p1": 7, "p2": 3, "ghost": 4})
	req.NoError(err)
	req.Equal([]string{"ghost"}, skipped)
	_, err = repo.AddScores("c1", map[string]float64{"p1": 0.5})
	req.NoError(err)

	// Then totals accumulate
	p1, err := repo.GetParticipant("c1", "p1")
	req.NoError(err)
	req.InDelta(7.5, p1.TotalScore, 1e-9)
	req.True(p1.HasRole(domain.RoleCompetitor))
	req.True(joined.Equal(p1.JoinedAt))
	p2, err := repo.GetParticipant("c1", "p2")
	req.NoError(err)
	req.InDelta(4.5, p2.TotalScore, 1e-9)

	all, err := repo.ListParticipants("c1")
	req.NoError(err)
	req.Len(all, 2)

	contest, err := repo.GetContest("c1")
	req.NoError(err)
	req.Equal(domain.ContestActive, contest.Status)
	_, err = repo.GetContest("c2")
	req.ErrorIs(err, errors.ErrContestNotFound)
}

func TestContestRepository_Submissions(t *testing.T) {
	req := require.New(t)
	repo := NewContestRepository(openDB(t), slog.Default())

	req.NoError(repo.SaveSubmission(domain.Submission{ID: "sub1", ContestID: "c1", ParticipantID: "p1", Title: "Song"}))

	sub, err := repo.GetSubmission("c1", "sub1")
	req.NoError(err)
	req.Equal("p1", sub.ParticipantID)

	_, err = repo.GetSubmission("c2", "sub1")
	req.ErrorIs(err, errors.ErrSubmissionNotFound)
}

func TestContestRepository_ListContestsByStatus(t *testing.T) {
	req := require.New(t)
	repo := NewContestRepository(openDB(t), slog.Default())

	req.NoError(repo.SaveContest(domain.Contest{ID: "c1", OrganizerID: "org", Status: domain.ContestActive, CurrentStageID: "s1"}))
	req.NoError(repo.SaveContest(domain.Contest{ID: "c2", OrganizerID: "org", Status: domain.ContestDraft}))
	req.NoError(repo.SaveContest(domain.Contest{ID: "c3", OrganizerID: "org", Status: domain.ContestActive}))
	// Stages share no prefix with contests
	req.NoError(repo.SaveStage(domain.Stage{ID: "s1", ContestID: "c1", Kind: domain.GenericStage, Status: domain.StageActive,
		Settings: domain.GenericSettings{StageID: "s1"}}))

	active, err := repo.ListContests(domain.ContestActive)
	req.NoError(err)
	req.Len(active, 2)
	req.Equal("c1", active[0].ID)
	req.Equal("s1", active[0].CurrentStageID)
	req.Equal("c3", active[1].ID)

	finished, err := repo.ListContests(domain.ContestFinished)
	req.NoError(err)
	req.Empty(finished)
}
