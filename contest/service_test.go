package contest

import (
	"context"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"log/slog"
	"room-engine/domain"
	"room-engine/domain/event"
	"room-engine/errors"
	"room-engine/ledger"
	"room-engine/mocks"
	"room-engine/repositories"
	"room-engine/stage"
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	registry *stage.Registry
	rooms    *mocks.MockRoomProvisioner
	events   chan event.DomainEvent
}

func newFixture(t *testing.T) fixture {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	contests := repositories.NewContestRepository(db, log)
	votes := ledger.New(log, repositories.NewVoteRepository(db, log))
	deps := stage.Deps{Log: log, Contests: contests, Ledger: votes}
	rooms := mocks.NewMockRoomProvisioner(gomock.NewController(t))
	registry, err := stage.NewRegistry(log,
		stage.NewQuizStrategy(deps, rooms), stage.NewSurveyStrategy(deps, rooms),
		stage.NewPublicVoteStrategy(deps), stage.NewJuryVoteStrategy(deps), stage.NewGenericStrategy(deps))
	require.NoError(t, err)

	events := make(chan event.DomainEvent, 64)
	svc := NewService(log, contests, registry, votes, events).WithClock(func() time.Time { return t0 })
	return fixture{svc: svc, registry: registry, rooms: rooms, events: events}
}

// seed creates a contest run by "org" with competitors p1 and p2 and jurors j1 and j2.
// It returns the contest and the submissions of p1 and p2.
func (f fixture) seed(t *testing.T) (domain.Contest, domain.Submission, domain.Submission) {
	req := require.New(t)
	ctx := context.Background()
	contest, err := f.svc.CreateContest(ctx, CreateContestRequest{Name: "Spring cup", OrganizerID: "org"})
	req.NoError(err)
	req.Equal(domain.ContestDraft, contest.Status)

	for _, p := range []ParticipantRequest{
		{ContestID: contest.ID, UserID: "p1", DisplayName: "Alice", Roles: []domain.ContestRole{domain.RoleCompetitor}},
		{ContestID: contest.ID, UserID: "p2", DisplayName: "Bob", Roles: []domain.ContestRole{domain.RoleCompetitor}},
		{ContestID: contest.ID, UserID: "j1", Roles: []domain.ContestRole{domain.RoleJury}},
		{ContestID: contest.ID, UserID: "j2", Roles: []domain.ContestRole{domain.RoleJury}},
	} {
		_, err := f.svc.AddParticipant(ctx, "org", p)
		req.NoError(err)
	}
	sub1, err := f.svc.AddSubmission(ctx, SubmissionRequest{ContestID: contest.ID, ParticipantID: "p1", Title: "First"})
	req.NoError(err)
	sub2, err := f.svc.AddSubmission(ctx, SubmissionRequest{ContestID: contest.ID, ParticipantID: "p2", Title: "Second"})
	req.NoError(err)
	return contest, sub1, sub2
}

func (f fixture) drain() []event.DomainEvent {
	var out []event.DomainEvent
	for {
		select {
		case ev := <-f.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func ptr[T any](v T) *T { return &v }

func TestService_PublicThenJuryThenFinished(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	contest, sub1, sub2 := f.seed(t)

	// Given a public vote then a jury vote worth twice as much, created out of order
	jury, err := f.svc.CreateStage(ctx, "org", stage.Request{ContestID: contest.ID, Name: "Jury", Kind: domain.JuryVoteStage, Position: 2, Weight: ptr(2.0)})
	req.NoError(err)
	public, err := f.svc.CreateStage(ctx, "org", stage.Request{ContestID: contest.ID, Name: "Public", Kind: domain.PublicVoteStage, Position: 1})
	req.NoError(err)

	// When the first stage runs
	running, err := f.svc.NextStage(ctx, contest.ID, "org")
	req.NoError(err)
	req.Equal(public.ID, running.ID)
	req.Equal(domain.StageActive, running.Status)
	req.Equal([]event.DomainEvent{event.StageChanged{ContestID: contest.ID, StageID: public.ID, Kind: domain.PublicVoteStage, At: t0}}, f.drain())

	// And three users vote
	for voter, sub := range map[string]domain.Submission{"p1": sub2, "p2": sub1, "j1": sub1} {
		_, err := f.svc.CastVote(ctx, VoteRequest{ContestID: contest.ID, StageID: public.ID, VoterID: voter, SubmissionID: sub.ID})
		req.NoError(err)
	}
	_, err = f.svc.CastVote(ctx, VoteRequest{ContestID: contest.ID, StageID: public.ID, VoterID: "j1", SubmissionID: sub2.ID})
	req.ErrorIs(err, errors.ErrDuplicateVote)
	recorded := f.drain()
	req.Len(recorded, 3)

	tallies, err := f.svc.StageResults(ctx, public.ID)
	req.NoError(err)
	req.Equal(domain.Tally{Candidate: sub1.ID, Count: 2, Score: 2}, tallies[0])

	// When the jury stage replaces it
	running, err = f.svc.NextStage(ctx, contest.ID, "org")
	req.NoError(err)
	req.Equal(jury.ID, running.ID)

	// Then the public stage credited its votes and no longer accepts any
	board, err := f.svc.Leaderboard(ctx, contest.ID)
	req.NoError(err)
	req.Equal([]domain.LeaderboardEntry{
		{Rank: 1, UserID: "p1", Nickname: "Alice", Score: 2},
		{Rank: 2, UserID: "p2", Nickname: "Bob", Score: 1},
	}, board)
	_, err = f.svc.CastVote(ctx, VoteRequest{ContestID: contest.ID, StageID: public.ID, VoterID: "j2", SubmissionID: sub1.ID})
	req.ErrorIs(err, errors.ErrStageNotActive)

	// When the jury scores
	for _, v := range []VoteRequest{
		{VoterID: "j1", SubmissionID: sub1.ID, Score: 4},
		{VoterID: "j2", SubmissionID: sub1.ID, Score: 6},
		{VoterID: "j1", SubmissionID: sub2.ID, Score: 9},
		{VoterID: "j2", SubmissionID: sub2.ID, Score: 9},
	} {
		v.ContestID, v.StageID = contest.ID, jury.ID
		_, err := f.svc.CastVote(ctx, v)
		req.NoError(err)
	}
	_, err = f.svc.CastVote(ctx, VoteRequest{ContestID: contest.ID, StageID: jury.ID, VoterID: "p1", SubmissionID: sub1.ID, Score: 10})
	req.ErrorIs(err, errors.ErrNotJuror)
	f.drain()

	// And no stage is left
	last, err := f.svc.NextStage(ctx, contest.ID, "org")
	req.NoError(err)
	req.Empty(last.ID)

	// Then p2 overtakes with 1 + 9*2 against 2 + 5*2
	final := []domain.LeaderboardEntry{
		{Rank: 1, UserID: "p2", Nickname: "Bob", Score: 19},
		{Rank: 2, UserID: "p1", Nickname: "Alice", Score: 12},
	}
	board, err = f.svc.Leaderboard(ctx, contest.ID)
	req.NoError(err)
	req.Equal(final, board)
	req.Equal([]event.DomainEvent{event.ContestFinished{ContestID: contest.ID, Final: final, At: t0}}, f.drain())

	_, err = f.svc.NextStage(ctx, contest.ID, "org")
	req.ErrorIs(err, errors.ErrContestNotActive)
	_, err = f.svc.CastVote(ctx, VoteRequest{ContestID: contest.ID, StageID: jury.ID, VoterID: "j1", SubmissionID: sub1.ID, Score: 3})
	req.ErrorIs(err, errors.ErrContestNotActive)
}

func TestService_VotesRacingTheLastNextStage(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	contest, sub1, sub2 := f.seed(t)

	_, err := f.svc.CreateStage(ctx, "org", stage.Request{ContestID: contest.ID, Name: "Public", Kind: domain.PublicVoteStage, Position: 1})
	req.NoError(err)
	running, err := f.svc.NextStage(ctx, contest.ID, "org")
	req.NoError(err)
	f.drain()

	// Given every participant voting for sub1 while the organizer ends the last stage
	voters := []string{"p1", "p2", "j1", "j2"}
	results := make([]error, len(voters))
	var wg sync.WaitGroup
	for i, voter := range voters {
		wg.Add(1)
		go func(i int, voter string) {
			defer wg.Done()
			_, results[i] = f.svc.CastVote(ctx, VoteRequest{ContestID: contest.ID, StageID: running.ID, VoterID: voter, SubmissionID: sub1.ID})
		}(i, voter)
	}
	last, err := f.svc.NextStage(ctx, contest.ID, "org")
	req.NoError(err)
	req.Empty(last.ID)
	wg.Wait()

	// Then each vote was either counted or refused, never accepted and lost
	accepted := 0
	for _, err := range results {
		if err == nil {
			accepted++
			continue
		}
		req.True(err == errors.ErrStageNotActive || err == errors.ErrContestNotActive, "unexpected error %v", err)
	}
	board, err := f.svc.Leaderboard(ctx, contest.ID)
	req.NoError(err)
	for _, entry := range board {
		if entry.UserID == "p1" {
			req.InDelta(float64(accepted), entry.Score, 1e-9)
		}
	}

	// And a vote that read the stage as active before it finished is refused
	strategy, err := f.registry.ForStage(running)
	req.NoError(err)
	_, err = strategy.(stage.Ballot).CastVote(running, domain.ContestParticipant{ContestID: contest.ID, UserID: "p1"}, sub2, 0)
	req.ErrorIs(err, errors.ErrStageNotActive)
}

func TestService_LeaderboardTiesGoToEarlierRegistration(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	tick := t0
	f.svc.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})

	contest, err := f.svc.CreateContest(ctx, CreateContestRequest{Name: "Tie cup", OrganizerID: "org"})
	req.NoError(err)

	// Given "zed" registers before "amy"
	for _, user := range []string{"zed", "amy"} {
		_, err := f.svc.AddParticipant(ctx, "org", ParticipantRequest{ContestID: contest.ID, UserID: user, DisplayName: user, Roles: []domain.ContestRole{domain.RoleCompetitor}})
		req.NoError(err)
	}
	zedSub, err := f.svc.AddSubmission(ctx, SubmissionRequest{ContestID: contest.ID, ParticipantID: "zed", Title: "Z"})
	req.NoError(err)
	amySub, err := f.svc.AddSubmission(ctx, SubmissionRequest{ContestID: contest.ID, ParticipantID: "amy", Title: "A"})
	req.NoError(err)

	// And registering zed again later keeps the first registration time
	_, err = f.svc.AddParticipant(ctx, "org", ParticipantRequest{ContestID: contest.ID, UserID: "zed", DisplayName: "zed", Roles: []domain.ContestRole{domain.RoleCompetitor}})
	req.NoError(err)

	public, err := f.svc.CreateStage(ctx, "org", stage.Request{ContestID: contest.ID, Name: "Public", Kind: domain.PublicVoteStage, Position: 1})
	req.NoError(err)
	_, err = f.svc.NextStage(ctx, contest.ID, "org")
	req.NoError(err)

	// When both end with the same score
	_, err = f.svc.CastVote(ctx, VoteRequest{ContestID: contest.ID, StageID: public.ID, VoterID: "zed", SubmissionID: amySub.ID})
	req.NoError(err)
	_, err = f.svc.CastVote(ctx, VoteRequest{ContestID: contest.ID, StageID: public.ID, VoterID: "amy", SubmissionID: zedSub.ID})
	req.NoError(err)
	_, err = f.svc.NextStage(ctx, contest.ID, "org")
	req.NoError(err)

	// Then the earlier registration ranks first, whatever the user ids
	board, err := f.svc.Leaderboard(ctx, contest.ID)
	req.NoError(err)
	req.Equal([]domain.LeaderboardEntry{
		{Rank: 1, UserID: "zed", Nickname: "zed", Score: 1},
		{Rank: 2, UserID: "amy", Nickname: "amy", Score: 1},
	}, board)
}

func TestService_CastVoteRejections(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	contest, sub1, _ := f.seed(t)

	generic, err := f.svc.CreateStage(ctx, "org", stage.Request{ContestID: contest.ID, Name: "Break", Kind: domain.GenericStage, Position: 1})
	req.NoError(err)
	public, err := f.svc.CreateStage(ctx, "org", stage.Request{ContestID: contest.ID, Name: "Public", Kind: domain.PublicVoteStage, Position: 2})
	req.NoError(err)

	// Given a contest that has not started
	_, err = f.svc.CastVote(ctx, VoteRequest{ContestID: contest.ID, StageID: public.ID, VoterID: "p1", SubmissionID: sub1.ID})
	req.ErrorIs(err, errors.ErrContestNotActive)

	// Given a running stage without ballots
	_, err = f.svc.NextStage(ctx, contest.ID, "org")
	req.NoError(err)

	tests := []struct {
		name    string
		vote    VoteRequest
		wantErr error
	}{
		{"Not voting", VoteRequest{StageID: generic.ID, VoterID: "p1", SubmissionID: sub1.ID}, errors.ErrVotingNotSupported},
		{"Not current", VoteRequest{StageID: public.ID, VoterID: "p1", SubmissionID: sub1.ID}, errors.ErrStageNotActive},
		{"Stranger", VoteRequest{StageID: generic.ID, VoterID: "eve", SubmissionID: sub1.ID}, errors.ErrNotParticipant},
		{"Unknown submission", VoteRequest{StageID: generic.ID, VoterID: "p1", SubmissionID: "nope"}, errors.ErrSubmissionNotFound},
	}
	for _, tt := range tests {
		tt.vote.ContestID = contest.ID
		_, err := f.svc.CastVote(ctx, tt.vote)
		req.ErrorIs(err, tt.wantErr, tt.name)
	}

	_, err = f.svc.CastVote(ctx, VoteRequest{ContestID: contest.ID, VoterID: "p1", SubmissionID: sub1.ID})
	req.Error(err)
}

func TestService_OrganizerOnly(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	contest, _, _ := f.seed(t)

	_, err := f.svc.AddParticipant(ctx, "mallory", ParticipantRequest{ContestID: contest.ID, UserID: "m", Roles: []domain.ContestRole{domain.RoleJury}})
	req.ErrorIs(err, errors.ErrNotOrganizer)
	_, err = f.svc.CreateStage(ctx, "mallory", stage.Request{ContestID: contest.ID, Name: "x", Kind: domain.GenericStage})
	req.ErrorIs(err, errors.ErrNotOrganizer)
	_, err = f.svc.NextStage(ctx, contest.ID, "mallory")
	req.ErrorIs(err, errors.ErrNotOrganizer)
	req.ErrorIs(f.svc.FinishCurrentStage(ctx, contest.ID, "org"), errors.ErrStageNotActive)

	// Jurors do not submit
	_, err = f.svc.AddSubmission(ctx, SubmissionRequest{ContestID: contest.ID, ParticipantID: "j1", Title: "Sneaky"})
	req.ErrorIs(err, errors.ErrAccessDenied)

	_, err = f.svc.CreateStage(ctx, "org", stage.Request{ContestID: contest.ID, Name: "x", Kind: "KARAOKE"})
	req.Error(err)
}

func TestService_QuizStageAnnouncesItsRoom(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	contest, _, _ := f.seed(t)

	quiz, err := f.svc.CreateStage(ctx, "org", stage.Request{ContestID: contest.ID, Name: "Quiz", Kind: domain.QuizStage, Position: 1, FormID: "form-1"})
	req.NoError(err)

	f.rooms.EXPECT().
		OpenRoom(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r domain.OpenRoomRequest) (domain.Room, error) {
			req.Equal("org", r.HostID)
			req.True(r.Private)
			return domain.Room{Key: "room-1"}, nil
		})

	// When the quiz runs
	_, err = f.svc.NextStage(ctx, contest.ID, "org")
	req.NoError(err)

	// Then listeners learn which room to join
	req.Equal([]event.DomainEvent{event.StageChanged{ContestID: contest.ID, StageID: quiz.ID, Kind: domain.QuizStage, StageRoom: "room-1", At: t0}}, f.drain())
	settings, err := f.svc.StageSettings(ctx, quiz.ID)
	req.NoError(err)
	req.Equal(domain.RoomKey("room-1"), settings.(domain.QuizSettings).RoomKey)

	// When it finishes, the room ranking is converted into contest points
	f.rooms.EXPECT().CloseRoom(gomock.Any(), domain.RoomKey("room-1"), domain.ReasonStageFinished).Return(nil)
	f.rooms.EXPECT().Leaderboard(gomock.Any(), domain.RoomKey("room-1")).Return([]domain.LeaderboardEntry{
		{Rank: 1, UserID: "p2", Score: 30},
		{Rank: 2, UserID: "p1", Score: 10},
	}, nil)
	req.NoError(f.svc.FinishCurrentStage(ctx, contest.ID, "org"))

	board, err := f.svc.Leaderboard(ctx, contest.ID)
	req.NoError(err)
	req.Equal("p2", board[0].UserID)
	req.InDelta(2.0, board[0].Score, 1e-9)
	req.InDelta(1.0, board[1].Score, 1e-9)
	req.Equal([]event.DomainEvent{event.StageChanged{ContestID: contest.ID, PreviousStageID: quiz.ID, At: t0}}, f.drain())
}

func TestService_HiddenJuryTotals(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	contest, sub1, _ := f.seed(t)

	jury, err := f.svc.CreateStage(ctx, "org", stage.Request{ContestID: contest.ID, Name: "Jury", Kind: domain.JuryVoteStage, Position: 1})
	req.NoError(err)
	_, err = f.svc.NextStage(ctx, contest.ID, "org")
	req.NoError(err)
	f.drain()

	// When a juror scores in a stage revealing on finish
	tally, err := f.svc.CastVote(ctx, VoteRequest{ContestID: contest.ID, StageID: jury.ID, VoterID: "j1", SubmissionID: sub1.ID, Score: 7})
	req.NoError(err)
	req.Equal(int64(7), tally.Score)

	// Then listeners only see the count
	req.Equal([]event.DomainEvent{event.VoteRecorded{ContestID: contest.ID, StageID: jury.ID, SubmissionID: sub1.ID, Count: 1, At: t0}}, f.drain())
	results, err := f.svc.StageResults(ctx, jury.ID)
	req.NoError(err)
	req.Empty(results)

	// When the stage update raises the weight before it finishes
	updated, err := f.svc.UpdateStage(ctx, "org", stage.UpdateRequest{StageID: jury.ID, Weight: ptr(3.0)})
	req.NoError(err)
	req.InDelta(3.0, updated.Settings.StageWeight(), 1e-9)

	req.NoError(f.svc.FinishCurrentStage(ctx, contest.ID, "org"))
	board, err := f.svc.Leaderboard(ctx, contest.ID)
	req.NoError(err)
	req.Equal("p1", board[0].UserID)
	req.InDelta(21.0, board[0].Score, 1e-9)

	_, err = f.svc.UpdateStage(ctx, "org", stage.UpdateRequest{StageID: jury.ID, Weight: ptr(1.0)})
	req.ErrorIs(err, errors.ErrStageNotActive)
}

func TestService_AdvanceExpiredStages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	contest, _, _ := f.seed(t)

	// Given a five minute stage followed by an open ended one
	timed, err := f.svc.CreateStage(ctx, "org", stage.Request{ContestID: contest.ID, Name: "Warmup", Kind: domain.GenericStage, Position: 1, DurationMinutes: 5})
	req.NoError(err)
	open, err := f.svc.CreateStage(ctx, "org", stage.Request{ContestID: contest.ID, Name: "Final", Kind: domain.GenericStage, Position: 2})
	req.NoError(err)
	_, err = f.svc.NextStage(ctx, contest.ID, "org")
	req.NoError(err)

	// When the duration has not elapsed
	advanced, err := f.svc.AdvanceExpired(ctx, t0.Add(4*time.Minute))
	req.NoError(err)
	req.Zero(advanced)

	// Then the next scan after it moves on
	advanced, err = f.svc.AdvanceExpired(ctx, t0.Add(5*time.Minute))
	req.NoError(err)
	req.Equal(1, advanced)

	stored, err := f.svc.StageSettings(ctx, timed.ID)
	req.NoError(err)
	req.NotNil(stored)

	// And the open ended stage waits for the organizer
	advanced, err = f.svc.AdvanceExpired(ctx, t0.Add(24*time.Hour))
	req.NoError(err)
	req.Zero(advanced)

	events := f.drain()
	req.Equal(event.StageChanged{ContestID: contest.ID, PreviousStageID: timed.ID, StageID: open.ID, Kind: domain.GenericStage, At: t0}, events[len(events)-1])
}
