package domain

import (
	"github.com/stretchr/testify/require"
	"room-engine/errors"
	"testing"
	"time"
)

func twoItemRoom(now time.Time) Room {
	form := Form{
		ID:   "form-1",
		Kind: QuizRoom,
		Items: []Item{
			{ID: "q0", Options: []Option{{ID: "A", Correct: true}, {ID: "B"}}, Points: 10},
			{ID: "q1", Options: []Option{{ID: "A"}, {ID: "B", Correct: true}}, Points: 10},
		},
	}
	return NewRoom("room-1", form, "host", 5*time.Second, 10, false, now, now.Add(time.Hour))
}

func TestRoom_FullLoop(t *testing.T) {
	req := require.New(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	room := twoItemRoom(now)

	// Given a waiting room, Then no item is active
	_, ok := room.ActiveItem()
	req.False(ok)
	req.Nil(room.Deadline)

	// When the host starts it
	req.NoError(room.Start(now))

	// Then item 0 runs with a full window
	req.Equal(ItemActive, room.Status)
	req.Equal(0, room.ActiveIndex)
	req.Equal(now.Add(5*time.Second), *room.Deadline)

	// When the deadline passes, Then the intermission deadline is anchored on it
	late := now.Add(7 * time.Second)
	req.NoError(room.FinishItem(late, 10*time.Second))
	req.Equal(ItemFinished, room.Status)
	req.Equal(now.Add(15*time.Second), *room.Deadline)

	// When the intermission is over, Then item 1 starts from now
	next := now.Add(15 * time.Second)
	req.NoError(room.NextItem(next))
	req.Equal(ItemActive, room.Status)
	req.Equal(1, room.ActiveIndex)
	req.Equal(next.Add(5*time.Second), *room.Deadline)

	// When the last item ends and the intermission elapses
	req.NoError(room.FinishItem(next.Add(5*time.Second), 10*time.Second))
	req.False(room.HasNextItem())
	req.NoError(room.NextItem(next.Add(15 * time.Second)))

	// Then the room folds into FINISHED
	req.Equal(Finished, room.Status)
	req.Equal(ReasonCompleted, room.CloseReason)
	req.Nil(room.Deadline)
	req.NotNil(room.ClosedAt)
	_, ok = room.ActiveItem()
	req.False(ok)
}

func TestRoom_TransitionsBeforeDeadlineAreRefused(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := twoItemRoom(now)
	req.NoError(room.Start(now))

	err := room.FinishItem(now.Add(time.Second), time.Second)
	req.ErrorIs(err, errors.ErrInvalidTransition)
	req.Equal(ItemActive, room.Status)

	req.NoError(room.FinishItem(now.Add(5*time.Second), 10*time.Second))
	err = room.NextItem(now.Add(6 * time.Second))
	req.ErrorIs(err, errors.ErrInvalidTransition)
	req.Equal(ItemFinished, room.Status)
}

func TestRoom_ActiveToActiveIsIllegal(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := twoItemRoom(now)
	req.NoError(room.Start(now))

	// NextItem is only legal from ITEM_FINISHED
	req.ErrorIs(room.NextItem(now.Add(time.Hour)), errors.ErrInvalidTransition)
	req.ErrorIs(room.Start(now), errors.ErrInvalidTransition)
	req.Equal(0, room.ActiveIndex)
}

func TestRoom_StartWithoutItems(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := NewRoom("empty", Form{ID: "f", Kind: SurveyRoom}, "host", time.Minute, 10, false, now, now.Add(time.Hour))

	req.ErrorIs(room.Start(now), errors.ErrNoItems)
	req.Equal(Waiting, room.Status)
}

func TestRoom_CloseFromAnyLiveState(t *testing.T) {
	req := require.New(t)
	now := time.Now()

	waiting := twoItemRoom(now)
	req.NoError(waiting.Close(now, ReasonExpired))
	req.Equal(Closed, waiting.Status)
	req.Equal(ReasonExpired, waiting.CloseReason)

	active := twoItemRoom(now)
	req.NoError(active.Start(now))
	req.NoError(active.Close(now, ReasonHost))
	req.Nil(active.Deadline)

	// A terminal room cannot be closed twice
	req.ErrorIs(active.Close(now, ReasonExpired), errors.ErrInvalidTransition)
	req.Equal(ReasonHost, active.CloseReason)
}

func TestRoom_ShortenDeadline(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := twoItemRoom(now)

	req.False(room.ShortenDeadline(now))

	req.NoError(room.Start(now))
	req.False(room.ShortenDeadline(now.Add(time.Minute)))
	req.True(room.ShortenDeadline(now.Add(2 * time.Second)))
	req.Equal(now.Add(2*time.Second), *room.Deadline)
}

func TestRoom_LifetimeElapsed(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := twoItemRoom(now)

	req.False(room.LifetimeElapsed(now))
	req.True(room.LifetimeElapsed(now.Add(time.Hour)))
}
