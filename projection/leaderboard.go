// Package projection keeps read models built from observed events.
// It never emits events.
package projection

import (
	"context"
	"maps"
	"room-engine/domain"
	"room-engine/domain/event"
	"sync"
	"time"
)

// RoomView is the latest known state of a room as seen by listeners.
type RoomView struct {
	Key         domain.RoomKey
	Entrants    int
	ItemIndex   int
	ItemTotal   int
	LastItem    *event.ItemFinished
	Leaderboard []domain.LeaderboardEntry
	Status      domain.RoomStatus
	Reason      domain.CloseReason
	UpdatedAt   time.Time
}

// ContestView tracks the running stage of a contest and the vote counts of its submissions.
type ContestView struct {
	ContestID string
	StageID   string
	Kind      domain.StageKind
	StageRoom domain.RoomKey
	Votes     map[string]int64
	Totals    map[string]int64
	Final     []domain.LeaderboardEntry
	Finished  bool
	UpdatedAt time.Time
}

// Leaderboards is a permanent sink. Views are replaced on every relevant event
// and handed out as copies.
type Leaderboards struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomKey]RoomView
	contests map[string]ContestView
}

func NewLeaderboards() *Leaderboards {
	return &Leaderboards{
		rooms:    make(map[domain.RoomKey]RoomView),
		contests: make(map[string]ContestView),
	}
}

func (l *Leaderboards) Consume(_ context.Context, e event.DomainEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch evt := e.(type) {
	case event.EntrantJoined:
		view := l.room(evt.Room)
		view.Entrants++
		l.touchRoom(view, evt.At)
	case event.NewItemActive:
		view := l.room(evt.Room)
		view.ItemIndex = evt.Index
		view.ItemTotal = evt.Total
		view.Status = domain.ItemActive
		l.touchRoom(view, evt.At)
	case event.ItemFinished:
		view := l.room(evt.Room)
		finished := evt
		view.LastItem = &finished
		view.Status = domain.ItemFinished
		l.touchRoom(view, evt.At)
	case event.LeaderboardUpdated:
		view := l.room(evt.Room)
		view.Leaderboard = evt.Entries
		l.touchRoom(view, evt.At)
	case event.RoomClosed:
		view := l.room(evt.Room)
		view.Leaderboard = evt.Final
		view.Status = evt.Status
		view.Reason = evt.Reason
		l.touchRoom(view, evt.At)
	case event.StageChanged:
		view := l.contest(evt.ContestID)
		view.StageID = evt.StageID
		view.Kind = evt.Kind
		view.StageRoom = evt.StageRoom
		view.Votes = make(map[string]int64)
		view.Totals = make(map[string]int64)
		l.touchContest(view, evt.At)
	case event.VoteRecorded:
		view := l.contest(evt.ContestID)
		if evt.StageID != view.StageID {
			return nil
		}
		view.Votes[evt.SubmissionID] = evt.Count
		view.Totals[evt.SubmissionID] = evt.Total
		l.touchContest(view, evt.At)
	case event.ContestFinished:
		view := l.contest(evt.ContestID)
		view.StageID = ""
		view.StageRoom = ""
		view.Final = evt.Final
		view.Finished = true
		l.touchContest(view, evt.At)
	}
	return nil
}

// Room returns the view of a room and whether any event about it was seen.
func (l *Leaderboards) Room(key domain.RoomKey) (RoomView, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	view, ok := l.rooms[key]
	if !ok {
		return RoomView{}, false
	}
	view.Leaderboard = append([]domain.LeaderboardEntry(nil), view.Leaderboard...)
	return view, true
}

func (l *Leaderboards) Contest(contestID string) (ContestView, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	view, ok := l.contests[contestID]
	if !ok {
		return ContestView{}, false
	}
	view.Votes = maps.Clone(view.Votes)
	view.Totals = maps.Clone(view.Totals)
	view.Final = append([]domain.LeaderboardEntry(nil), view.Final...)
	return view, true
}

func (l *Leaderboards) room(key domain.RoomKey) RoomView {
	view, ok := l.rooms[key]
	if !ok {
		view = RoomView{Key: key, Status: domain.Waiting}
	}
	return view
}

func (l *Leaderboards) touchRoom(view RoomView, at time.Time) {
	view.UpdatedAt = at
	l.rooms[view.Key] = view
}

func (l *Leaderboards) contest(id string) ContestView {
	view, ok := l.contests[id]
	if !ok {
		view = ContestView{ContestID: id, Votes: make(map[string]int64), Totals: make(map[string]int64)}
	}
	return view
}

func (l *Leaderboards) touchContest(view ContestView, at time.Time) {
	view.UpdatedAt = at
	l.contests[view.ContestID] = view
}
