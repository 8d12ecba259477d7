package event

import (
	"room-engine/domain"
	"time"
)

// DomainEvent is addressed by room key. Contest wide events use ContestTopic.
type DomainEvent interface {
	RoomKey() domain.RoomKey
}

func ContestTopic(contestID string) domain.RoomKey {
	return domain.RoomKey("contest:" + contestID)
}

type EntrantJoined struct {
	Room     domain.RoomKey
	UserID   string
	Nickname string
	At       time.Time
}

func (e EntrantJoined) RoomKey() domain.RoomKey { return e.Room }

// OptionView hides the correctness flag while an item is running.
type OptionView struct {
	ID    string
	Label string
}

type NewItemActive struct {
	Room     domain.RoomKey
	Index    int
	Total    int
	Prompt   string
	Options  []OptionView
	Deadline time.Time
	At       time.Time
}

func (e NewItemActive) RoomKey() domain.RoomKey { return e.Room }

type AnswerSubmitted struct {
	Room      domain.RoomKey
	ItemIndex int
	UserID    string
	Answered  int
	Expected  int
	At        time.Time
}

func (e AnswerSubmitted) RoomKey() domain.RoomKey { return e.Room }

// ItemFinished reveals the tallies of the item that just ended.
// Leading is empty when nobody answered.
type ItemFinished struct {
	Room    domain.RoomKey
	Index   int
	Tallies []domain.Tally
	Correct []string
	Leading string
	At      time.Time
}

func (e ItemFinished) RoomKey() domain.RoomKey { return e.Room }

type LeaderboardUpdated struct {
	Room    domain.RoomKey
	Entries []domain.LeaderboardEntry
	At      time.Time
}

func (e LeaderboardUpdated) RoomKey() domain.RoomKey { return e.Room }

// RoomClosed is emitted once per room, on FINISHED as well as on CLOSED.
type RoomClosed struct {
	Room   domain.RoomKey
	Status domain.RoomStatus
	Reason domain.CloseReason
	Final  []domain.LeaderboardEntry
	At     time.Time
}

func (e RoomClosed) RoomKey() domain.RoomKey { return e.Room }

type VoteRecorded struct {
	ContestID    string
	StageID      string
	SubmissionID string
	Count        int64
	Total        int64
	At           time.Time
}

func (e VoteRecorded) RoomKey() domain.RoomKey { return ContestTopic(e.ContestID) }

type StageChanged struct {
	ContestID       string
	PreviousStageID string
	StageID         string
	Kind            domain.StageKind
	StageRoom       domain.RoomKey
	At              time.Time
}

func (e StageChanged) RoomKey() domain.RoomKey { return ContestTopic(e.ContestID) }

type ContestFinished struct {
	ContestID string
	Final     []domain.LeaderboardEntry
	At        time.Time
}

func (e ContestFinished) RoomKey() domain.RoomKey { return ContestTopic(e.ContestID) }
