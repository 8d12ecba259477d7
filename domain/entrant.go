package domain

import "time"

// HostNickname is used when the host joins their own room without a nickname.
const HostNickname = "HOST"

// Entrant is a user's membership in one room, unique per (room, user).
// LastScoredItem is the index of the last item folded into Score, -1 when none.
type Entrant struct {
	ID             string
	RoomKey        RoomKey
	UserID         string
	Nickname       string
	JoinedAt       time.Time
	Score          int64
	LastScoredItem int
}

func NewEntrant(id string, key RoomKey, userID, nickname string, now time.Time) Entrant {
	return Entrant{
		ID:             id,
		RoomKey:        key,
		UserID:         userID,
		Nickname:       nickname,
		JoinedAt:       now,
		LastScoredItem: -1,
	}
}

// Answer journals what an entrant chose for one item and what it earned.
type Answer struct {
	RoomKey     RoomKey
	UserID      string
	ItemIndex   int
	OptionID    string
	Points      int64
	Correct     bool
	SubmittedAt time.Time
}
