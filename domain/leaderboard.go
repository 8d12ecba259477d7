package domain

import "time"

// LeaderboardEntry ranks an entrant or a contest participant. Ranks start at 1.
type LeaderboardEntry struct {
	Rank     int
	UserID   string
	Nickname string
	Score    float64
}

// Tally is the aggregate of one candidate inside a ledger scope.
type Tally struct {
	Candidate string
	Count     int64
	Score     int64
}

// VoteRecord is one accepted ledger record as it is stored.
type VoteRecord struct {
	Scope     string
	Candidate string
	Voter     string
	Points    int64
	CastAt    time.Time
}
