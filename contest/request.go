package contest

import "room-engine/domain"

type CreateContestRequest struct {
	Name        string `validate:"required,max=100"`
	OrganizerID string `validate:"required"`
}

type ParticipantRequest struct {
	ContestID   string               `validate:"required"`
	UserID      string               `validate:"required"`
	DisplayName string               `validate:"max=64"`
	Roles       []domain.ContestRole `validate:"required,min=1,dive,oneof=COMPETITOR JURY"`
}

type SubmissionRequest struct {
	ContestID     string `validate:"required"`
	ParticipantID string `validate:"required"`
	Title         string `validate:"required,max=200"`
}

// VoteRequest is a public vote (Score ignored) or a jury score for one submission.
type VoteRequest struct {
	ContestID    string `validate:"required"`
	StageID      string `validate:"required"`
	VoterID      string `validate:"required"`
	SubmissionID string `validate:"required"`
	Score        int64  `validate:"gte=0,lte=100"`
}
