package domain

import (
	"slices"
	"time"
)

type ContestStatus string

const (
	ContestDraft    ContestStatus = "DRAFT"
	ContestActive   ContestStatus = "ACTIVE"
	ContestFinished ContestStatus = "FINISHED"
)

// Contest chains stages by position. CurrentStageID is empty before the first stage
// runs and after the contest finished.
type Contest struct {
	ID             string
	Name           string
	OrganizerID    string
	Status         ContestStatus
	CurrentStageID string
	CreatedAt      time.Time
}

type ContestRole string

const (
	RoleCompetitor ContestRole = "COMPETITOR"
	RoleJury       ContestRole = "JURY"
)

type ContestParticipant struct {
	ContestID   string
	UserID      string
	DisplayName string
	Roles       []ContestRole
	TotalScore  float64
	JoinedAt    time.Time
}

func (p ContestParticipant) HasRole(role ContestRole) bool {
	return slices.Contains(p.Roles, role)
}

// Submission is a competitor's entry voted on in voting stages.
type Submission struct {
	ID            string
	ContestID     string
	ParticipantID string
	Title         string
	CreatedAt     time.Time
}
