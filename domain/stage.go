package domain

import "time"

type StageKind string

const (
	QuizStage       StageKind = "QUIZ"
	SurveyStage     StageKind = "SURVEY"
	PublicVoteStage StageKind = "PUBLIC_VOTE"
	JuryVoteStage   StageKind = "JURY_VOTE"
	GenericStage    StageKind = "GENERIC"
)

// StageKinds is the closed set every stage registry must cover.
var StageKinds = []StageKind{QuizStage, SurveyStage, PublicVoteStage, JuryVoteStage, GenericStage}

type StageStatus string

const (
	StagePending  StageStatus = "PENDING"
	StageActive   StageStatus = "ACTIVE"
	StageFinished StageStatus = "FINISHED"
)

// Stage is one step of a contest. Settings always matches Kind.
type Stage struct {
	ID              string
	ContestID       string
	Name            string
	Kind            StageKind
	Position        int
	DurationMinutes int
	Status          StageStatus
	StartedAt       *time.Time
	FinishedAt      *time.Time
	Settings        StageSettings
}

// StageSettings is the kind specific configuration of a stage.
type StageSettings interface {
	Kind() StageKind
	StageWeight() float64
}

type RevealMode string

const (
	RevealImmediate RevealMode = "IMMEDIATE"
	RevealOnFinish  RevealMode = "ON_FINISH"
)

// QuizSettings drives a stage played in a quiz room. RoomKey is set once the stage runs.
type QuizSettings struct {
	StageID         string
	FormID          string
	RoomKey         RoomKey
	MaxParticipants int
	TimePerQuestion int
	Weight          float64
}

func (QuizSettings) Kind() StageKind        { return QuizStage }
func (s QuizSettings) StageWeight() float64 { return s.Weight }

type SurveySettings struct {
	StageID         string
	FormID          string
	RoomKey         RoomKey
	MaxParticipants int
	TimePerQuestion int
}

func (SurveySettings) Kind() StageKind      { return SurveyStage }
func (SurveySettings) StageWeight() float64 { return 0 }

type PublicVoteSettings struct {
	StageID  string
	Weight   float64
	MaxScore int64
}

func (PublicVoteSettings) Kind() StageKind        { return PublicVoteStage }
func (s PublicVoteSettings) StageWeight() float64 { return s.Weight }

type JuryVoteSettings struct {
	StageID        string
	Weight         float64
	MaxScore       int64
	RevealMode     RevealMode
	ShowJudgeNames bool
}

func (JuryVoteSettings) Kind() StageKind        { return JuryVoteStage }
func (s JuryVoteSettings) StageWeight() float64 { return s.Weight }

type GenericSettings struct {
	StageID     string
	Description string
}

func (GenericSettings) Kind() StageKind      { return GenericStage }
func (GenericSettings) StageWeight() float64 { return 0 }
