package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrOnlyCensoredFiles = fmt.Errorf("censored directory contains directories")
	ErrEmptyWords        = fmt.Errorf("no words have been found")

	// Ledger and room lifecycle
	ErrDuplicateVote     = fmt.Errorf("vote already registered for this voter")
	ErrRoomClosed        = fmt.Errorf("room is closed")
	ErrItemNotActive     = fmt.Errorf("item is not active")
	ErrInvalidTransition = fmt.Errorf("invalid room transition")
	ErrNoItems           = fmt.Errorf("room has no items")
	ErrRoomNotFound      = fmt.Errorf("room not found")
	ErrRoomFull          = fmt.Errorf("room is full")
	ErrNotHost           = fmt.Errorf("only the host can do this")
	ErrNotEntrant        = fmt.Errorf("user has not joined this room")
	ErrInvalidCandidate  = fmt.Errorf("unknown answer option")
	ErrNicknameRequired  = fmt.Errorf("nickname is required")
	ErrNicknameTaken     = fmt.Errorf("nickname already taken in this room")
	ErrNicknameRejected  = fmt.Errorf("nickname contains forbidden words")
	ErrAccessDenied      = fmt.Errorf("access denied")
	ErrFormNotFound      = fmt.Errorf("form not found")

	// Infrastructure
	ErrPersistenceUnavailable = fmt.Errorf("persistence unavailable")

	// Stages and contests
	ErrNoStrategyForStageKind = fmt.Errorf("no strategy registered for stage kind")
	ErrStageNotFound          = fmt.Errorf("stage not found")
	ErrStageKindMismatch      = fmt.Errorf("stage kind does not match strategy")
	ErrStageNotActive         = fmt.Errorf("stage is not the active stage")
	ErrContestNotFound        = fmt.Errorf("contest not found")
	ErrContestNotActive       = fmt.Errorf("contest is not active")
	ErrNotOrganizer           = fmt.Errorf("only the organizer can do this")
	ErrNotParticipant         = fmt.Errorf("user is not a contest participant")
	ErrNotJuror               = fmt.Errorf("only jury members can vote in this stage")
	ErrScoreOutOfRange        = fmt.Errorf("score out of range")
	ErrSubmissionNotFound     = fmt.Errorf("submission not found in this contest")
	ErrVotingNotSupported     = fmt.Errorf("voting not supported for this stage kind")

	ErrInvalidInviteToken  = fmt.Errorf("invalid invitation token")
	ErrInvalidPasscodeHash = fmt.Errorf("invalid passcode hash format")
)
