package domain

// OpenRoomRequest opens a room from an authored form. A zero MaxParticipants
// falls back to the configured default. A passcode only matters for private rooms.
type OpenRoomRequest struct {
	Kind            RoomKind `validate:"required,oneof=QUIZ SURVEY"`
	FormID          string   `validate:"required"`
	HostID          string   `validate:"required"`
	MaxParticipants int      `validate:"omitempty,min=1,max=1000"`
	TimePerItem     int      `validate:"required,min=5,max=300"`
	Private         bool
	Passcode        string `validate:"omitempty,min=4,max=64"`
}

type JoinRequest struct {
	RoomKey     RoomKey `validate:"required"`
	UserID      string  `validate:"required"`
	Nickname    string  `validate:"max=32"`
	InviteToken string
	Passcode    string
}
