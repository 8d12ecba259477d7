package domain

// SubmitAnswerCommand carries an already authenticated answer submission.
type SubmitAnswerCommand struct {
	RoomKey   RoomKey `validate:"required"`
	UserID    string  `validate:"required"`
	ItemIndex int     `validate:"gte=0"`
	OptionID  string  `validate:"required"`
}

// AnswerResult is returned to the submitter once the ledger accepted the answer.
type AnswerResult struct {
	ItemIndex int
	Points    int64
	Correct   bool
	ItemTotal int64
}
