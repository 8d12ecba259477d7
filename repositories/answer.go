package repositories

import (
	"fmt"
	"log/slog"
	"room-engine/domain"

	"github.com/dgraph-io/badger/v4"
)

const answerPrefix = "answer:"

type IAnswerRepository interface {
	SaveAnswer(answer domain.Answer) error
	ListAnswers(key domain.RoomKey, userID string) ([]domain.Answer, error)
}

// AnswerRepository journals accepted answers so a player can review them.
// The ledger stays the source of truth for tallies.
type AnswerRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewAnswerRepository(db *badger.DB, log *slog.Logger) AnswerRepository {
	return AnswerRepository{db: db, log: log}
}

// SaveAnswer stores the answer under "answer:{room}:{user}:{item_index_padded}",
// so a user's answers list in item order.
func (a AnswerRepository) SaveAnswer(answer domain.Answer) error {
	data, err := encode(record{
		"room_key":     string(answer.RoomKey),
		"user_id":      answer.UserID,
		"item_index":   answer.ItemIndex,
		"option_id":    answer.OptionID,
		"points":       answer.Points,
		"correct":      answer.Correct,
		"submitted_at": formatTime(answer.SubmittedAt),
	})
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s%06d", answerUserPrefix(answer.RoomKey, answer.UserID), answer.ItemIndex)
	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	return persistenceErr(err)
}

func (a AnswerRepository) ListAnswers(key domain.RoomKey, userID string) ([]domain.Answer, error) {
	var answers []domain.Answer
	err := a.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, []byte(answerUserPrefix(key, userID)), func(_ []byte, value []byte) error {
			rec, err := decode(value)
			if err != nil {
				return err
			}
			answers = append(answers, domain.Answer{
				RoomKey:     domain.RoomKey(rec.str("room_key")),
				UserID:      rec.str("user_id"),
				ItemIndex:   int(rec.int("item_index")),
				OptionID:    rec.str("option_id"),
				Points:      rec.int("points"),
				Correct:     rec.bool("correct"),
				SubmittedAt: rec.time("submitted_at"),
			})
			return nil
		})
	})
	if err != nil {
		return nil, persistenceErr(err)
	}
	return answers, nil
}

func answerUserPrefix(key domain.RoomKey, userID string) string {
	return answerPrefix + string(key) + ":" + userID + ":"
}
