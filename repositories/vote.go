package repositories

import (
	"log/slog"
	"room-engine/domain"
	"room-engine/errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
)

const votePrefix = "vote:"

type IVoteRepository interface {
	SaveVote(vote domain.VoteRecord) error
	ListVotes(scopeID string) ([]domain.VoteRecord, error)
	DeleteVotes(scopePrefix string) (int, error)
}

// VoteRepository keeps every accepted ledger record under "vote:{scope}:{voter}",
// so the ledger can rebuild a scope after a restart.
type VoteRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewVoteRepository(db *badger.DB, log *slog.Logger) VoteRepository {
	return VoteRepository{db: db, log: log}
}

// SaveVote stores a record unless the voter already has one in the scope.
func (v VoteRepository) SaveVote(vote domain.VoteRecord) error {
	data, err := encode(record{
		"scope":     vote.Scope,
		"candidate": vote.Candidate,
		"voter":     vote.Voter,
		"points":    vote.Points,
		"cast_at":   formatTime(vote.CastAt),
	})
	if err != nil {
		return err
	}
	key := []byte(voteScopePrefix(vote.Scope) + vote.Voter)
	err = v.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return errors.ErrDuplicateVote
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, data)
	})
	return persistenceErr(err)
}

// ListVotes returns the records of one scope in the order they were cast.
func (v VoteRepository) ListVotes(scopeID string) ([]domain.VoteRecord, error) {
	var votes []domain.VoteRecord
	err := v.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, []byte(voteScopePrefix(scopeID)), func(_ []byte, value []byte) error {
			rec, err := decode(value)
			if err != nil {
				return err
			}
			votes = append(votes, domain.VoteRecord{
				Scope:     rec.str("scope"),
				Candidate: rec.str("candidate"),
				Voter:     rec.str("voter"),
				Points:    rec.int("points"),
				CastAt:    rec.time("cast_at"),
			})
			return nil
		})
	})
	if err != nil {
		return nil, persistenceErr(err)
	}
	slices.SortStableFunc(votes, func(a, b domain.VoteRecord) int {
		return a.CastAt.Compare(b.CastAt)
	})
	return votes, nil
}

// DeleteVotes removes the records of every scope whose id starts with scopePrefix.
func (v VoteRepository) DeleteVotes(scopePrefix string) (int, error) {
	var keys [][]byte
	err := v.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(votePrefix + scopePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, persistenceErr(err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	wb := v.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, persistenceErr(err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, persistenceErr(err)
	}
	v.log.Debug("Stored votes deleted", "prefix", scopePrefix, "count", len(keys))
	return len(keys), nil
}

func voteScopePrefix(scopeID string) string {
	return votePrefix + scopeID + ":"
}
