// Package ledger keeps the vote and answer tallies shared by concurrent submitters.
//
// A scope is one votable window (a quiz item, a voting stage, a jury ballot).
// Each voter owns at most one record per scope. Writers of different voters only
// contend on the counter of the candidate they touch; the scope lock is taken
// shared by writers and exclusively by Seal and by snapshots, so a sealed scope
// never accepts a late vote and a snapshot never sees half of a vote.
//
// With a Store every accepted record is written through before it is counted,
// and Open replays the stored records of a scope, so tallies and the one record
// per voter rule survive a restart.
package ledger

import (
	"cmp"
	"log/slog"
	"room-engine/domain"
	"room-engine/errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Store persists accepted records. repositories.VoteRepository implements it.
type Store interface {
	SaveVote(vote domain.VoteRecord) error
	ListVotes(scopeID string) ([]domain.VoteRecord, error)
	DeleteVotes(scopePrefix string) (int, error)
}

type Ledger struct {
	log     *slog.Logger
	store   Store
	mu      sync.RWMutex
	scopes  map[string]*scope
	// dropped keeps the seal reason of forgotten scopes so a late vote is still refused.
	dropped map[string]error
	seq     atomic.Uint64
}

type scope struct {
	mu         sync.RWMutex
	sealed     error
	fixed      bool
	candidates sync.Map // candidate -> *counter
	voters     sync.Map // voter -> candidate
	voterCount atomic.Int64
}

type counter struct {
	mu    sync.Mutex
	seq   uint64
	count int64
	score int64
	votes map[string]int64
}

// New builds a ledger. A nil store keeps everything in memory.
func New(log *slog.Logger, store Store) *Ledger {
	return &Ledger{log: log, store: store, scopes: make(map[string]*scope), dropped: make(map[string]error)}
}

// Open creates a scope and replays the records stored for it. When candidates
// are given the scope only accepts those, ordered as given for ties; otherwise
// candidates appear on their first vote. Opening an existing or dropped scope
// is a no-op.
func (l *Ledger) Open(scopeID string, candidates ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.scopes[scopeID]; ok {
		return nil
	}
	if _, ok := l.dropped[scopeID]; ok {
		return nil
	}
	s := &scope{fixed: len(candidates) > 0}
	for _, c := range candidates {
		s.candidates.LoadOrStore(c, l.newCounter())
	}
	if err := l.replay(scopeID, s); err != nil {
		return err
	}
	l.scopes[scopeID] = s
	return nil
}

func (l *Ledger) replay(scopeID string, s *scope) error {
	if l.store == nil {
		return nil
	}
	votes, err := l.store.ListVotes(scopeID)
	if err != nil {
		return err
	}
	for _, v := range votes {
		c, err := l.counterFor(s, v.Candidate)
		if err != nil {
			l.log.Warn("Stored vote for an unknown candidate ignored", "scope", scopeID, "candidate", v.Candidate)
			continue
		}
		if _, loaded := s.voters.LoadOrStore(v.Voter, v.Candidate); loaded {
			continue
		}
		s.voterCount.Add(1)
		c.count++
		c.score += v.Points
		c.votes[v.Voter] = v.Points
	}
	if len(votes) > 0 {
		l.log.Info("Ledger scope restored", "scope", scopeID, "votes", len(votes))
	}
	return nil
}

// RegisterVote records one vote and returns the candidate's new score.
// It fails with ErrDuplicateVote when the voter already has a record in the scope,
// with the seal reason once the scope is sealed and with ErrItemNotActive when the
// scope was never opened. A record the store refuses is not counted.
func (l *Ledger) RegisterVote(scopeID, candidate, voter string, points int64) (int64, error) {
	s, err := l.get(scopeID)
	if err != nil {
		return 0, l.droppedReason(scopeID, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sealed != nil {
		return 0, s.sealed
	}

	c, err := l.counterFor(s, candidate)
	if err != nil {
		return 0, err
	}
	if _, loaded := s.voters.LoadOrStore(voter, candidate); loaded {
		return 0, errors.ErrDuplicateVote
	}
	if l.store != nil {
		err := l.store.SaveVote(domain.VoteRecord{
			Scope:     scopeID,
			Candidate: candidate,
			Voter:     voter,
			Points:    points,
			CastAt:    time.Now(),
		})
		if err != nil {
			s.voters.Delete(voter)
			return 0, err
		}
	}
	s.voterCount.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	c.score += points
	c.votes[voter] = points
	return c.score, nil
}

func (l *Ledger) HasVoted(scopeID, voter string) bool {
	s, err := l.get(scopeID)
	if err != nil {
		return false
	}
	_, ok := s.voters.Load(voter)
	return ok
}

// Voters counts the accepted records of a scope.
func (l *Ledger) Voters(scopeID string) int {
	s, err := l.get(scopeID)
	if err != nil {
		return 0
	}
	return int(s.voterCount.Load())
}

// Tallies snapshots a scope ordered by score desc, then by arrival of the candidate.
func (l *Ledger) Tallies(scopeID string) ([]domain.Tally, error) {
	s, err := l.get(scopeID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type row struct {
		tally domain.Tally
		seq   uint64
	}
	var rows []row
	s.candidates.Range(func(k, v any) bool {
		c := v.(*counter)
		c.mu.Lock()
		rows = append(rows, row{
			tally: domain.Tally{Candidate: k.(string), Count: c.count, Score: c.score},
			seq:   c.seq,
		})
		c.mu.Unlock()
		return true
	})
	slices.SortFunc(rows, func(a, b row) int {
		if a.tally.Score != b.tally.Score {
			return cmp.Compare(b.tally.Score, a.tally.Score)
		}
		return cmp.Compare(a.seq, b.seq)
	})

	tallies := make([]domain.Tally, len(rows))
	for i, r := range rows {
		tallies[i] = r.tally
	}
	return tallies, nil
}

// VoteDetail returns voter -> points for one candidate.
func (l *Ledger) VoteDetail(scopeID, candidate string) (map[string]int64, error) {
	s, err := l.get(scopeID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	detail := make(map[string]int64)
	v, ok := s.candidates.Load(candidate)
	if !ok {
		return detail, nil
	}
	c := v.(*counter)
	c.mu.Lock()
	defer c.mu.Unlock()
	for voter, points := range c.votes {
		detail[voter] = points
	}
	return detail, nil
}

// Seal stops a scope from accepting votes. Later votes fail with reason.
// Votes that completed before Seal returns are kept. It reports whether
// this call sealed the scope.
func (l *Ledger) Seal(scopeID string, reason error) bool {
	s, err := l.get(scopeID)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed != nil {
		return false
	}
	s.sealed = reason
	l.log.Debug("Ledger scope sealed", "scope", scopeID, "reason", reason)
	return true
}

// SealPrefix seals every open scope starting with prefix.
func (l *Ledger) SealPrefix(prefix string, reason error) int {
	sealed := 0
	for _, id := range l.idsWithPrefix(prefix) {
		if l.Seal(id, reason) {
			sealed++
		}
	}
	return sealed
}

// DropPrefix forgets every scope starting with prefix and deletes their stored
// records. A dropped scope stays sealed: later votes fail with its seal reason,
// or ErrItemNotActive when it was never sealed.
func (l *Ledger) DropPrefix(prefix string) int {
	dropped := l.forget(prefix)
	if l.store != nil {
		if _, err := l.store.DeleteVotes(prefix); err != nil {
			l.log.Error("Stored votes not deleted", "prefix", prefix, "err", err)
		}
	}
	if dropped > 0 {
		l.log.Debug("Ledger scopes dropped", "prefix", prefix, "count", dropped)
	}
	return dropped
}

func (l *Ledger) forget(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	dropped := 0
	for id, s := range l.scopes {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		// Waits for in-flight writers, so no record lands after the delete.
		s.mu.Lock()
		if s.sealed == nil {
			s.sealed = errors.ErrItemNotActive
		}
		l.dropped[id] = s.sealed
		s.mu.Unlock()
		delete(l.scopes, id)
		dropped++
	}
	return dropped
}

func (l *Ledger) droppedReason(scopeID string, err error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if reason, ok := l.dropped[scopeID]; ok {
		return reason
	}
	return err
}

func (l *Ledger) get(scopeID string) (*scope, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.scopes[scopeID]
	if !ok {
		return nil, errors.ErrItemNotActive
	}
	return s, nil
}

func (l *Ledger) idsWithPrefix(prefix string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var ids []string
	for id := range l.scopes {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (l *Ledger) counterFor(s *scope, candidate string) (*counter, error) {
	if v, ok := s.candidates.Load(candidate); ok {
		return v.(*counter), nil
	}
	if s.fixed {
		return nil, errors.ErrInvalidCandidate
	}
	v, _ := s.candidates.LoadOrStore(candidate, l.newCounter())
	return v.(*counter), nil
}

func (l *Ledger) newCounter() *counter {
	return &counter{seq: l.seq.Add(1), votes: make(map[string]int64)}
}
