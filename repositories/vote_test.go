package repositories

import (
	"github.com/stretchr/testify/require"
	"log/slog"
	"room-engine/domain"
	"room-engine/errors"
	"testing"
	"time"
)

func TestVoteRepository_OneRecordPerVoter(t *testing.T) {
	req := require.New(t)
	repo := NewVoteRepository(openDB(t), slog.Default())
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// Given two voters in the same scope, saved out of key order
	req.NoError(repo.SaveVote(domain.VoteRecord{Scope: "stage:s1", Candidate: "sub2", Voter: "zoe", Points: 1, CastAt: now}))
	req.NoError(repo.SaveVote(domain.VoteRecord{Scope: "stage:s1", Candidate: "sub1", Voter: "adam", Points: 1, CastAt: now.Add(time.Second)}))

	// When the first voter votes again
	err := repo.SaveVote(domain.VoteRecord{Scope: "stage:s1", Candidate: "sub1", Voter: "zoe", Points: 1, CastAt: now.Add(2 * time.Second)})

	// Then the stored record wins and the scope lists in cast order
	req.ErrorIs(err, errors.ErrDuplicateVote)
	votes, err := repo.ListVotes("stage:s1")
	req.NoError(err)
	req.Len(votes, 2)
	req.Equal("zoe", votes[0].Voter)
	req.Equal("sub2", votes[0].Candidate)
	req.Equal("adam", votes[1].Voter)
}

func TestVoteRepository_DeleteByPrefixKeepsOtherScopes(t *testing.T) {
	req := require.New(t)
	repo := NewVoteRepository(openDB(t), slog.Default())
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	req.NoError(repo.SaveVote(domain.VoteRecord{Scope: "room:r1:item:1", Candidate: "A", Voter: "alice", Points: 10, CastAt: now}))
	req.NoError(repo.SaveVote(domain.VoteRecord{Scope: "room:r1:item:10", Candidate: "B", Voter: "alice", Points: 5, CastAt: now}))
	req.NoError(repo.SaveVote(domain.VoteRecord{Scope: "room:r2:item:1", Candidate: "A", Voter: "bob", Points: 10, CastAt: now}))

	// Item 1 does not list the records of item 10
	votes, err := repo.ListVotes("room:r1:item:1")
	req.NoError(err)
	req.Len(votes, 1)
	req.EqualValues(10, votes[0].Points)

	deleted, err := repo.DeleteVotes("room:r1:")
	req.NoError(err)
	req.Equal(2, deleted)

	votes, err = repo.ListVotes("room:r1:item:10")
	req.NoError(err)
	req.Empty(votes)
	votes, err = repo.ListVotes("room:r2:item:1")
	req.NoError(err)
	req.Len(votes, 1)
}
