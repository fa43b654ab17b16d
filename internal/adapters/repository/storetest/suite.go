// Package storetest holds the behaviour every ports.TallyStore must share.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

// Factory returns an empty store. Cleanup is registered on t by the factory.
type Factory func(t *testing.T) ports.TallyStore

func Run(t *testing.T, newStore Factory) {
	t.Run("ZeroResultsAfterCreate", func(t *testing.T) { testZeroResults(t, newStore(t)) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, newStore(t)) })
	t.Run("UnknownOption", func(t *testing.T) { testUnknownOption(t, newStore(t)) })
	t.Run("UnknownPoll", func(t *testing.T) { testUnknownPoll(t, newStore(t)) })
	t.Run("InvalidPoll", func(t *testing.T) { testInvalidPoll(t, newStore(t)) })
	t.Run("GetAndList", func(t *testing.T) { testGetAndList(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("ConcurrentVotes", func(t *testing.T) { testConcurrentVotes(t, newStore(t)) })
	t.Run("IndependentPolls", func(t *testing.T) { testIndependentPolls(t, newStore(t)) })
}

// NewPoll builds a poll ready to be handed to CreatePoll.
func NewPoll(options ...string) *domain.Poll {
	return &domain.Poll{
		ID:        uuid.New(),
		Title:     "test poll",
		Options:   options,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func createPoll(t *testing.T, store ports.TallyStore, options ...string) *domain.Poll {
	t.Helper()
	poll := NewPoll(options...)
	require.NoError(t, store.CreatePoll(context.Background(), poll))
	return poll
}

func testZeroResults(t *testing.T, store ports.TallyStore) {
	poll := createPoll(t, store, "A", "B")

	tally, err := store.GetResults(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Equal(t, poll.ID, tally.PollID)
	assert.Equal(t, map[string]int64{"A": 0, "B": 0}, tally.Counts())
}

func testRoundTrip(t *testing.T, store ports.TallyStore) {
	ctx := context.Background()
	poll := createPoll(t, store, "X", "Y", "Z")

	count, err := store.CastVote(ctx, poll.ID, "X")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = store.CastVote(ctx, poll.ID, "X")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = store.CastVote(ctx, poll.ID, "Y")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	tally, err := store.GetResults(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"X": 2, "Y": 1, "Z": 0}, tally.Counts())

	options := make([]string, 0, len(tally.Results))
	for _, r := range tally.Results {
		options = append(options, r.Option)
	}
	assert.Equal(t, []string{"X", "Y", "Z"}, options)
}

func testUnknownOption(t *testing.T, store ports.TallyStore) {
	ctx := context.Background()
	poll := createPoll(t, store, "A", "B")
	_, err := store.CastVote(ctx, poll.ID, "A")
	require.NoError(t, err)

	_, err = store.CastVote(ctx, poll.ID, "C")
	assert.ErrorIs(t, err, domain.ErrOptionNotFound)

	tally, err := store.GetResults(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"A": 1, "B": 0}, tally.Counts())
}

func testUnknownPoll(t *testing.T, store ports.TallyStore) {
	ctx := context.Background()

	_, err := store.CastVote(ctx, uuid.New(), "A")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	_, err = store.GetResults(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	_, err = store.GetPoll(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	err = store.DeletePoll(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func testInvalidPoll(t *testing.T, store ports.TallyStore) {
	ctx := context.Background()

	dup := NewPoll("A", "B", "A")
	err := store.CreatePoll(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrInvalidPoll)

	_, err = store.GetResults(ctx, dup.ID)
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	empty := NewPoll()
	err = store.CreatePoll(ctx, empty)
	assert.ErrorIs(t, err, domain.ErrInvalidPoll)

	polls, err := store.ListPolls(ctx)
	require.NoError(t, err)
	assert.Empty(t, polls)
}

func testGetAndList(t *testing.T, store ports.TallyStore) {
	ctx := context.Background()
	first := createPoll(t, store, "red", "green")
	second := NewPoll("yes", "no")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, store.CreatePoll(ctx, second))

	got, err := store.GetPoll(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, first.Title, got.Title)
	assert.Equal(t, []string{"red", "green"}, got.Options)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

	polls, err := store.ListPolls(ctx)
	require.NoError(t, err)
	require.Len(t, polls, 2)
	assert.Equal(t, first.ID, polls[0].ID)
	assert.Equal(t, second.ID, polls[1].ID)
	assert.Equal(t, []string{"yes", "no"}, polls[1].Options)
}

func testDelete(t *testing.T, store ports.TallyStore) {
	ctx := context.Background()
	poll := createPoll(t, store, "A", "B")
	_, err := store.CastVote(ctx, poll.ID, "A")
	require.NoError(t, err)

	require.NoError(t, store.DeletePoll(ctx, poll.ID))

	_, err = store.CastVote(ctx, poll.ID, "A")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
	_, err = store.GetResults(ctx, poll.ID)
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
	assert.ErrorIs(t, store.DeletePoll(ctx, poll.ID), domain.ErrPollNotFound)
}

func testConcurrentVotes(t *testing.T, store ports.TallyStore) {
	ctx := context.Background()
	poll := createPoll(t, store, "A", "B")

	const voters = 50
	const votesEach = 10

	var wg sync.WaitGroup
	errs := make(chan error, voters*votesEach)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			option := "A"
			if i%5 == 0 {
				option = "B"
			}
			for j := 0; j < votesEach; j++ {
				if _, err := store.CastVote(ctx, poll.ID, option); err != nil {
					errs <- err
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	tally, err := store.GetResults(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"A": 400, "B": 100}, tally.Counts())
}

func testIndependentPolls(t *testing.T, store ports.TallyStore) {
	ctx := context.Background()
	a := createPoll(t, store, "shared")
	b := createPoll(t, store, "shared")

	_, err := store.CastVote(ctx, a.ID, "shared")
	require.NoError(t, err)

	tally, err := store.GetResults(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, tally.Counts()["shared"])
}
