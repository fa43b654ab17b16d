package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/vote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

type fixture struct {
	polls   ports.PollService
	votes   ports.VoteService
	summary ports.SummaryService
}

func newFixture() fixture {
	store := memory.NewTallyStore()
	return fixture{
		polls:   NewPollService(store),
		votes:   NewVoteService(store),
		summary: NewSummaryService(store),
	}
}

func (f fixture) createPoll(t *testing.T, options ...string) *domain.Poll {
	t.Helper()
	poll, err := f.polls.Create(context.Background(), ports.CreatePollInput{Options: options})
	require.NoError(t, err)
	return poll
}

func TestVote(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	poll := f.createPoll(t, "X", "Y")

	count, err := f.votes.Vote(ctx, ports.VoteInput{PollID: poll.ID.String(), Option: "X"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = f.votes.Vote(ctx, ports.VoteInput{PollID: poll.ID.String(), Option: " X "})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestVoteTrimsSurroundingWhitespace(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	poll := f.createPoll(t, "New York", "Boston")
	id := poll.ID.String()

	count, err := f.votes.Vote(ctx, ports.VoteInput{PollID: id, Option: "  New York\t"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = f.votes.Vote(ctx, ports.VoteInput{PollID: id, Option: "NewYork"})
	assert.ErrorIs(t, err, domain.ErrOptionNotFound)

	_, err = f.votes.Vote(ctx, ports.VoteInput{PollID: id, Option: " \t "})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	tally, err := f.summary.Results(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"New York": 1, "Boston": 0}, tally.Counts())
}

func TestVoteErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	poll := f.createPoll(t, "A", "B")

	tests := []struct {
		name  string
		input ports.VoteInput
		want  error
	}{
		{"malformed poll id", ports.VoteInput{PollID: "abc", Option: "A"}, domain.ErrBadRequest},
		{"empty option", ports.VoteInput{PollID: poll.ID.String(), Option: ""}, domain.ErrBadRequest},
		{"invalid utf-8 option", ports.VoteInput{PollID: poll.ID.String(), Option: "\xfe"}, domain.ErrBadRequest},
		{"unknown poll", ports.VoteInput{PollID: uuid.NewString(), Option: "A"}, domain.ErrPollNotFound},
		{"unknown option", ports.VoteInput{PollID: poll.ID.String(), Option: "C"}, domain.ErrOptionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.votes.Vote(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	tally, err := f.summary.Results(ctx, poll.ID.String())
	require.NoError(t, err)
	assert.Zero(t, tally.Total)
}

func TestConcurrentVotesAreAllCounted(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	poll := f.createPoll(t, "A")

	const voters = 200
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.votes.Vote(ctx, ports.VoteInput{PollID: poll.ID.String(), Option: "A"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tally, err := f.summary.Results(ctx, poll.ID.String())
	require.NoError(t, err)
	assert.EqualValues(t, voters, tally.Counts()["A"])
	assert.EqualValues(t, voters, tally.Total)
}
