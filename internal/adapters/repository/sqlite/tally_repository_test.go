package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/vote/internal/adapters/repository/storetest"
	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

func newTestStore(t *testing.T) ports.TallyStore {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "vote.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTallyRepository(db)
}

func TestTallyRepository(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestCountsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vote.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	store := NewTallyRepository(db)
	poll := storetest.NewPoll("A", "B")
	require.NoError(t, store.CreatePoll(ctx, poll))
	_, err = store.CastVote(ctx, poll.ID, "B")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	tally, err := NewTallyRepository(db).GetResults(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"A": 0, "B": 1}, tally.Counts())
}

func TestCreatePollRejectsReusedID(t *testing.T) {
	store := newTestStore(t)
	poll := storetest.NewPoll("A")
	require.NoError(t, store.CreatePoll(context.Background(), poll))

	err := store.CreatePoll(context.Background(), poll)
	assert.ErrorIs(t, err, domain.ErrInvalidPoll)
}
