package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vncsmyrnk/vote/internal/adapters/repository/storetest"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

func setupPostgresContainer(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestTallyRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	db := setupPostgresContainer(t)
	require.NoError(t, Migrate(context.Background(), db), "migrations must be re-runnable")

	storetest.Run(t, func(t *testing.T) ports.TallyStore {
		_, err := db.Exec("TRUNCATE polls CASCADE")
		require.NoError(t, err)
		return NewTallyRepository(db)
	})
}

func TestMigrationFile(t *testing.T) {
	name, content, err := MigrationFile("create_polls.up")
	require.NoError(t, err)
	assert.Equal(t, "000001_create_polls.up.sql", name)
	assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS polls")

	_, _, err = MigrationFile("does_not_exist")
	assert.Error(t, err)
}

