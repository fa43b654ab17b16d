// Package repository picks the tally store a binary runs against.
package repository

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/vote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/vote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/vote/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/vote/internal/config"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

// Open returns the store selected by cfg.Store and a function releasing it.
// PostgreSQL databases are migrated before use.
func Open(ctx context.Context, cfg config.Config) (ports.TallyStore, func() error, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.NewTallyStore(), func() error { return nil }, nil

	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.ConnString())
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewTallyRepository(db), db.Close, nil

	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewTallyRepository(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
