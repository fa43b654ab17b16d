package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS polls (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS poll_options (
	poll_id TEXT NOT NULL REFERENCES polls(id),
	position INTEGER NOT NULL,
	label TEXT NOT NULL,
	vote_count INTEGER NOT NULL DEFAULT 0 CHECK (vote_count >= 0),
	PRIMARY KEY (poll_id, label),
	UNIQUE (poll_id, position)
);

CREATE INDEX IF NOT EXISTS idx_polls_created_at ON polls(created_at);
`

// Open opens the database at path and creates the schema. The pool holds a
// single connection so ":memory:" databases are shared across calls.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}
