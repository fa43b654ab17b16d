package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

type tallyRepository struct {
	db *sql.DB
}

// NewTallyRepository expects a database prepared by Open.
func NewTallyRepository(db *sql.DB) ports.TallyStore {
	return &tallyRepository{db: db}
}

func (r *tallyRepository) CreatePoll(ctx context.Context, poll *domain.Poll) error {
	if err := domain.ValidateOptions(poll.Options); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO polls (id, title, created_at) VALUES (?, ?, ?)`,
		poll.ID.String(), poll.Title, poll.CreatedAt.UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: poll %s already exists", domain.ErrInvalidPoll, poll.ID)
		}
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	for i, opt := range poll.Options {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO poll_options (poll_id, position, label) VALUES (?, ?, ?)`,
			poll.ID.String(), i, opt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *tallyRepository) CastVote(ctx context.Context, pollID uuid.UUID, option string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE poll_options
		SET vote_count = vote_count + 1
		WHERE poll_id = ? AND label = ?
		RETURNING vote_count
	`, pollID.String(), option).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to cast vote: %w", err)
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM polls WHERE id = ?`, pollID.String()).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrPollNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to check poll: %w", err)
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrOptionNotFound, option)
}

func (r *tallyRepository) GetResults(ctx context.Context, pollID uuid.UUID) (*domain.Tally, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.title, o.label, o.vote_count
		FROM polls p
		JOIN poll_options o ON o.poll_id = p.id
		WHERE p.id = ?
		ORDER BY o.position
	`, pollID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}
	defer rows.Close()

	tally := &domain.Tally{PollID: pollID}
	for rows.Next() {
		var oc domain.OptionCount
		if err := rows.Scan(&tally.Title, &oc.Option, &oc.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan results: %w", err)
		}
		tally.Results = append(tally.Results, oc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	if len(tally.Results) == 0 {
		return nil, domain.ErrPollNotFound
	}
	return tally, nil
}

func (r *tallyRepository) GetPoll(ctx context.Context, pollID uuid.UUID) (*domain.Poll, error) {
	var (
		poll      domain.Poll
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, created_at FROM polls WHERE id = ?`, pollID.String(),
	).Scan(&poll.ID, &poll.Title, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	poll.CreatedAt = time.Unix(0, createdAt).UTC()

	options, err := r.fetchOptions(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Options = options
	return &poll, nil
}

func (r *tallyRepository) ListPolls(ctx context.Context) ([]*domain.Poll, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, created_at FROM polls ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	polls := []*domain.Poll{}
	for rows.Next() {
		var (
			poll      domain.Poll
			createdAt int64
		)
		if err := rows.Scan(&poll.ID, &poll.Title, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		poll.CreatedAt = time.Unix(0, createdAt).UTC()
		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	// The pool holds a single connection; release it before the option queries.
	rows.Close()

	for _, poll := range polls {
		options, err := r.fetchOptions(ctx, poll.ID)
		if err != nil {
			return nil, err
		}
		poll.Options = options
	}
	return polls, nil
}

func (r *tallyRepository) DeletePoll(ctx context.Context, pollID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM poll_options WHERE poll_id = ?`, pollID.String()); err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM polls WHERE id = ?`, pollID.String())
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if affected == 0 {
		return domain.ErrPollNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *tallyRepository) fetchOptions(ctx context.Context, pollID uuid.UUID) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT label FROM poll_options WHERE poll_id = ? ORDER BY position`, pollID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll options: %w", err)
	}
	defer rows.Close()

	var options []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}
