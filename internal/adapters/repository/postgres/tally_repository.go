package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

const uniqueViolation = "23505"

type tallyRepository struct {
	db *sql.DB
}

func NewTallyRepository(db *sql.DB) ports.TallyStore {
	return &tallyRepository{
		db: db,
	}
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

	queryPoll := `
		INSERT INTO polls (id, title, created_at)
		VALUES ($1, $2, $3)
	`
	_, err = tx.ExecContext(ctx, queryPoll, poll.ID, poll.Title, poll.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: poll %s already exists", domain.ErrInvalidPoll, poll.ID)
		}
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	queryOption := `
		INSERT INTO poll_options (poll_id, position, label)
		VALUES ($1, $2, $3)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for i, opt := range poll.Options {
		_, err = stmt.ExecContext(ctx, poll.ID, i, opt)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CastVote relies on the row lock taken by UPDATE, so concurrent increments
// of the same option queue behind each other instead of overwriting.
func (r *tallyRepository) CastVote(ctx context.Context, pollID uuid.UUID, option string) (int64, error) {
	query := `
		UPDATE poll_options
		SET vote_count = vote_count + 1
		WHERE poll_id = $1 AND label = $2
		RETURNING vote_count
	`

	var count int64
	err := r.db.QueryRowContext(ctx, query, pollID, option).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to cast vote: %w", err)
	}

	exists, err := r.pollExists(ctx, pollID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, domain.ErrPollNotFound
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrOptionNotFound, option)
}

// GetResults reads the poll and its counts in one statement so the snapshot
// never mixes counts from different moments.
func (r *tallyRepository) GetResults(ctx context.Context, pollID uuid.UUID) (*domain.Tally, error) {
	query := `
		SELECT p.title, o.label, o.vote_count
		FROM polls p
		JOIN poll_options o ON o.poll_id = p.id
		WHERE p.id = $1
		ORDER BY o.position
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
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
	queryPoll := `
		SELECT id, title, created_at
		FROM polls
		WHERE id = $1
	`

	var poll domain.Poll
	err := r.db.QueryRowContext(ctx, queryPoll, pollID).Scan(&poll.ID, &poll.Title, &poll.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	options, err := r.fetchOptions(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Options = options

	return &poll, nil
}

func (r *tallyRepository) ListPolls(ctx context.Context) ([]*domain.Poll, error) {
	query := `
		SELECT id, title, created_at
		FROM polls
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	polls := []*domain.Poll{}
	for rows.Next() {
		var poll domain.Poll
		if err := rows.Scan(&poll.ID, &poll.Title, &poll.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, pollID)
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
	return nil
}

func (r *tallyRepository) pollExists(ctx context.Context, pollID uuid.UUID) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM polls WHERE id = $1`, pollID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check poll: %w", err)
	}
	return true, nil
}

func (r *tallyRepository) fetchOptions(ctx context.Context, pollID uuid.UUID) ([]string, error) {
	queryOptions := `
		SELECT label
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, queryOptions, pollID)
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
