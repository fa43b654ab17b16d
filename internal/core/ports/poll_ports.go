package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/vote/internal/core/domain"
)

// TallyStore owns every poll and its counts. Implementations must make
// CastVote linearizable per poll and GetResults a consistent snapshot.
type TallyStore interface {
	CreatePoll(ctx context.Context, poll *domain.Poll) error
	CastVote(ctx context.Context, pollID uuid.UUID, option string) (int64, error)
	GetResults(ctx context.Context, pollID uuid.UUID) (*domain.Tally, error)
	GetPoll(ctx context.Context, pollID uuid.UUID) (*domain.Poll, error)
	ListPolls(ctx context.Context) ([]*domain.Poll, error)
	DeletePoll(ctx context.Context, pollID uuid.UUID) error
}

type CreatePollInput struct {
	Title   string
	Options []string
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	ListPolls(ctx context.Context) ([]*domain.Poll, error)
	Delete(ctx context.Context, id string) error
}
