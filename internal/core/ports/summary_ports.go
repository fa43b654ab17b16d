package ports

import (
	"context"

	"github.com/vncsmyrnk/vote/internal/core/domain"
)

type SummaryService interface {
	Results(ctx context.Context, pollID string) (*domain.Tally, error)
	SummarizeAll(ctx context.Context) ([]*domain.Tally, error)
}
