package ports

import (
	"context"
)

type VoteInput struct {
	PollID string
	Option string
}

type VoteService interface {
	// Vote returns the option's count after this vote was applied.
	Vote(ctx context.Context, input VoteInput) (int64, error)
}
