package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

type voteService struct {
	store ports.TallyStore
}

func NewVoteService(store ports.TallyStore) ports.VoteService {
	return &voteService{
		store: store,
	}
}

func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (int64, error) {
	pollID, err := parsePollID(input.PollID)
	if err != nil {
		return 0, err
	}

	option, err := normalizeLabel(input.Option)
	if err != nil {
		return 0, fmt.Errorf("%w: option %v", domain.ErrBadRequest, err)
	}

	return s.store.CastVote(ctx, pollID, option)
}
