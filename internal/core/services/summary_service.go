package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

type summaryService struct {
	store ports.TallyStore
}

func NewSummaryService(store ports.TallyStore) ports.SummaryService {
	return &summaryService{
		store: store,
	}
}

func (s *summaryService) Results(ctx context.Context, id string) (*domain.Tally, error) {
	pollID, err := parsePollID(id)
	if err != nil {
		return nil, err
	}

	tally, err := s.store.GetResults(ctx, pollID)
	if err != nil {
		return nil, err
	}
	tally.Summarize()

	return tally, nil
}

// SummarizeAll returns the tally of every poll, in the store's listing order.
// Polls deleted while the summary runs are left out.
func (s *summaryService) SummarizeAll(ctx context.Context) ([]*domain.Tally, error) {
	polls, err := s.store.ListPolls(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all polls: %w", err)
	}

	tallies := make([]*domain.Tally, len(polls))
	var wg sync.WaitGroup
	errChan := make(chan error, len(polls))

	for i, poll := range polls {
		wg.Add(1)
		go func(i int, pID uuid.UUID) {
			defer wg.Done()
			tally, err := s.store.GetResults(ctx, pID)
			if err != nil {
				if !errors.Is(err, domain.ErrPollNotFound) {
					errChan <- fmt.Errorf("failed to summarize poll %s: %w", pID, err)
				}
				return
			}
			tally.Summarize()
			tallies[i] = tally
		}(i, poll.ID)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	result := make([]*domain.Tally, 0, len(tallies))
	for _, t := range tallies {
		if t != nil {
			result = append(result, t)
		}
	}
	return result, nil
}
