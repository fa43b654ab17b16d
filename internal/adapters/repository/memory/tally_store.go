// Package memory keeps polls in process memory. It is the default store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

// pollEntry guards the counts of a single poll. The poll and its index are
// never modified after creation, so they are read without holding mu.
type pollEntry struct {
	poll  *domain.Poll
	index map[string]int

	mu      sync.RWMutex
	counts  []int64
	deleted bool
}

type tallyStore struct {
	mu    sync.RWMutex
	polls map[uuid.UUID]*pollEntry
}

func NewTallyStore() ports.TallyStore {
	return &tallyStore{
		polls: make(map[uuid.UUID]*pollEntry),
	}
}

func (s *tallyStore) CreatePoll(_ context.Context, poll *domain.Poll) error {
	if err := domain.ValidateOptions(poll.Options); err != nil {
		return err
	}

	entry := &pollEntry{
		poll:   poll.Clone(),
		index:  make(map[string]int, len(poll.Options)),
		counts: make([]int64, len(poll.Options)),
	}
	for i, opt := range poll.Options {
		entry.index[opt] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.polls[poll.ID]; exists {
		return fmt.Errorf("%w: poll %s already exists", domain.ErrInvalidPoll, poll.ID)
	}
	s.polls[poll.ID] = entry
	return nil
}

func (s *tallyStore) lookup(pollID uuid.UUID) (*pollEntry, error) {
	s.mu.RLock()
	entry, ok := s.polls[pollID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return entry, nil
}

func (s *tallyStore) CastVote(_ context.Context, pollID uuid.UUID, option string) (int64, error) {
	entry, err := s.lookup(pollID)
	if err != nil {
		return 0, err
	}

	i, ok := entry.index[option]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrOptionNotFound, option)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// The entry may have been removed between lookup and lock.
	if entry.deleted {
		return 0, domain.ErrPollNotFound
	}
	entry.counts[i]++
	return entry.counts[i], nil
}

func (s *tallyStore) GetResults(_ context.Context, pollID uuid.UUID) (*domain.Tally, error) {
	entry, err := s.lookup(pollID)
	if err != nil {
		return nil, err
	}

	entry.mu.RLock()
	if entry.deleted {
		entry.mu.RUnlock()
		return nil, domain.ErrPollNotFound
	}
	counts := append([]int64(nil), entry.counts...)
	entry.mu.RUnlock()

	tally := &domain.Tally{
		PollID:  entry.poll.ID,
		Title:   entry.poll.Title,
		Results: make([]domain.OptionCount, len(counts)),
	}
	for i, opt := range entry.poll.Options {
		tally.Results[i] = domain.OptionCount{Option: opt, Votes: counts[i]}
	}
	return tally, nil
}

func (s *tallyStore) GetPoll(_ context.Context, pollID uuid.UUID) (*domain.Poll, error) {
	entry, err := s.lookup(pollID)
	if err != nil {
		return nil, err
	}
	return entry.poll.Clone(), nil
}

func (s *tallyStore) ListPolls(_ context.Context) ([]*domain.Poll, error) {
	s.mu.RLock()
	polls := make([]*domain.Poll, 0, len(s.polls))
	for _, entry := range s.polls {
		polls = append(polls, entry.poll.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(polls, func(i, j int) bool {
		if polls[i].CreatedAt.Equal(polls[j].CreatedAt) {
			return polls[i].ID.String() < polls[j].ID.String()
		}
		return polls[i].CreatedAt.Before(polls[j].CreatedAt)
	})
	return polls, nil
}

func (s *tallyStore) DeletePoll(_ context.Context, pollID uuid.UUID) error {
	s.mu.Lock()
	entry, ok := s.polls[pollID]
	if !ok {
		s.mu.Unlock()
		return domain.ErrPollNotFound
	}
	delete(s.polls, pollID)
	s.mu.Unlock()

	entry.mu.Lock()
	entry.deleted = true
	entry.mu.Unlock()
	return nil
}
