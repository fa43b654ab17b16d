package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

type pollService struct {
	store ports.TallyStore
}

func NewPollService(store ports.TallyStore) ports.PollService {
	return &pollService{
		store: store,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	title := strings.TrimSpace(input.Title)
	if !utf8.ValidString(title) || utf8.RuneCountInString(title) > maxLabelLength {
		return nil, fmt.Errorf("%w: title must be valid UTF-8 of at most %d characters", domain.ErrInvalidPoll, maxLabelLength)
	}

	options := make([]string, 0, len(input.Options))
	for _, opt := range input.Options {
		label, err := normalizeLabel(opt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPoll, err)
		}
		options = append(options, label)
	}

	if err := domain.ValidateOptions(options); err != nil {
		return nil, err
	}

	poll := &domain.Poll{
		ID:        uuid.New(),
		Title:     title,
		Options:   options,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreatePoll(ctx, poll); err != nil {
		return nil, err
	}

	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	pollID, err := parsePollID(id)
	if err != nil {
		return nil, err
	}

	return s.store.GetPoll(ctx, pollID)
}

func (s *pollService) ListPolls(ctx context.Context) ([]*domain.Poll, error) {
	return s.store.ListPolls(ctx)
}

func (s *pollService) Delete(ctx context.Context, id string) error {
	pollID, err := parsePollID(id)
	if err != nil {
		return err
	}

	return s.store.DeletePoll(ctx, pollID)
}
