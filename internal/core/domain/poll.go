package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Poll struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title,omitempty"`
	Options   []string  `json:"options"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateOptions reports ErrInvalidPoll when options is empty or holds an
// empty or repeated label. Stores call it before accepting a poll.
func ValidateOptions(options []string) error {
	if len(options) == 0 {
		return fmt.Errorf("%w: at least one option is required", ErrInvalidPoll)
	}

	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		if opt == "" {
			return fmt.Errorf("%w: option labels must not be empty", ErrInvalidPoll)
		}
		if _, ok := seen[opt]; ok {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidPoll, opt)
		}
		seen[opt] = struct{}{}
	}
	return nil
}

// Clone returns a copy that shares no memory with p.
func (p *Poll) Clone() *Poll {
	c := *p
	c.Options = append([]string(nil), p.Options...)
	return &c
}
