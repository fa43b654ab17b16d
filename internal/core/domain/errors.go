package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPoll    = errors.New("invalid poll")
	ErrPollNotFound   = errors.New("poll not found")
	ErrOptionNotFound = errors.New("option not found")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidPollID  = fmt.Errorf("%w: invalid poll id", ErrBadRequest)
	ErrInvalidModule  = fmt.Errorf("%w: invalid module", ErrBadRequest)
	ErrInvalidTopic   = fmt.Errorf("%w: invalid topic", ErrBadRequest)
	ErrInternal       = errors.New("internal server error")
)

// Kind maps an error to the name clients see in error payloads.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPoll):
		return "invalid_poll"
	case errors.Is(err, ErrPollNotFound):
		return "poll_not_found"
	case errors.Is(err, ErrOptionNotFound):
		return "option_not_found"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	default:
		return "internal"
	}
}
