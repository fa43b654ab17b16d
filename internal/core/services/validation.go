package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/vote/internal/core/domain"
)

const maxLabelLength = 200

func parsePollID(id string) (uuid.UUID, error) {
	pollID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, domain.ErrInvalidPollID
	}
	return pollID, nil
}

// normalizeLabel trims surrounding whitespace and rejects labels that cannot
// be carried safely in responses.
func normalizeLabel(label string) (string, error) {
	if !utf8.ValidString(label) {
		return "", fmt.Errorf("label is not valid UTF-8")
	}

	label = strings.TrimSpace(label)
	if label == "" {
		return "", fmt.Errorf("label must not be empty")
	}
	if utf8.RuneCountInString(label) > maxLabelLength {
		return "", fmt.Errorf("label exceeds %d characters", maxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("label contains control characters")
		}
	}
	return label, nil
}
