package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lthms/reel/internal/feedback"
)

var (
	// ErrInvalidInput reports an unrecognized answer at the rating prompt.
	ErrInvalidInput = errors.New("invalid input")
	// ErrQuit reports that the user asked to stop.
	ErrQuit = errors.New("quit")
)

// ParseInput interprets one line typed at the rating prompt. It returns the
// rating, ErrQuit, or an error wrapping ErrInvalidInput. With legacy set the
// one-letter answers n, m, y and q are accepted as well.
func ParseInput(line string, legacy bool) (feedback.Rating, error) {
	s := strings.ToLower(strings.TrimSpace(line))
	if s == "quit" || (legacy && s == "q") {
		return "", ErrQuit
	}
	if legacy {
		switch s {
		case "n":
			return feedback.Never, nil
		case "m":
			return feedback.Maybe, nil
		case "y":
			return feedback.Definitely, nil
		}
	}
	r, err := feedback.ParseRating(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidInput, strings.TrimSpace(line))
	}
	return r, nil
}
