package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/scout/internal/apperr"
)

// Bounds for the number of businesses a user may request.
const (
	MinLimit = 1
	MaxLimit = 50
)

var (
	ErrEmptyCity       = fmt.Errorf("%w: city name is empty", apperr.ErrInvalidInput)
	ErrNotANumber      = fmt.Errorf("%w: not a number", apperr.ErrInvalidInput)
	ErrLimitOutOfRange = fmt.Errorf("%w: limit out of range", apperr.ErrInvalidInput)
)

// ValidateCity trims the raw input and rejects an empty name.
func ValidateCity(raw string) (string, error) {
	city := strings.TrimSpace(raw)
	if city == "" {
		return "", ErrEmptyCity
	}

	return city, nil
}

// NormalizeCategory trims and lower-cases a business category.
func NormalizeCategory(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ParseLimit parses a result limit and checks it lies in [MinLimit, MaxLimit].
func ParseLimit(raw string) (int, error) {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrNotANumber
	}
	if limit < MinLimit || limit > MaxLimit {
		return 0, ErrLimitOutOfRange
	}

	return limit, nil
}

// retryMessage is the prompt shown after a rejected answer.
func retryMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCity):
		return "Please enter a city name."
	case errors.Is(err, ErrLimitOutOfRange):
		return fmt.Sprintf("Please enter a number between %d and %d.", MinLimit, MaxLimit)
	default:
		return "Please enter a number."
	}
}
