package game

import (
	"errors"

	"github.com/AdamBeresnev/playcall/internal/outcome"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidOutcome   = outcome.ErrUnknown
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidInput     = errors.New("invalid input")
	ErrGameBreakerSpent = errors.New("game breaker already used this drive")
)
