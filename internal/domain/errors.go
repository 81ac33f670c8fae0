package domain

import "errors"

// Error kinds returned by a stress run. All of them are terminal for the run:
// no partial result accompanies an error.
var (
	// ErrEmptyPortfolio is returned when a portfolio has no positions or zero aggregate value
	ErrEmptyPortfolio = errors.New("empty portfolio")
	// ErrInvalidScenario is returned for missing, unknown or non-numeric factor changes
	ErrInvalidScenario = errors.New("invalid scenario")
	// ErrInvalidPosition is returned for malformed positions (negative values, duplicate symbols, unknown asset class)
	ErrInvalidPosition = errors.New("invalid position")
)
