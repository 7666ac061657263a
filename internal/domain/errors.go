package domain

import "github.com/pkg/errors"

var (
	// ErrInvalidInput is returned when a quote cannot be computed on (non-positive price or trade amount).
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration is returned when the process configuration is malformed. It is fatal at startup.
	ErrConfiguration = errors.New("configuration error")
	// ErrIncompleteQuotes means at least one required quote was missing from a scan.
	ErrIncompleteQuotes = errors.New("incomplete quotes")
)
