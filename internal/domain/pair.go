// Package domain defines core data structures shared by the quote sources, the calculator and the scanner.
package domain

import (
	"fmt"
	"strings"
)

// Pair cryptocurrency trading pair.
type Pair struct {
	// From base currency symbol.
	From string
	// To quote currency symbol.
	To string
}

// ParsePair parses a BASE_QUOTE string, for example SOL_USDC.
func ParsePair(s string) (Pair, error) {
	elements := strings.Split(strings.TrimSpace(s), "_")
	if len(elements) != 2 || elements[0] == "" || elements[1] == "" {
		return Pair{}, fmt.Errorf("invalid pair %q, expected BASE_QUOTE", s)
	}

	return Pair{From: strings.ToUpper(elements[0]), To: strings.ToUpper(elements[1])}, nil
}

// String returns the string representation.
func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Symbol returns the concatenated symbol representation.
func (p Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.From, p.To)
}
