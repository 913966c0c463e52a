package archery

import (
	"fmt"
	"strconv"
)

// ParseScore decodes a single arrow's result symbol into its numeric value.
// "X" scores 10, "M" scores 0, "1" through "10" score their integer value.
// Anything else fails with ErrMalformedScore.
func ParseScore(symbol string) (int, error) {
	switch symbol {
	case "X":
		return 10, nil
	case "M":
		return 0, nil
	}
	v, err := strconv.Atoi(symbol)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedScore, symbol)
	}
	// Reject "07"-style symbols; the scorecard only ever produces canonical
	// decimal forms.
	if strconv.Itoa(v) != symbol || v < 1 || v > 10 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedScore, symbol)
	}
	return v, nil
}

// IsX reports whether the symbol is an inner-ten hit. An X counts toward
// both the X tally and the ten tally.
func IsX(symbol string) bool {
	return symbol == "X"
}
