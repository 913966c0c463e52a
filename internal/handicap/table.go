// Package handicap holds the gender adjustment table used whenever archers
// from different cohorts are compared on one leaderboard. The coefficients
// are data, not arithmetic, so they can be recalibrated without touching the
// ranking engine.
package handicap

import "github.com/sejersbol/bullseye/internal/archery"

// Table maps a gender category to a multiplicative factor applied to a raw
// round score. A factor of 1.0 is the identity adjustment.
type Table struct {
	factors map[archery.Gender]float64
}

// New builds a table from explicit coefficients. Factors must be positive;
// a constant positive factor can never reorder two archers of the same
// gender.
func New(factors map[archery.Gender]float64) *Table {
	copied := make(map[archery.Gender]float64, len(factors))
	for gender, factor := range factors {
		copied[gender] = factor
	}
	return &Table{factors: copied}
}

// Default returns the club's current calibration. Unspecified genders get
// the neutral factor.
func Default() *Table {
	return New(map[archery.Gender]float64{
		archery.GenderMale:   1.00,
		archery.GenderFemale: 1.07,
		archery.GenderOther:  1.00,
	})
}

// Factor returns the coefficient for a gender. Unknown or empty categories
// fall back to the neutral 1.0.
func (t *Table) Factor(gender archery.Gender) float64 {
	if factor, ok := t.factors[gender]; ok {
		return factor
	}
	return 1.0
}

// Adjust converts a raw score into the adjusted score used for cross-gender
// comparison.
func (t *Table) Adjust(gender archery.Gender, rawScore int) float64 {
	return float64(rawScore) * t.Factor(gender)
}

// Factors exposes the full coefficient table so callers can render it
// without re-deriving anything.
func (t *Table) Factors() map[archery.Gender]float64 {
	out := make(map[archery.Gender]float64, len(t.factors))
	for gender, factor := range t.factors {
		out[gender] = factor
	}
	return out
}
