// Package rating turns completed rounds into the two archer ratings: the
// cumulative masters rating with its 18-tier rank mapping, and the six-band
// archer-rating snapshot.
package rating

import (
	"math"
	"sort"

	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/handicap"
)

// UnrankedTier marks an archer whose rating is below the lowest tier
// threshold. Distinct from tier 18: a fresh archer is unranked, not bottom
// of the ladder.
const UnrankedTier = 0

// distanceBand holds the weight applied to rounds shot at or beyond MinM
// meters. Longer distances are harder and weigh heavier.
type distanceBand struct {
	MinM   int
	Factor float64
}

// Engine computes the cumulative masters rating. Every coefficient lives in
// a table on the engine so it can be recalibrated without touching callers.
type Engine struct {
	handicap       *handicap.Table
	distanceBands  []distanceBand
	typeFactors    map[archery.RoundType]float64
	tierThresholds []int
}

// NewEngine builds an engine with the club's current calibration.
func NewEngine(table *handicap.Table) *Engine {
	return &Engine{
		handicap: table,
		distanceBands: []distanceBand{
			{MinM: 0, Factor: 0.6},
			{MinM: 15, Factor: 0.8},
			{MinM: 18, Factor: 0.9},
			{MinM: 20, Factor: 1.0},
			{MinM: 30, Factor: 1.2},
			{MinM: 50, Factor: 1.5},
			{MinM: 60, Factor: 1.7},
			{MinM: 70, Factor: 2.0},
			{MinM: 90, Factor: 2.5},
		},
		typeFactors: map[archery.RoundType]float64{
			archery.RoundTypePersonal:    1.0,
			archery.RoundTypeClub:        1.1,
			archery.RoundTypeCompetition: 1.5,
		},
		// Minimum rating per tier, ascending from tier 18 to tier 1.
		// Strictly increasing; a rating below the first entry is unranked.
		tierThresholds: []int{
			300, 700, 1200, 1800, 2500, 3300,
			4200, 5200, 6300, 7500, 8800, 10200,
			11700, 13300, 15000, 16800, 18700, 20700,
		},
	}
}

// DistanceFactor returns the weight for a distance in meters.
func (e *Engine) DistanceFactor(distanceM int) float64 {
	factor := e.distanceBands[0].Factor
	for _, band := range e.distanceBands {
		if distanceM >= band.MinM {
			factor = band.Factor
		}
	}
	return factor
}

// TypeFactor returns the weight for a round type. Competition rounds weigh
// heavier than club or personal practice.
func (e *Engine) TypeFactor(roundType archery.RoundType) float64 {
	if factor, ok := e.typeFactors[roundType]; ok {
		return factor
	}
	return 1.0
}

// Contribution is the rating earned by a single completed round: the
// handicap-adjusted score weighted by distance and round type. Cancelled or
// unfinished rounds contribute nothing.
func (e *Engine) Contribution(round *archery.Round, gender archery.Gender) int {
	if !round.CountsForRanking() {
		return 0
	}
	adjusted := e.handicap.Adjust(gender, round.TotalScore)
	return int(math.Round(adjusted * e.DistanceFactor(round.DistanceM) * e.TypeFactor(round.Type)))
}

// ComputeRating recomputes the masters rating from a full round history.
// The rating is a cumulative sum, never an average: it rewards volume and
// consistency on top of peak performance. Callers must pass the complete
// history; incremental bookkeeping elsewhere is an optimization only.
func (e *Engine) ComputeRating(rounds []*archery.Round, gender archery.Gender) int {
	rating := 0
	for _, round := range rounds {
		rating += e.Contribution(round, gender)
	}
	return rating
}

// TierFor maps a rating to a rank tier, 1 being the best of the 18 tiers.
// Below the lowest threshold the archer is unranked and ok is false.
func (e *Engine) TierFor(rating int) (int, bool) {
	if rating < e.tierThresholds[0] {
		return UnrankedTier, false
	}
	// Index of the highest threshold not exceeding the rating.
	i := sort.SearchInts(e.tierThresholds, rating+1) - 1
	return len(e.tierThresholds) - i, true
}

// TierThresholds returns the minimum rating per tier keyed by tier number,
// for rendering tier metadata.
func (e *Engine) TierThresholds() map[int]int {
	out := make(map[int]int, len(e.tierThresholds))
	for i, min := range e.tierThresholds {
		out[len(e.tierThresholds)-i] = min
	}
	return out
}
