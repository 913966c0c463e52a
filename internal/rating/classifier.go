package rating

import (
	"time"

	"github.com/sejersbol/bullseye/internal/archery"
)

// Band is one of the six archer-rating bands, SA being the strongest.
type Band string

const (
	BandSA    Band = "SA"
	BandAPlus Band = "A+"
	BandA     Band = "A"
	BandBPlus Band = "B+"
	BandB     Band = "B"
	BandC     Band = "C"
)

// bandThreshold is the minimum average arrow value for a band.
type bandThreshold struct {
	Band Band
	Min  float64
}

// Classifier produces the coarse skill snapshot from recent performance. It
// is independent of the masters rating: a long history earns no band, only
// current form does. Raw scores are used on purpose; the snapshot compares
// an archer against the target, not against other archers.
type Classifier struct {
	window     time.Duration
	thresholds []bandThreshold
}

// NewClassifier builds a classifier over a 90-day rolling window.
func NewClassifier() *Classifier {
	return &Classifier{
		window: 90 * 24 * time.Hour,
		// Ascending by minimum average arrow value (0..10 per arrow).
		thresholds: []bandThreshold{
			{Band: BandC, Min: 0.0},
			{Band: BandB, Min: 5.0},
			{Band: BandBPlus, Min: 6.5},
			{Band: BandA, Min: 7.5},
			{Band: BandAPlus, Min: 8.5},
			{Band: BandSA, Min: 9.0},
		},
	}
}

// Classify returns the band for an archer's best qualifying round inside the
// window. ok is false when no completed round qualifies; an archer with no
// recent data is unclassified, never defaulted to C.
func (c *Classifier) Classify(rounds []*archery.Round, now time.Time) (Band, bool) {
	cutoff := now.Add(-c.window).Unix()
	best := -1.0
	for _, round := range rounds {
		if !round.CountsForRanking() || round.ShotAt < cutoff {
			continue
		}
		arrows := round.TotalArrows()
		if arrows == 0 {
			continue
		}
		avg := float64(round.TotalScore) / float64(arrows)
		if avg > best {
			best = avg
		}
	}
	if best < 0 {
		return "", false
	}

	band := c.thresholds[0].Band
	for _, threshold := range c.thresholds {
		if best >= threshold.Min {
			band = threshold.Band
		}
	}
	return band, true
}

// Bands returns the minimum average arrow value per band, for rendering.
func (c *Classifier) Bands() map[Band]float64 {
	out := make(map[Band]float64, len(c.thresholds))
	for _, threshold := range c.thresholds {
		out[threshold.Band] = threshold.Min
	}
	return out
}
