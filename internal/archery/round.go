package archery

import (
	"fmt"
	"time"
)

// NewRound opens a round in progress. Ends are recorded afterwards and the
// round only carries totals once finalized.
func NewRound(id, archerID string, shotAt time.Time, distanceM, arrowsPerEnd, totalEnds int, roundType RoundType) *Round {
	return &Round{
		ID:               id,
		ArcherID:         archerID,
		ShotAt:           shotAt.Unix(),
		DistanceM:        distanceM,
		ArrowsPerEnd:     arrowsPerEnd,
		TotalEnds:        totalEnds,
		Type:             roundType,
		Status:           StatusInProgress,
		ProcessingStatus: ProcessingNew,
	}
}

// RecordEnd adds or replaces the end at endIndex from raw symbols. Positions
// may be nil or hold a nil entry per arrow without a recorded impact point.
// Only legal while the round is in progress.
func (r *Round) RecordEnd(endIndex int, symbols []string, positions []*Position) error {
	if r.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot record end on %s round", ErrRoundFinalized, r.Status)
	}
	if endIndex < 1 || endIndex > r.TotalEnds {
		return fmt.Errorf("end index %d out of range 1..%d", endIndex, r.TotalEnds)
	}
	if len(symbols) != r.ArrowsPerEnd {
		return fmt.Errorf("%w: end %d has %d arrows, want %d", ErrIncompleteRound, endIndex, len(symbols), r.ArrowsPerEnd)
	}
	if positions != nil && len(positions) != len(symbols) {
		return fmt.Errorf("positions length %d does not match arrows %d", len(positions), len(symbols))
	}

	end := End{EndIndex: endIndex, Arrows: make([]ArrowResult, 0, len(symbols))}
	for i, sym := range symbols {
		value, err := ParseScore(sym)
		if err != nil {
			return fmt.Errorf("end %d arrow %d: %w", endIndex, i+1, err)
		}
		arrow := ArrowResult{ArrowIndex: i + 1, Symbol: sym, Value: value}
		if positions != nil {
			arrow.Position = positions[i]
		}
		end.Arrows = append(end.Arrows, arrow)
		end.Total += value
	}

	for i := range r.Ends {
		if r.Ends[i].EndIndex == endIndex {
			r.Ends[i] = end
			return nil
		}
	}
	r.Ends = append(r.Ends, end)
	return nil
}

// Finalize transitions the round to completed and derives its totals. Every
// end must be present and hold exactly arrows-per-end results; otherwise the
// round stays in progress and ErrIncompleteRound is returned.
func (r *Round) Finalize(now time.Time) error {
	if r.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot finalize %s round", ErrRoundFinalized, r.Status)
	}
	if len(r.Ends) != r.TotalEnds {
		return fmt.Errorf("%w: have %d of %d ends", ErrIncompleteRound, len(r.Ends), r.TotalEnds)
	}

	seen := make(map[int]bool, len(r.Ends))
	totalScore, totalX, total10 := 0, 0, 0
	for _, end := range r.Ends {
		if seen[end.EndIndex] {
			return fmt.Errorf("%w: duplicate end %d", ErrIncompleteRound, end.EndIndex)
		}
		seen[end.EndIndex] = true
		if len(end.Arrows) != r.ArrowsPerEnd {
			return fmt.Errorf("%w: end %d has %d arrows, want %d", ErrIncompleteRound, end.EndIndex, len(end.Arrows), r.ArrowsPerEnd)
		}
		endTotal := 0
		for _, arrow := range end.Arrows {
			endTotal += arrow.Value
			if IsX(arrow.Symbol) {
				totalX++
			}
			if arrow.Value == 10 {
				total10++
			}
		}
		totalScore += endTotal
	}

	r.TotalScore = totalScore
	r.TotalX = totalX
	r.Total10 = total10
	r.Status = StatusCompleted
	r.FinalizedAt = now.Unix()
	return nil
}

// Cancel aborts an in-progress round. The raw data stays around for audit,
// but the round no longer counts toward any rating or leaderboard.
func (r *Round) Cancel() error {
	if r.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot cancel %s round", ErrRoundFinalized, r.Status)
	}
	r.Status = StatusCancelled
	return nil
}

// CountsForRanking reports whether the round participates in rating and
// leaderboard computations.
func (r *Round) CountsForRanking() bool {
	return r.Status == StatusCompleted
}
