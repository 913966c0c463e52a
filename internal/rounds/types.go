package rounds

import (
	"database/sql"
	"sync"

	"github.com/sejersbol/bullseye/internal/archery"
)

// store handles all database operations for archers, rounds and teams.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// RoundFilter narrows a completed-rounds query. Zero values leave a
// dimension unconstrained. A Types list that names no known round type
// matches nothing, by design: malformed filters yield an empty result, not
// an accidentally inclusive one.
type RoundFilter struct {
	ArcherID  string
	ArcherIDs []string
	// From/To bound shot_at as unix seconds; To is exclusive. Zero means
	// unbounded.
	From int64
	To   int64
	// Types restricts round types when non-nil.
	Types []archery.RoundType
	// DistanceM restricts to an exact distance when positive.
	DistanceM int
}

func (f RoundFilter) matches(round *archery.Round) bool {
	if f.ArcherID != "" && round.ArcherID != f.ArcherID {
		return false
	}
	if f.ArcherIDs != nil {
		found := false
		for _, id := range f.ArcherIDs {
			if round.ArcherID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != 0 && round.ShotAt < f.From {
		return false
	}
	if f.To != 0 && round.ShotAt >= f.To {
		return false
	}
	if f.Types != nil {
		found := false
		for _, roundType := range f.Types {
			if round.Type == roundType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.DistanceM > 0 && round.DistanceM != f.DistanceM {
		return false
	}
	return true
}
