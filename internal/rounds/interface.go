package rounds

import (
	"time"

	"github.com/sejersbol/bullseye/internal/archery"
)

// RoundStore defines the repository the ranking engine is written against.
// Two interchangeable backends exist: the sqlite store for production and
// the in-memory store for tests and demos.
type RoundStore interface {
	UpsertArcher(archer archery.Archer) error
	GetArcher(archerID string) (*archery.Archer, error)
	GetAllArchers() ([]archery.Archer, error)
	// UpdateArcherRating persists the cached masters rating and tier. The
	// cache is derived state; the round history stays the source of truth.
	UpdateArcherRating(archerID string, rating int, tier *int) error

	CreateRound(round *archery.Round) error
	// GetRound returns the round with its full end/arrow breakdown.
	GetRound(roundID string) (*archery.Round, error)
	RecordEnd(roundID string, end archery.End) error
	// FinalizeRound validates completeness, derives the totals and flips the
	// round to completed in one transaction: concurrent readers see either
	// the in-progress round or the fully finalized one, never partials.
	FinalizeRound(roundID string, now time.Time) (*archery.Round, error)
	CancelRound(roundID string) error

	GetRoundsByArcher(archerID string) ([]*archery.Round, error)
	GetCompletedRounds(filter RoundFilter) ([]*archery.Round, error)

	GetRoundsForProcessing() ([]*archery.Round, error)
	UpdateProcessingStatus(roundID string, status archery.ProcessingStatus) error

	UpsertTeam(team archery.Team) error
	AddTeamMember(teamID, archerID string, joinedAt time.Time) error
	GetTeamMemberIDs(teamID string) ([]string, error)

	Clear()
}
