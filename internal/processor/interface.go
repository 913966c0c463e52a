package processor

import (
	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/notifier"
	"github.com/sejersbol/bullseye/internal/rounds"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetRoundsForProcessing() ([]*archery.Round, error)
	UpdateProcessingStatus(roundID string, status archery.ProcessingStatus) error
	GetArcher(archerID string) (*archery.Archer, error)
	GetCompletedRounds(filter rounds.RoundFilter) ([]*archery.Round, error)
	UpdateArcherRating(archerID string, rating int, tier *int) error
}

// Notifier defines the notification operations required by the processor.
// This is now an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
