package notifier

import (
	"time"

	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/leaderboard"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For rank-tier changes detected by the processing pipeline. A previous
	// tier of zero means the archer was unranked before.
	SendTierPromotion(archer *archery.Archer, previousTier, newTier int, dryRun bool) error
	// For a new personal best round.
	SendPersonalBest(archer *archery.Archer, round *archery.Round, dryRun bool) error
	// For the daily leaderboard digest.
	SendDailyLeaderboard(view leaderboard.View, date time.Time, dryRun bool) error

	// For formatting responses for slash commands.
	FormatDailyLeaderboardResponse(view leaderboard.View, date time.Time) (any, error)
}
