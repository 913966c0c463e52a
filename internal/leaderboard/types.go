package leaderboard

import (
	"time"

	"github.com/sejersbol/bullseye/internal/handicap"
	"github.com/sejersbol/bullseye/internal/rounds"
)

// Candidate is one archer's reduced metric before ranking.
type Candidate struct {
	ArcherID string
	Name     string
	Metric   float64
	// XCount is the first tie-breaker (more inner tens wins).
	XCount int
	// AchievedAt is the second tie-breaker: the unix time the metric was
	// reached. Earlier wins, rewarding whoever got there first.
	AchievedAt int64
}

// Entry is one row of a ranked view.
type Entry struct {
	Rank       int     `json:"rank"`
	ArcherID   string  `json:"archer_id"`
	Name       string  `json:"name"`
	Metric     float64 `json:"metric"`
	XCount     int     `json:"x_count,omitempty"`
	AchievedAt int64   `json:"achieved_at,omitempty"`
}

// View is a truncated ranking plus the caller's own entry. Mine is nil when
// the caller has no qualifying data for the view.
type View struct {
	Entries []Entry `json:"entries"`
	Mine    *Entry  `json:"mine,omitempty"`
}

// TypeGroup names a round-type filter group for the best-score view.
type TypeGroup string

const (
	GroupPractice    TypeGroup = "practice"
	GroupCompetition TypeGroup = "competition"
	GroupAll         TypeGroup = "all"
)

// Period names a trailing window for the practice-volume view.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Default limits per view.
const (
	DefaultMastersLimit  = 30
	DefaultDailyLimit    = 10
	DefaultScoreLimit    = 50
	DefaultBestLimit     = 30
	DefaultVolumeLimit   = 30
	DefaultTeamLimit     = 30
	teamWeeklyWindowDays = 7
)

// Service answers the six leaderboard views against the round store. It is
// stateless: every query works on the snapshot the store returns.
type Service struct {
	store    rounds.RoundStore
	handicap *handicap.Table

	// now is injectable for tests.
	now func() time.Time
}

// NewService creates a leaderboard service.
func NewService(store rounds.RoundStore, table *handicap.Table) *Service {
	return &Service{
		store:    store,
		handicap: table,
		now:      time.Now,
	}
}

// NewServiceWithClock creates a service with a fixed clock, for tests.
func NewServiceWithClock(store rounds.RoundStore, table *handicap.Table, now func() time.Time) *Service {
	return &Service{
		store:    store,
		handicap: table,
		now:      now,
	}
}
