package notifier

import (
	"sync"
	"time"

	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/leaderboard"
)

// MockNotifier is a mock implementation of the Notifier interface for
// testing. It is safe for concurrent use.
type MockNotifier struct {
	mu sync.Mutex

	// Spies for method calls
	SendTierPromotionFunc    func(archer *archery.Archer, previousTier, newTier int, dryRun bool) error
	SendPersonalBestFunc     func(archer *archery.Archer, round *archery.Round, dryRun bool) error
	SendDailyLeaderboardFunc func(view leaderboard.View, date time.Time, dryRun bool) error

	FormatDailyLeaderboardResponseFunc func(view leaderboard.View, date time.Time) (any, error)

	// Call records
	TierPromotionCalls []TierPromotionCall
	PersonalBestCalls  []PersonalBestCall
	DailyCalls         []leaderboard.View
}

// TierPromotionCall holds the arguments for a call to SendTierPromotion.
type TierPromotionCall struct {
	ArcherID     string
	PreviousTier int
	NewTier      int
}

// PersonalBestCall holds the arguments for a call to SendPersonalBest.
type PersonalBestCall struct {
	ArcherID string
	RoundID  string
}

// NewMock creates a new mock instance.
func NewMock() *MockNotifier {
	return &MockNotifier{}
}

// Reset clears all call records.
func (m *MockNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TierPromotionCalls = nil
	m.PersonalBestCalls = nil
	m.DailyCalls = nil
}

func (m *MockNotifier) SendTierPromotion(archer *archery.Archer, previousTier, newTier int, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TierPromotionCalls = append(m.TierPromotionCalls, TierPromotionCall{
		ArcherID:     archer.ID,
		PreviousTier: previousTier,
		NewTier:      newTier,
	})
	if m.SendTierPromotionFunc != nil {
		return m.SendTierPromotionFunc(archer, previousTier, newTier, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendPersonalBest(archer *archery.Archer, round *archery.Round, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersonalBestCalls = append(m.PersonalBestCalls, PersonalBestCall{ArcherID: archer.ID, RoundID: round.ID})
	if m.SendPersonalBestFunc != nil {
		return m.SendPersonalBestFunc(archer, round, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendDailyLeaderboard(view leaderboard.View, date time.Time, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DailyCalls = append(m.DailyCalls, view)
	if m.SendDailyLeaderboardFunc != nil {
		return m.SendDailyLeaderboardFunc(view, date, dryRun)
	}
	return nil
}

func (m *MockNotifier) FormatDailyLeaderboardResponse(view leaderboard.View, date time.Time) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatDailyLeaderboardResponseFunc != nil {
		return m.FormatDailyLeaderboardResponseFunc(view, date)
	}
	return view, nil
}
