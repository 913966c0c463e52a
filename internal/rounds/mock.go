package rounds

import (
	"sync"
	"time"

	"github.com/sejersbol/bullseye/internal/archery"
)

// MockStore is a mock implementation of the RoundStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertArcherFunc           func(archer archery.Archer) error
	GetArcherFunc              func(archerID string) (*archery.Archer, error)
	GetAllArchersFunc          func() ([]archery.Archer, error)
	UpdateArcherRatingFunc     func(archerID string, rating int, tier *int) error
	CreateRoundFunc            func(round *archery.Round) error
	GetRoundFunc               func(roundID string) (*archery.Round, error)
	RecordEndFunc              func(roundID string, end archery.End) error
	FinalizeRoundFunc          func(roundID string, now time.Time) (*archery.Round, error)
	CancelRoundFunc            func(roundID string) error
	GetRoundsByArcherFunc      func(archerID string) ([]*archery.Round, error)
	GetCompletedRoundsFunc     func(filter RoundFilter) ([]*archery.Round, error)
	GetRoundsForProcessingFunc func() ([]*archery.Round, error)
	UpdateProcessingStatusFunc func(roundID string, status archery.ProcessingStatus) error
	UpsertTeamFunc             func(team archery.Team) error
	AddTeamMemberFunc          func(teamID, archerID string, joinedAt time.Time) error
	GetTeamMemberIDsFunc       func(teamID string) ([]string, error)
	ClearFunc                  func()

	// Call records
	UpsertArcherCalls       []archery.Archer
	UpdateArcherRatingCalls []struct {
		ArcherID string
		Rating   int
		Tier     *int
	}
	CreateRoundCalls            []*archery.Round
	FinalizeRoundCalls          []string
	CancelRoundCalls            []string
	GetCompletedRoundsCalls     []RoundFilter
	UpdateProcessingStatusCalls []struct {
		RoundID string
		Status  archery.ProcessingStatus
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertArcherCalls = nil
	m.UpdateArcherRatingCalls = nil
	m.CreateRoundCalls = nil
	m.FinalizeRoundCalls = nil
	m.CancelRoundCalls = nil
	m.GetCompletedRoundsCalls = nil
	m.UpdateProcessingStatusCalls = nil
}

func (m *MockStore) UpsertArcher(archer archery.Archer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertArcherCalls = append(m.UpsertArcherCalls, archer)
	if m.UpsertArcherFunc != nil {
		return m.UpsertArcherFunc(archer)
	}
	return nil
}

func (m *MockStore) GetArcher(archerID string) (*archery.Archer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetArcherFunc != nil {
		return m.GetArcherFunc(archerID)
	}
	return nil, archery.ErrArcherNotFound
}

func (m *MockStore) GetAllArchers() ([]archery.Archer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllArchersFunc != nil {
		return m.GetAllArchersFunc()
	}
	return nil, nil
}

func (m *MockStore) UpdateArcherRating(archerID string, rating int, tier *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateArcherRatingCalls = append(m.UpdateArcherRatingCalls, struct {
		ArcherID string
		Rating   int
		Tier     *int
	}{archerID, rating, tier})
	if m.UpdateArcherRatingFunc != nil {
		return m.UpdateArcherRatingFunc(archerID, rating, tier)
	}
	return nil
}

func (m *MockStore) CreateRound(round *archery.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateRoundCalls = append(m.CreateRoundCalls, round)
	if m.CreateRoundFunc != nil {
		return m.CreateRoundFunc(round)
	}
	return nil
}

func (m *MockStore) GetRound(roundID string) (*archery.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRoundFunc != nil {
		return m.GetRoundFunc(roundID)
	}
	return nil, archery.ErrRoundNotFound
}

func (m *MockStore) RecordEnd(roundID string, end archery.End) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordEndFunc != nil {
		return m.RecordEndFunc(roundID, end)
	}
	return nil
}

func (m *MockStore) FinalizeRound(roundID string, now time.Time) (*archery.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinalizeRoundCalls = append(m.FinalizeRoundCalls, roundID)
	if m.FinalizeRoundFunc != nil {
		return m.FinalizeRoundFunc(roundID, now)
	}
	return nil, archery.ErrRoundNotFound
}

func (m *MockStore) CancelRound(roundID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelRoundCalls = append(m.CancelRoundCalls, roundID)
	if m.CancelRoundFunc != nil {
		return m.CancelRoundFunc(roundID)
	}
	return nil
}

func (m *MockStore) GetRoundsByArcher(archerID string) ([]*archery.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRoundsByArcherFunc != nil {
		return m.GetRoundsByArcherFunc(archerID)
	}
	return nil, nil
}

func (m *MockStore) GetCompletedRounds(filter RoundFilter) ([]*archery.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCompletedRoundsCalls = append(m.GetCompletedRoundsCalls, filter)
	if m.GetCompletedRoundsFunc != nil {
		return m.GetCompletedRoundsFunc(filter)
	}
	return nil, nil
}

func (m *MockStore) GetRoundsForProcessing() ([]*archery.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRoundsForProcessingFunc != nil {
		return m.GetRoundsForProcessingFunc()
	}
	return nil, nil
}

func (m *MockStore) UpdateProcessingStatus(roundID string, status archery.ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, struct {
		RoundID string
		Status  archery.ProcessingStatus
	}{roundID, status})
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(roundID, status)
	}
	return nil
}

func (m *MockStore) UpsertTeam(team archery.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertTeamFunc != nil {
		return m.UpsertTeamFunc(team)
	}
	return nil
}

func (m *MockStore) AddTeamMember(teamID, archerID string, joinedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddTeamMemberFunc != nil {
		return m.AddTeamMemberFunc(teamID, archerID, joinedAt)
	}
	return nil
}

func (m *MockStore) GetTeamMemberIDs(teamID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetTeamMemberIDsFunc != nil {
		return m.GetTeamMemberIDsFunc(teamID)
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
