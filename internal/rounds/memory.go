package rounds

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sejersbol/bullseye/internal/archery"
)

// memoryStore is the in-memory RoundStore backend, used in tests and demo
// setups. It honors the same semantics as the sqlite store, including
// atomic finalization under its lock.
type memoryStore struct {
	mu      sync.RWMutex
	archers map[string]archery.Archer
	rounds  map[string]*archery.Round
	teams   map[string]archery.Team
	members map[string][]archery.TeamMember
}

// NewMemory creates an empty in-memory RoundStore.
func NewMemory() RoundStore {
	return &memoryStore{
		archers: make(map[string]archery.Archer),
		rounds:  make(map[string]*archery.Round),
		teams:   make(map[string]archery.Team),
		members: make(map[string][]archery.TeamMember),
	}
}

func (m *memoryStore) UpsertArcher(archer archery.Archer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.archers[archer.ID]; ok {
		archer.Rating = existing.Rating
		archer.RankTier = existing.RankTier
	}
	m.archers[archer.ID] = archer
	return nil
}

func (m *memoryStore) GetArcher(archerID string) (*archery.Archer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	archer, ok := m.archers[archerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", archery.ErrArcherNotFound, archerID)
	}
	return &archer, nil
}

func (m *memoryStore) GetAllArchers() ([]archery.Archer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	archers := make([]archery.Archer, 0, len(m.archers))
	for _, archer := range m.archers {
		archers = append(archers, archer)
	}
	sort.Slice(archers, func(i, j int) bool { return archers[i].Name < archers[j].Name })
	return archers, nil
}

func (m *memoryStore) UpdateArcherRating(archerID string, rating int, tier *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	archer, ok := m.archers[archerID]
	if !ok {
		return fmt.Errorf("%w: %s", archery.ErrArcherNotFound, archerID)
	}
	archer.Rating = rating
	archer.RankTier = tier
	m.archers[archerID] = archer
	return nil
}

func (m *memoryStore) CreateRound(round *archery.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *round
	copied.Status = archery.StatusInProgress
	copied.ProcessingStatus = archery.ProcessingNew
	copied.Ends = nil
	m.rounds[round.ID] = &copied
	return nil
}

func (m *memoryStore) GetRound(roundID string) (*archery.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	round, ok := m.rounds[roundID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", archery.ErrRoundNotFound, roundID)
	}
	copied := cloneRound(round)
	return copied, nil
}

func (m *memoryStore) RecordEnd(roundID string, end archery.End) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, ok := m.rounds[roundID]
	if !ok {
		return fmt.Errorf("%w: %s", archery.ErrRoundNotFound, roundID)
	}
	if round.Status != archery.StatusInProgress {
		return fmt.Errorf("%w: cannot record end on %s round", archery.ErrRoundFinalized, round.Status)
	}

	for i := range round.Ends {
		if round.Ends[i].EndIndex == end.EndIndex {
			round.Ends[i] = end
			return nil
		}
	}
	round.Ends = append(round.Ends, end)
	return nil
}

func (m *memoryStore) FinalizeRound(roundID string, now time.Time) (*archery.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, ok := m.rounds[roundID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", archery.ErrRoundNotFound, roundID)
	}
	if err := round.Finalize(now); err != nil {
		return nil, err
	}
	round.ProcessingStatus = archery.ProcessingNew
	return cloneRound(round), nil
}

func (m *memoryStore) CancelRound(roundID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, ok := m.rounds[roundID]
	if !ok {
		return fmt.Errorf("%w: %s", archery.ErrRoundNotFound, roundID)
	}
	if err := round.Cancel(); err != nil {
		return err
	}
	round.ProcessingStatus = archery.ProcessingNew
	return nil
}

func (m *memoryStore) GetRoundsByArcher(archerID string) ([]*archery.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*archery.Round
	for _, round := range m.rounds {
		if round.ArcherID == archerID {
			result = append(result, cloneRound(round))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ShotAt > result[j].ShotAt })
	return result, nil
}

func (m *memoryStore) GetCompletedRounds(filter RoundFilter) ([]*archery.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if filter.Types != nil && len(filter.Types) == 0 {
		return nil, nil
	}
	if filter.ArcherIDs != nil && len(filter.ArcherIDs) == 0 {
		return nil, nil
	}

	var result []*archery.Round
	for _, round := range m.rounds {
		if round.Status != archery.StatusCompleted {
			continue
		}
		if !filter.matches(round) {
			continue
		}
		result = append(result, cloneRound(round))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ShotAt != result[j].ShotAt {
			return result[i].ShotAt < result[j].ShotAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *memoryStore) GetRoundsForProcessing() ([]*archery.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*archery.Round
	for _, round := range m.rounds {
		if round.Status == archery.StatusInProgress {
			continue
		}
		if round.ProcessingStatus == archery.ProcessingCompleted {
			continue
		}
		result = append(result, cloneRound(round))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FinalizedAt < result[j].FinalizedAt })
	return result, nil
}

func (m *memoryStore) UpdateProcessingStatus(roundID string, status archery.ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, ok := m.rounds[roundID]
	if !ok {
		return fmt.Errorf("%w: %s", archery.ErrRoundNotFound, roundID)
	}
	round.ProcessingStatus = status
	return nil
}

func (m *memoryStore) UpsertTeam(team archery.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[team.ID] = team
	return nil
}

func (m *memoryStore) AddTeamMember(teamID, archerID string, joinedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, member := range m.members[teamID] {
		if member.ArcherID == archerID {
			return nil
		}
	}
	m.members[teamID] = append(m.members[teamID], archery.TeamMember{
		TeamID:   teamID,
		ArcherID: archerID,
		JoinedAt: joinedAt.Unix(),
	})
	return nil
}

func (m *memoryStore) GetTeamMemberIDs(teamID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := m.members[teamID]
	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.ArcherID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.archers = make(map[string]archery.Archer)
	m.rounds = make(map[string]*archery.Round)
	m.teams = make(map[string]archery.Team)
	m.members = make(map[string][]archery.TeamMember)
}

func cloneRound(round *archery.Round) *archery.Round {
	copied := *round
	copied.Ends = make([]archery.End, len(round.Ends))
	for i, end := range round.Ends {
		copied.Ends[i] = end
		copied.Ends[i].Arrows = append([]archery.ArrowResult(nil), end.Arrows...)
	}
	return &copied
}
