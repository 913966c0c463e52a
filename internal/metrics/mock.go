package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                sync.Mutex
	roundsFinalized   int
	roundsCancelled   int
	scoresRejected    int
	ratingsRecomputed int
	roundsProcessed   int
	notifSent         int
	notifFailed       int
	queryDurations    []float64
	startupTime       float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		queryDurations: make([]float64, 0),
	}
}

func (m *Mock) IncRoundsFinalized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundsFinalized++
}

func (m *Mock) IncRoundsCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundsCancelled++
}

func (m *Mock) IncScoresRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoresRejected++
}

func (m *Mock) IncRatingsRecomputed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingsRecomputed++
}

func (m *Mock) IncRoundsProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundsProcessed++
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) ObserveRankingQueryDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryDurations = append(m.queryDurations, seconds)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// RoundsFinalized returns the number of times IncRoundsFinalized was called.
func (m *Mock) RoundsFinalized() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roundsFinalized
}

// RoundsProcessed returns the number of times IncRoundsProcessed was called.
func (m *Mock) RoundsProcessed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roundsProcessed
}

// RatingsRecomputed returns the number of times IncRatingsRecomputed was called.
func (m *Mock) RatingsRecomputed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingsRecomputed
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}
