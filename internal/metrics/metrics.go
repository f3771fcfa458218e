package metrics

import (
	"sync"
	"time"
)

// Metrics counts interview activity since process start.
type Metrics struct {
	mu                sync.RWMutex
	sessionsStarted   int64
	sessionsCompleted int64
	exchangesRecorded int64
	followUpsAsked    int64
	feedbackGenerated int64
	lastUpdate        time.Time
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	SessionsStarted   int64     `json:"sessions_started"`
	SessionsCompleted int64     `json:"sessions_completed"`
	ExchangesRecorded int64     `json:"exchanges_recorded"`
	FollowUpsAsked    int64     `json:"follow_ups_asked"`
	FeedbackGenerated int64     `json:"feedback_generated"`
	LastUpdate        time.Time `json:"last_update"`
}

func New() *Metrics {
	return &Metrics{lastUpdate: time.Now().UTC()}
}

func (m *Metrics) SessionStarted() {
	m.bump(&m.sessionsStarted)
}

func (m *Metrics) SessionCompleted() {
	m.bump(&m.sessionsCompleted)
}

// ExchangeRecorded counts an answer and, when the question that follows it
// is a follow-up, the follow-up as well.
func (m *Metrics) ExchangeRecorded(followUp bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchangesRecorded++
	if followUp {
		m.followUpsAsked++
	}
	m.lastUpdate = time.Now().UTC()
}

func (m *Metrics) FeedbackGenerated() {
	m.bump(&m.feedbackGenerated)
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		SessionsStarted:   m.sessionsStarted,
		SessionsCompleted: m.sessionsCompleted,
		ExchangesRecorded: m.exchangesRecorded,
		FollowUpsAsked:    m.followUpsAsked,
		FeedbackGenerated: m.feedbackGenerated,
		LastUpdate:        m.lastUpdate,
	}
}

func (m *Metrics) bump(counter *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter++
	m.lastUpdate = time.Now().UTC()
}
