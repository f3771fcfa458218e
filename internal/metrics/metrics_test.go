package metrics

import (
	"sync"
	"testing"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.SessionStarted()
	m.SessionStarted()
	m.ExchangeRecorded(false)
	m.ExchangeRecorded(true)
	m.ExchangeRecorded(true)
	m.SessionCompleted()
	m.FeedbackGenerated()

	s := m.Snapshot()
	if s.SessionsStarted != 2 {
		t.Errorf("sessions started = %d, want 2", s.SessionsStarted)
	}
	if s.ExchangesRecorded != 3 {
		t.Errorf("exchanges recorded = %d, want 3", s.ExchangesRecorded)
	}
	if s.FollowUpsAsked != 2 {
		t.Errorf("follow-ups = %d, want 2", s.FollowUpsAsked)
	}
	if s.SessionsCompleted != 1 || s.FeedbackGenerated != 1 {
		t.Errorf("completed/feedback = %d/%d, want 1/1", s.SessionsCompleted, s.FeedbackGenerated)
	}
	if s.LastUpdate.IsZero() {
		t.Error("expected last update to be set")
	}
}

func TestMetrics_ConcurrentUse(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.SessionStarted()
			m.ExchangeRecorded(i%2 == 0)
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	if s.SessionsStarted != 50 || s.ExchangesRecorded != 50 || s.FollowUpsAsked != 25 {
		t.Errorf("unexpected snapshot %+v", s)
	}
}
