// Package memory is an in-process session.Store for tests and the terminal
// practice mode. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/rehearse/internal/session"
)

var _ session.Store = (*Store)(nil)

type Store struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]session.Session
	exchanges map[uuid.UUID][]session.Exchange
	feedback  map[uuid.UUID]session.Feedback
}

func New() *Store {
	return &Store{
		sessions:  make(map[uuid.UUID]session.Session),
		exchanges: make(map[uuid.UUID][]session.Exchange),
		feedback:  make(map[uuid.UUID]session.Feedback),
	}
}

func (s *Store) CreateSession(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return fmt.Errorf("session %s: %w", sess.ID, session.ErrConflict)
	}
	s.sessions[sess.ID] = copySession(*sess)
	return nil
}

func (s *Store) GetSession(_ context.Context, id uuid.UUID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, session.ErrNotFound)
	}
	out := copySession(sess)
	return &out, nil
}

func (s *Store) RecordExchange(_ context.Context, expected session.Session, e *session.Exchange, next *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[expected.ID]
	if !ok {
		return fmt.Errorf("session %s: %w", expected.ID, session.ErrNotFound)
	}
	if cur.Status == session.StatusCompleted {
		return fmt.Errorf("session %s: %w", expected.ID, session.ErrSessionCompleted)
	}
	if cur.QuestionIndex != expected.QuestionIndex || cur.CurrentQuestion != expected.CurrentQuestion {
		return fmt.Errorf("session %s moved on: %w", expected.ID, session.ErrConflict)
	}
	if n := len(s.exchanges[expected.ID]); n != e.Sequence {
		return fmt.Errorf("exchange %d of session %s, %d stored: %w", e.Sequence, expected.ID, n, session.ErrConflict)
	}

	s.exchanges[expected.ID] = append(s.exchanges[expected.ID], *e)
	s.sessions[expected.ID] = copySession(*next)
	return nil
}

func (s *Store) ListExchanges(_ context.Context, sessionID uuid.UUID) ([]session.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]session.Exchange(nil), s.exchanges[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (s *Store) GetFeedback(_ context.Context, sessionID uuid.UUID) (*session.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fb, ok := s.feedback[sessionID]
	if !ok {
		return nil, fmt.Errorf("feedback for %s: %w", sessionID, session.ErrNotFound)
	}
	return &fb, nil
}

func (s *Store) SaveFeedback(_ context.Context, f *session.Feedback) (*session.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[f.SessionID]; !ok {
		return nil, fmt.Errorf("session %s: %w", f.SessionID, session.ErrNotFound)
	}
	if existing, ok := s.feedback[f.SessionID]; ok {
		return &existing, nil
	}
	s.feedback[f.SessionID] = *f
	out := *f
	return &out, nil
}

func (s *Store) ListCompletedSessions(_ context.Context, userID string, limit int) ([]session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []session.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.Status == session.StatusCompleted && sess.CompletedAt != nil {
			out = append(out, copySession(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(*out[j].CompletedAt) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copySession(s session.Session) session.Session {
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}
	return s
}
