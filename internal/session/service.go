package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/rehearse/internal/hermes"
	"github.com/MikeSquared-Agency/rehearse/internal/interview"
	"github.com/MikeSquared-Agency/rehearse/internal/metrics"
)

const (
	// DefaultRequiredExchanges is the number of answers that ends an interview.
	DefaultRequiredExchanges = 6
	DefaultHistoryLimit      = 10
)

// Service runs interview sessions on top of the question selector and the
// feedback scorer.
type Service struct {
	store     Store
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
	required  int

	mu  sync.Mutex // guards rng
	rng interview.Rand
}

type Option func(*Service)

// WithRequiredExchanges overrides how many answers complete a session.
func WithRequiredExchanges(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.required = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a Service. pub may be nil when no event bus is configured.
func New(store Store, pub Publisher, rng interview.Rand, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: pub,
		metrics:   metrics.New(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		required:  DefaultRequiredExchanges,
		rng:       rng,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequiredExchanges returns the number of answers that completes a session.
func (s *Service) RequiredExchanges() int {
	return s.required
}

// Metrics returns the service counters.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// Start opens a new session for userID and sets its first question.
func (s *Service) Start(ctx context.Context, userID string, role interview.Role) (*Session, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	first, err := interview.FirstQuestion(role)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:              uuid.New(),
		UserID:          userID,
		Role:            role,
		Status:          StatusInProgress,
		CurrentQuestion: first,
		CreatedAt:       s.now(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.metrics.SessionStarted()
	s.publish(hermes.SessionStarted{
		SessionID: sess.ID.String(),
		UserID:    userID,
		Role:      string(role),
	})

	s.logger.Info("session started", "session_id", sess.ID, "user_id", userID, "role", role)
	return sess, nil
}

// RespondResult describes the outcome of an answer.
type RespondResult struct {
	Session   *Session            `json:"session"`
	Exchange  Exchange            `json:"exchange"`
	Next      *interview.Question `json:"next,omitempty"`
	Completed bool                `json:"completed"`
}

// Respond records an answer to the session's current question. The session
// completes once the required number of answers is stored; otherwise the
// next question is chosen and becomes current. Answers that race on the same
// turn are serialized by the store: the loser gets ErrConflict, or
// ErrSessionCompleted when the winner ended the interview.
func (s *Service) Respond(ctx context.Context, userID string, sessionID uuid.UUID, response string) (*RespondResult, error) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return nil, ErrEmptyResponse
	}

	sess, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == StatusCompleted {
		return nil, ErrSessionCompleted
	}

	existing, err := s.store.ListExchanges(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	if len(existing) >= s.required {
		return nil, ErrSessionCompleted
	}

	expected := *sess
	ex := Exchange{
		ID:        uuid.New(),
		SessionID: sess.ID,
		Sequence:  len(existing),
		Question:  sess.CurrentQuestion,
		Response:  trimmed,
		CreatedAt: s.now(),
	}

	completed := ex.Sequence+1 >= s.required
	var next *interview.Question
	if completed {
		completedAt := s.now()
		sess.Status = StatusCompleted
		sess.CompletedAt = &completedAt
	} else {
		// QuestionIndex+1 is the scripted question that comes next. The
		// follow-up length gate sees the answer as typed.
		q, err := s.nextQuestion(sess.Role, sess.QuestionIndex+1, response)
		if err != nil {
			return nil, err
		}
		sess.CurrentQuestion = q.Text
		if !q.IsFollowUp {
			sess.QuestionIndex++
		}
		next = &q
	}

	if err := s.store.RecordExchange(ctx, expected, &ex, sess); err != nil {
		return nil, fmt.Errorf("record exchange: %w", err)
	}

	log := s.logger.With("session_id", sess.ID, "sequence", ex.Sequence)

	if completed {
		s.metrics.ExchangeRecorded(false)
		s.metrics.SessionCompleted()
		s.publish(hermes.SessionCompleted{
			SessionID:   sess.ID.String(),
			UserID:      sess.UserID,
			Role:        string(sess.Role),
			CompletedAt: *sess.CompletedAt,
		})

		log.Info("session completed", "exchanges", ex.Sequence+1)
		return &RespondResult{Session: sess, Exchange: ex, Completed: true}, nil
	}

	s.metrics.ExchangeRecorded(next.IsFollowUp)
	s.publish(hermes.ExchangeRecorded{
		SessionID:  sess.ID.String(),
		Sequence:   ex.Sequence,
		IsFollowUp: next.IsFollowUp,
	})

	log.Debug("exchange recorded", "follow_up", next.IsFollowUp, "question_index", sess.QuestionIndex)
	return &RespondResult{Session: sess, Exchange: ex, Next: next}, nil
}

// Get returns a session with its exchanges in sequence order.
func (s *Service) Get(ctx context.Context, userID string, sessionID uuid.UUID) (*Session, []Exchange, error) {
	sess, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	exchanges, err := s.store.ListExchanges(ctx, sess.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list exchanges: %w", err)
	}
	return sess, exchanges, nil
}

// Feedback returns the session's feedback, scoring it on first request.
func (s *Service) Feedback(ctx context.Context, userID string, sessionID uuid.UUID) (*Feedback, error) {
	sess, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.loadOrGenerate(ctx, sess)
}

// History lists the user's completed sessions, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	sessions, err := s.store.ListCompletedSessions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}

	out := make([]HistoryEntry, 0, len(sessions))
	for _, sess := range sessions {
		entry := HistoryEntry{Session: sess}
		fb, err := s.store.GetFeedback(ctx, sess.ID)
		switch {
		case err == nil:
			entry.Feedback = fb
		case !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("get feedback for %s: %w", sess.ID, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

// HandleSessionCompleted is the NATS handler for interview.session.completed.
// It scores the session so the first feedback read is a plain lookup.
func (s *Service) HandleSessionCompleted(subject string, data []byte) {
	ctx := context.Background()

	var evt hermes.SessionCompleted
	if err := json.Unmarshal(data, &evt); err != nil {
		s.logger.Error("failed to parse completion event", "subject", subject, "error", err)
		return
	}
	id, err := uuid.Parse(evt.SessionID)
	if err != nil {
		s.logger.Error("invalid session id", "session_id", evt.SessionID, "error", err)
		return
	}

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		s.logger.Error("failed to load completed session", "session_id", id, "error", err)
		return
	}
	if _, err := s.loadOrGenerate(ctx, sess); err != nil {
		s.logger.Error("failed to generate feedback", "session_id", id, "error", err)
	}
}

func (s *Service) loadOrGenerate(ctx context.Context, sess *Session) (*Feedback, error) {
	fb, err := s.store.GetFeedback(ctx, sess.ID)
	if err == nil {
		return fb, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	if sess.Status != StatusCompleted {
		return nil, ErrSessionInProgress
	}

	exchanges, err := s.store.ListExchanges(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	scored, err := interview.Score(sess.Role, toInterviewExchanges(exchanges))
	if err != nil {
		return nil, fmt.Errorf("score session %s: %w", sess.ID, err)
	}

	stored, err := s.store.SaveFeedback(ctx, &Feedback{
		ID:        uuid.New(),
		SessionID: sess.ID,
		Feedback:  scored,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}

	s.metrics.FeedbackGenerated()
	s.publish(hermes.FeedbackGenerated{
		SessionID:          sess.ID.String(),
		OverallScore:       stored.OverallScore,
		CommunicationScore: stored.CommunicationScore,
		TechnicalScore:     stored.TechnicalScore,
	})

	s.logger.Info("feedback generated",
		"session_id", sess.ID,
		"overall", stored.OverallScore,
		"communication", stored.CommunicationScore,
		"technical", stored.TechnicalScore,
	)
	return stored, nil
}

// owned loads a session and hides it from anyone but its owner.
func (s *Service) owned(ctx context.Context, userID string, sessionID uuid.UUID) (*Session, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Service) nextQuestion(role interview.Role, index int, previous string) (interview.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return interview.NextQuestion(s.rng, role, index, previous)
}

func (s *Service) publish(evt hermes.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(evt); err != nil {
		s.logger.Warn("failed to publish event", "subject", evt.Subject(), "error", err)
	}
}
