package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/rehearse/internal/hermes"
	"github.com/MikeSquared-Agency/rehearse/internal/interview"
)

// Status is the lifecycle state of an interview session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflicting write")
	ErrSessionCompleted  = errors.New("session already completed")
	ErrSessionInProgress = errors.New("session still in progress")
	ErrEmptyResponse     = errors.New("response is empty")
	ErrMissingUser       = errors.New("user id is required")
)

// Session is one practice interview.
//
// QuestionIndex counts the scripted questions asked so far and is only
// advanced by non-follow-up questions. CurrentQuestion is the question the
// next answer responds to.
type Session struct {
	ID              uuid.UUID      `json:"id"`
	UserID          string         `json:"user_id"`
	Role            interview.Role `json:"role_type"`
	Status          Status         `json:"status"`
	QuestionIndex   int            `json:"question_index"`
	CurrentQuestion string         `json:"current_question"`
	CreatedAt       time.Time      `json:"created_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

// Exchange is a stored answer.
type Exchange struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Sequence  int       `json:"sequence"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// Feedback is the stored score of a completed session.
type Feedback struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	interview.Feedback
	CreatedAt time.Time `json:"created_at"`
}

// HistoryEntry pairs a completed session with its feedback, if generated.
type HistoryEntry struct {
	Session  Session   `json:"session"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// Store persists sessions, exchanges and feedback. Implementations return
// ErrNotFound for missing records.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	// RecordExchange appends e and replaces the session with next as one
	// step. It fails with ErrSessionCompleted when the stored session is
	// completed, and with ErrConflict when the stored question index,
	// current question or exchange count no longer match expected and
	// e.Sequence. Nothing is written on failure.
	RecordExchange(ctx context.Context, expected Session, e *Exchange, next *Session) error
	ListExchanges(ctx context.Context, sessionID uuid.UUID) ([]Exchange, error)
	GetFeedback(ctx context.Context, sessionID uuid.UUID) (*Feedback, error)
	// SaveFeedback stores f unless the session already has feedback, and
	// returns whichever row is stored.
	SaveFeedback(ctx context.Context, f *Feedback) (*Feedback, error)
	ListCompletedSessions(ctx context.Context, userID string, limit int) ([]Session, error)
}

// Publisher emits lifecycle events. *hermes.Client satisfies it.
type Publisher interface {
	Emit(evt hermes.Event) error
}

func toInterviewExchanges(in []Exchange) []interview.Exchange {
	out := make([]interview.Exchange, len(in))
	for i, e := range in {
		out[i] = interview.Exchange{Sequence: e.Sequence, Question: e.Question, Response: e.Response}
	}
	return out
}
