package hermes

import "time"

// Subjects for interview lifecycle events.
const (
	SubjectSessionStarted    = "interview.session.started"
	SubjectExchangeRecorded  = "interview.exchange.recorded"
	SubjectSessionCompleted  = "interview.session.completed"
	SubjectFeedbackGenerated = "interview.feedback.generated"
)

// Event is a lifecycle payload that knows the subject it is published on.
type Event interface {
	Subject() string
}

// SessionStarted is published when a candidate begins an interview.
type SessionStarted struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

// ExchangeRecorded is published after each answer that does not end the interview.
type ExchangeRecorded struct {
	SessionID  string `json:"session_id"`
	Sequence   int    `json:"sequence"`
	IsFollowUp bool   `json:"is_follow_up"`
}

// SessionCompleted is published once the final answer is stored. Consumers
// use it to generate feedback ahead of the first read.
type SessionCompleted struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	CompletedAt time.Time `json:"completed_at"`
}

type FeedbackGenerated struct {
	SessionID          string `json:"session_id"`
	OverallScore       int    `json:"overall_score"`
	CommunicationScore int    `json:"communication_score"`
	TechnicalScore     int    `json:"technical_score"`
}

func (SessionStarted) Subject() string    { return SubjectSessionStarted }
func (ExchangeRecorded) Subject() string  { return SubjectExchangeRecorded }
func (SessionCompleted) Subject() string  { return SubjectSessionCompleted }
func (FeedbackGenerated) Subject() string { return SubjectFeedbackGenerated }
