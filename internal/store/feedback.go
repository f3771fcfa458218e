package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/rehearse/internal/session"
)

func (s *Store) GetFeedback(ctx context.Context, sessionID uuid.UUID) (*session.Feedback, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, overall_score, communication_score, technical_score,
		       strengths, improvements, detailed_feedback, created_at
		FROM interview_feedback
		WHERE session_id = $1`,
		sessionID,
	)

	var f session.Feedback
	err := row.Scan(&f.ID, &f.SessionID, &f.OverallScore, &f.CommunicationScore, &f.TechnicalScore,
		&f.Strengths, &f.Improvements, &f.DetailedFeedback, &f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get feedback for %s: %w", sessionID, mapError(err))
	}
	return &f, nil
}

// SaveFeedback inserts f unless the session already has feedback, then
// returns the stored row so concurrent writers agree on one result.
func (s *Store) SaveFeedback(ctx context.Context, f *session.Feedback) (*session.Feedback, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interview_feedback (id, session_id, overall_score, communication_score, technical_score,
			strengths, improvements, detailed_feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id) DO NOTHING`,
		f.ID, f.SessionID, f.OverallScore, f.CommunicationScore, f.TechnicalScore,
		f.Strengths, f.Improvements, f.DetailedFeedback, f.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", mapError(err))
	}
	return s.GetFeedback(ctx, f.SessionID)
}
