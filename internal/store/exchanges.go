package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/rehearse/internal/session"
)

// RecordExchange stores an answer and moves the session to next in one
// transaction. The session row is locked for the duration, so a second answer
// to the same turn waits and then fails the expected-state check.
func (s *Store) RecordExchange(ctx context.Context, expected session.Session, e *session.Exchange, next *session.Session) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		status   string
		index    int
		question string
	)
	err = tx.QueryRow(ctx, `
		SELECT status, question_index, current_question
		FROM interview_sessions
		WHERE id = $1
		FOR UPDATE`,
		expected.ID,
	).Scan(&status, &index, &question)
	if err != nil {
		return fmt.Errorf("lock session %s: %w", expected.ID, mapError(err))
	}
	if session.Status(status) == session.StatusCompleted {
		return fmt.Errorf("session %s: %w", expected.ID, session.ErrSessionCompleted)
	}
	if index != expected.QuestionIndex || question != expected.CurrentQuestion {
		return fmt.Errorf("session %s moved on: %w", expected.ID, session.ErrConflict)
	}

	var stored int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM interview_exchanges WHERE session_id = $1`, expected.ID).Scan(&stored); err != nil {
		return fmt.Errorf("count exchanges: %w", err)
	}
	if stored != e.Sequence {
		return fmt.Errorf("exchange %d of session %s, %d stored: %w", e.Sequence, expected.ID, stored, session.ErrConflict)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO interview_exchanges (id, session_id, sequence, question, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.SessionID, e.Sequence, e.Question, e.Response, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", mapError(err))
	}

	_, err = tx.Exec(ctx, `
		UPDATE interview_sessions
		SET status = $2, question_index = $3, current_question = $4, completed_at = $5
		WHERE id = $1`,
		next.ID, string(next.Status), next.QuestionIndex, next.CurrentQuestion, next.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", mapError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) ListExchanges(ctx context.Context, sessionID uuid.UUID) ([]session.Exchange, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, sequence, question, response, created_at
		FROM interview_exchanges
		WHERE session_id = $1
		ORDER BY sequence`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	var out []session.Exchange
	for rows.Next() {
		var e session.Exchange
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Sequence, &e.Question, &e.Response, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
