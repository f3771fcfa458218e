package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/rehearse/internal/interview"
	"github.com/MikeSquared-Agency/rehearse/internal/session"
)

const sessionColumns = `id, user_id, role_type, status, question_index, current_question, created_at, completed_at`

func (s *Store) CreateSession(ctx context.Context, sess *session.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interview_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sess.ID, sess.UserID, string(sess.Role), string(sess.Status), sess.QuestionIndex,
		sess.CurrentQuestion, sess.CreatedAt, sess.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", mapError(err))
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM interview_sessions
		WHERE id = $1`,
		id,
	)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, mapError(err))
	}
	return sess, nil
}

// ListCompletedSessions returns the user's completed sessions, most recently
// completed first.
func (s *Store) ListCompletedSessions(ctx context.Context, userID string, limit int) ([]session.Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM interview_sessions
		WHERE user_id = $1 AND status = 'completed'
		ORDER BY completed_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query completed sessions: %w", err)
	}
	defer rows.Close()

	var out []session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, *sess)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		sess         session.Session
		role, status string
	)
	err := row.Scan(&sess.ID, &sess.UserID, &role, &status, &sess.QuestionIndex,
		&sess.CurrentQuestion, &sess.CreatedAt, &sess.CompletedAt)
	if err != nil {
		return nil, err
	}
	sess.Role = interview.Role(role)
	sess.Status = session.Status(status)
	return &sess, nil
}
