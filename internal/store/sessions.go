package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

func (s *Store) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (*models.Session, error) {
	session := &models.Session{}

	query := `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING token, user_id, expires_at, created_at`

	err := s.q.QueryRowContext(ctx, query, uuid.New(), userID, time.Now().Add(ttl)).Scan(
		&session.Token,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session, nil
}

// GetSession returns ErrSessionNotFound for unknown, malformed or expired
// tokens.
func (s *Store) GetSession(ctx context.Context, token string) (*models.Session, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, database.ErrSessionNotFound
	}

	session := &models.Session{}

	query := `
		SELECT token, user_id, expires_at, created_at
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()`

	err = s.q.QueryRowContext(ctx, query, id).Scan(
		&session.Token,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return session, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := s.q.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return n, nil
}
