package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toast/api/internal/dbx"
	"toast/api/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionColumns is the select list matching ScanSession.
var SessionColumns = []string{"id", "user_id", "ip", "platform", "user_agent", "created_at", "expire_at"}

type Scanner interface {
	Scan(dest ...any) error
}

func ScanSession(row Scanner) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.UserID, &s.IP, &s.Platform, &s.UserAgent, &s.CreatedAt, &s.ExpireAt)
	return s, err
}

type SessionRepository struct {
	db dbx.DBTX
}

func NewSessionRepository(db dbx.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, ip, platform, user_agent, created_at, expire_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.IP,
		string(session.Platform),
		session.UserAgent,
		session.CreatedAt,
		session.ExpireAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID looks a session up by its token, regardless of owner.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	const query = `
		SELECT id, user_id, ip, platform, user_agent, created_at, expire_at
		FROM sessions
		WHERE id = $1
	`

	session, err := ScanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	const query = `
		SELECT id, user_id, ip, platform, user_agent, created_at, expire_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := ScanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// DeleteExpiredForUser removes the user's sessions whose expiry is at or
// before now.
func (r *SessionRepository) DeleteExpiredForUser(ctx context.Context, userID string, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE user_id = $1 AND expire_at <= $2`
	return r.exec(ctx, query, userID, now)
}

func (r *SessionRepository) DeleteAllExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expire_at <= $1`
	return r.exec(ctx, query, now)
}

func (r *SessionRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
