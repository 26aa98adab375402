package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"toast/api/internal/apierr"
	"toast/api/internal/dbx"
	"toast/api/internal/models"
)

var (
	ErrLoginNotFound = errors.New("login not found")
	ErrEmailTaken    = errors.New("email already taken")
	ErrIdentityTaken = errors.New("identity already linked")
)

// LoginRepository stores one credential per login kind per user.
type LoginRepository struct {
	db dbx.DBTX
}

func NewLoginRepository(db dbx.DBTX) *LoginRepository {
	return &LoginRepository{db: db}
}

func (r *LoginRepository) CreateEmail(ctx context.Context, login models.EmailLogin) error {
	const query = `
		INSERT INTO email_user_logins (user_id, email, password_hash)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.ExecContext(ctx, query, login.UserID, login.Email, string(login.PasswordHash)); err != nil {
		if apierr.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *LoginRepository) FindEmail(ctx context.Context, email string) (models.EmailLogin, error) {
	const query = `
		SELECT user_id, email, password_hash
		FROM email_user_logins WHERE email = $1
	`
	return r.scanEmail(r.db.QueryRowContext(ctx, query, email))
}

func (r *LoginRepository) EmailByUser(ctx context.Context, userID string) (models.EmailLogin, error) {
	const query = `
		SELECT user_id, email, password_hash
		FROM email_user_logins WHERE user_id = $1
	`
	return r.scanEmail(r.db.QueryRowContext(ctx, query, userID))
}

func (r *LoginRepository) scanEmail(row *sql.Row) (models.EmailLogin, error) {
	var login models.EmailLogin
	if err := row.Scan(&login.UserID, &login.Email, &login.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EmailLogin{}, ErrLoginNotFound
		}
		return models.EmailLogin{}, fmt.Errorf("db error: %w", err)
	}
	return login, nil
}

func (r *LoginRepository) CreateDiscord(ctx context.Context, login models.DiscordLogin) error {
	const query = `
		INSERT INTO discord_user_logins (user_id, client_id)
		VALUES ($1, $2)
	`

	if _, err := r.db.ExecContext(ctx, query, login.UserID, login.ClientID); err != nil {
		if apierr.IsUniqueViolation(err) {
			return ErrIdentityTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *LoginRepository) FindDiscord(ctx context.Context, clientID string) (models.DiscordLogin, error) {
	const query = `SELECT user_id, client_id FROM discord_user_logins WHERE client_id = $1`
	return r.scanDiscord(r.db.QueryRowContext(ctx, query, clientID))
}

func (r *LoginRepository) DiscordByUser(ctx context.Context, userID string) (models.DiscordLogin, error) {
	const query = `SELECT user_id, client_id FROM discord_user_logins WHERE user_id = $1`
	return r.scanDiscord(r.db.QueryRowContext(ctx, query, userID))
}

func (r *LoginRepository) scanDiscord(row *sql.Row) (models.DiscordLogin, error) {
	var login models.DiscordLogin
	if err := row.Scan(&login.UserID, &login.ClientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DiscordLogin{}, ErrLoginNotFound
		}
		return models.DiscordLogin{}, fmt.Errorf("db error: %w", err)
	}
	return login, nil
}
