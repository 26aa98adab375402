package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"toast/api/internal/dbx"
	"toast/api/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db dbx.DBTX
}

func NewUserRepository(db dbx.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, username string) (models.User, error) {
	const query = `
		INSERT INTO users (username)
		VALUES ($1)
		RETURNING id, username, created_at, updated_at
	`

	var user models.User
	if err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `
		SELECT id, username, created_at, updated_at
		FROM users WHERE id = $1
	`

	var user models.User
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
