package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toast/api/internal/database/migrations"
)

func stubGoose(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestMigrate_RunsEmbeddedDir(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var gotDir string
	stubGoose(t, func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		assert.Same(t, db, got)
		gotDir = dir
		return nil
	})

	require.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}

func TestMigrate_WrapsError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	stubGoose(t, func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error { return boom })

	err = Migrate(context.Background(), db)
	assert.ErrorIs(t, err, boom)
}

func TestMigrations_AreEmbedded(t *testing.T) {
	entries, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var schema strings.Builder
	for _, name := range entries {
		data, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up", name)
		schema.Write(data)
	}

	all := schema.String()
	for _, table := range []string{"users", "email_user_logins", "discord_user_logins", "sessions", "lists", "tasks", "labels", "task_labels"} {
		assert.Contains(t, all, "CREATE TABLE "+table+" (")
	}
	assert.Contains(t, all, "parent_id   UUID REFERENCES lists (id) ON DELETE SET NULL")
	assert.Contains(t, all, "list_id     UUID NOT NULL REFERENCES lists (id) ON DELETE CASCADE")
}
