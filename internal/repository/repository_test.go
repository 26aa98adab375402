package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toast/api/internal/models"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var sessionCols = []string{"id", "user_id", "ip", "platform", "user_agent", "created_at", "expire_at"}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users\s*\(username\)\s*VALUES\s*\(\$1\)\s*RETURNING\s+id,\s*username,\s*created_at,\s*updated_at\s*$`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at", "updated_at"}).AddRow("u1", "alice", now, now))

	user, err := NewUserRepository(db).Create(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepository(db).GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_GetByID_DBError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnError(errors.New("db down"))

	_, err := NewUserRepository(db).GetByID(context.Background(), "u1")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestLoginRepository_CreateEmail_Taken(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO email_user_logins`).
		WithArgs("u1", "a@x.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := NewLoginRepository(db).CreateEmail(context.Background(), models.EmailLogin{
		UserID: "u1", Email: "a@x.com", PasswordHash: []byte("hash"),
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRepository_FindEmail(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM email_user_logins WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "password_hash"}).AddRow("u1", "a@x.com", "hash"))
	mock.ExpectQuery(`FROM email_user_logins WHERE email = \$1`).
		WithArgs("b@x.com").
		WillReturnError(sql.ErrNoRows)

	repo := NewLoginRepository(db)
	login, err := repo.FindEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("hash"), login.PasswordHash)

	_, err = repo.FindEmail(context.Background(), "b@x.com")
	assert.ErrorIs(t, err, ErrLoginNotFound)
}

func TestLoginRepository_Discord(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO discord_user_logins`).
		WithArgs("u1", "123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM discord_user_logins WHERE client_id = \$1`).
		WithArgs("123").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "client_id"}).AddRow("u1", "123"))
	mock.ExpectQuery(`FROM discord_user_logins WHERE user_id = \$1`).
		WithArgs("u2").
		WillReturnError(sql.ErrNoRows)

	repo := NewLoginRepository(db)
	require.NoError(t, repo.CreateDiscord(context.Background(), models.DiscordLogin{UserID: "u1", ClientID: "123"}))

	login, err := repo.FindDiscord(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "u1", login.UserID)

	_, err = repo.DiscordByUser(context.Background(), "u2")
	assert.ErrorIs(t, err, ErrLoginNotFound)
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expire := created.Add(time.Hour)

	mock.ExpectExec(`INSERT INTO sessions \(id, user_id, ip, platform, user_agent, created_at, expire_at\)`).
		WithArgs("s1", "u1", "10.0.0.1/32", "web", "curl", created, expire).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM sessions\s+WHERE id = \$1`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(sessionCols).AddRow("s1", "u1", "10.0.0.1", "web", "curl", created, expire))
	mock.ExpectQuery(`FROM sessions\s+WHERE id = \$1`).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)

	repo := NewSessionRepository(db)
	require.NoError(t, repo.Create(context.Background(), models.Session{
		ID: "s1", UserID: "u1", IP: "10.0.0.1/32", Platform: models.PlatformWeb,
		UserAgent: "curl", CreatedAt: created, ExpireAt: expire,
	}))

	s, err := repo.GetByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.PlatformWeb, s.Platform)
	assert.Equal(t, expire, s.ExpireAt)

	_, err = repo.GetByID(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectExec(`DELETE FROM sessions WHERE user_id = \$1 AND expire_at <= \$2`).
		WithArgs("u1", now).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM sessions WHERE expire_at <= \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 7))

	repo := NewSessionRepository(db)
	n, err := repo.DeleteExpiredForUser(context.Background(), "u1", now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = repo.DeleteAllExpired(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
}

func TestSessionRepository_ListByUser(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM sessions\s+WHERE user_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow("s2", "u1", "::1", "desktop", "app", now, now).
			AddRow("s1", "u1", "10.0.0.1", "unknown", "", now, now))

	sessions, err := NewSessionRepository(db).ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].ID)
}

func TestTaskLabelRepository(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`(?s)INSERT INTO task_labels \(task_id, label_id\).*ON CONFLICT DO NOTHING`).
		WithArgs("t1", "l1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)DELETE FROM task_labels.*lists.user_id = \$3`).
		WithArgs("t1", "l1", "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)DELETE FROM task_labels.*lists.user_id = \$3`).
		WithArgs("t1", "l1", "mallory").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT task_id, label_id FROM task_labels WHERE task_id IN \(\$1, \$2\) ORDER BY label_id`).
		WithArgs("t1", "t2").
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "label_id"}).
			AddRow("t1", "l1").
			AddRow("t1", "l2"))

	repo := NewTaskLabelRepository(db)
	require.NoError(t, repo.Attach(context.Background(), "t1", "l1"))

	ok, err := repo.Detach(context.Background(), "alice", "t1", "l1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Detach(context.Background(), "mallory", "t1", "l1")
	require.NoError(t, err)
	assert.False(t, ok)

	idx, err := repo.LabelIDs(context.Background(), "t1", "t2")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2"}, idx["t1"])
	assert.Empty(t, idx["t2"])
	require.NoError(t, mock.ExpectationsWereMet())
}
