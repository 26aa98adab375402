package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"toast/api/internal/apierr"
	"toast/api/internal/dbx"
	"toast/api/internal/ids"
	"toast/api/internal/models"
	"toast/api/internal/repository"
)

// Principal is the authenticated caller.
type Principal struct {
	User    models.User
	Session models.Session
}

// SessionGuard resolves bearer session tokens. Every successful lookup first
// deletes the owner's expired sessions.
type SessionGuard struct {
	db  dbx.DBTX
	log zerolog.Logger
	now func() time.Time
}

func NewSessionGuard(db dbx.DBTX, log zerolog.Logger) *SessionGuard {
	return &SessionGuard{db: db, log: log, now: time.Now}
}

func bearerToken(authorization string) (string, error) {
	if strings.TrimSpace(authorization) == "" {
		return "", apierr.Unauthorized("Missing authorization header.")
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || !ids.ValidUUID(token) {
		return "", apierr.Unauthorized("Bearer session token must be valid UUID.")
	}
	return strings.ToLower(token), nil
}

func (g *SessionGuard) Authenticate(ctx context.Context, authorization string) (Principal, error) {
	token, err := bearerToken(authorization)
	if err != nil {
		return Principal{}, err
	}

	sessions := repository.NewSessionRepository(g.db)
	session, err := sessions.GetByID(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return Principal{}, apierr.Unauthorized("Invalid session token.")
		}
		return Principal{}, apierr.Internal("Error fetching session.", err)
	}

	now := g.now().UTC()
	pruned, err := sessions.DeleteExpiredForUser(ctx, session.UserID, now)
	if err != nil {
		return Principal{}, apierr.Internal("Pruning expired sessions failed.", err)
	}
	if pruned > 0 {
		g.log.Debug().Str("user_id", session.UserID).Int64("pruned", pruned).Msg("expired sessions pruned")
	}

	if session.Expired(now) {
		return Principal{}, apierr.Unauthorized("Invalid session token.")
	}

	user, err := repository.NewUserRepository(g.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Principal{}, apierr.Internal("Session points to invalid user.", err)
		}
		return Principal{}, apierr.Internal("Error fetching user.", err)
	}

	return Principal{User: user, Session: session}, nil
}
