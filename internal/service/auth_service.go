package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"toast/api/internal/apierr"
	"toast/api/internal/config"
	"toast/api/internal/crud"
	"toast/api/internal/dbx"
	"toast/api/internal/identity"
	"toast/api/internal/ids"
	"toast/api/internal/models"
	"toast/api/internal/repository"
	"toast/api/internal/security"
)

// unknownIP is stored when the remote address could not be parsed.
const unknownIP = "0.0.0.0/32"

const badCredentials = "Username or password is incorrect."

type AuthService struct {
	db       crud.DB
	identity identity.Provider
	throttle *LoginThrottle
	cfg      *config.AppConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	db crud.DB,
	provider identity.Provider,
	throttle *LoginThrottle,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		db:       db,
		identity: provider,
		throttle: throttle,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type LoginEmailInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginDiscordInput struct {
	AccessToken string `json:"access_token" binding:"required"`
}

type LoginResult struct {
	UserID       string `json:"user_id"`
	SessionToken string `json:"session_token"`
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Register creates the user and its email credential together.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	email := normalizeEmail(input.Email)

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return apierr.Internal("Failed to register.", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := repository.NewUserRepository(tx).Create(ctx, strings.TrimSpace(input.Username))
		if err != nil {
			return err
		}
		return repository.NewLoginRepository(tx).CreateEmail(ctx, models.EmailLogin{
			UserID:       user.ID,
			Email:        email,
			PasswordHash: passwordHash,
		})
	})
	if errors.Is(err, repository.ErrEmailTaken) {
		return apierr.BadRequest("Email is already taken.")
	}
	if err != nil {
		return apierr.Internal("Failed to register.", err)
	}
	return nil
}

func (s *AuthService) LoginEmail(ctx context.Context, input LoginEmailInput, client security.ClientInfo) (LoginResult, error) {
	if s.throttle.Blocked(ctx, client.IP) {
		return LoginResult{}, apierr.TooManyRequests("Too many failed login attempts.")
	}

	login, err := repository.NewLoginRepository(s.db).FindEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrLoginNotFound) {
			s.throttle.Fail(ctx, client.IP)
			return LoginResult{}, apierr.Unauthorized(badCredentials)
		}
		return LoginResult{}, apierr.Internal("Failed to log in.", err)
	}

	ok, err := security.VerifyPassword(input.Password, login.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", login.UserID).Msg("stored password hash unreadable")
	}
	if err != nil || !ok {
		s.throttle.Fail(ctx, client.IP)
		return LoginResult{}, apierr.Unauthorized(badCredentials)
	}
	s.throttle.Reset(ctx, client.IP)

	token, err := s.createSession(ctx, s.db, login.UserID, client)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{UserID: login.UserID, SessionToken: token}, nil
}

// LoginDiscord exchanges a Discord access token for a session, creating the
// user on first login.
func (s *AuthService) LoginDiscord(ctx context.Context, input LoginDiscordInput, client security.ClientInfo) (LoginResult, error) {
	ident, err := s.identity.Lookup(ctx, input.AccessToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return LoginResult{}, apierr.Unauthorized("Invalid access token.")
		}
		return LoginResult{}, apierr.Internal("Failed to reach identity provider.", err)
	}

	var result LoginResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		logins := repository.NewLoginRepository(tx)

		login, err := logins.FindDiscord(ctx, ident.ID)
		switch {
		case errors.Is(err, repository.ErrLoginNotFound):
			user, err := repository.NewUserRepository(tx).Create(ctx, ident.Username)
			if err != nil {
				return err
			}
			login = models.DiscordLogin{UserID: user.ID, ClientID: ident.ID}
			if err := logins.CreateDiscord(ctx, login); err != nil {
				return err
			}
		case err != nil:
			return err
		}

		token, err := s.createSession(ctx, tx, login.UserID, client)
		if err != nil {
			return err
		}
		result = LoginResult{UserID: login.UserID, SessionToken: token}
		return nil
	})
	if err != nil {
		return LoginResult{}, apierr.FromStorage(err, "Failed to log in.")
	}
	return result, nil
}

func (s *AuthService) createSession(ctx context.Context, q dbx.DBTX, userID string, client security.ClientInfo) (string, error) {
	ip := client.IP
	if ip == "" {
		ip = unknownIP
	}
	platform := client.Platform
	if platform == "" {
		platform = models.PlatformUnknown
	}

	now := s.now().UTC()
	session := models.Session{
		ID:        ids.NewSessionID(),
		UserID:    userID,
		IP:        ip,
		Platform:  platform,
		UserAgent: client.UserAgent,
		CreatedAt: now,
		ExpireAt:  now.Add(s.cfg.Security.SessionTTL),
	}

	if err := repository.NewSessionRepository(q).Create(ctx, session); err != nil {
		return "", apierr.Internal("Failed to create session.", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Str("platform", string(platform)).
		Msg("session created")
	return session.ID, nil
}

type EmailLoginView struct {
	Email string `json:"email"`
}

type DiscordLoginView struct {
	ClientID string `json:"client_id"`
}

type Profile struct {
	ID           string            `json:"id"`
	Username     string            `json:"username"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	EmailLogin   *EmailLoginView   `json:"email_login"`
	DiscordLogin *DiscordLoginView `json:"discord_login"`
	Sessions     []models.Session  `json:"sessions"`
}

// Profile gathers the caller's credentials and sessions.
func (s *AuthService) Profile(ctx context.Context, user models.User) (Profile, error) {
	profile := Profile{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	logins := repository.NewLoginRepository(s.db)

	email, err := logins.EmailByUser(ctx, user.ID)
	switch {
	case err == nil:
		profile.EmailLogin = &EmailLoginView{Email: email.Email}
	case !errors.Is(err, repository.ErrLoginNotFound):
		return Profile{}, apierr.Internal("Error fetching user.", err)
	}

	discord, err := logins.DiscordByUser(ctx, user.ID)
	switch {
	case err == nil:
		profile.DiscordLogin = &DiscordLoginView{ClientID: discord.ClientID}
	case !errors.Is(err, repository.ErrLoginNotFound):
		return Profile{}, apierr.Internal("Error fetching user.", err)
	}

	profile.Sessions, err = repository.NewSessionRepository(s.db).ListByUser(ctx, user.ID)
	if err != nil {
		return Profile{}, apierr.Internal("Error fetching user.", err)
	}
	return profile, nil
}
