package models

import "time"

type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type EmailLogin struct {
	UserID       string
	Email        string
	PasswordHash []byte
}

type DiscordLogin struct {
	UserID   string
	ClientID string
}

type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformDesktop Platform = "desktop"
	PlatformMobile  Platform = "mobile"
	PlatformUnknown Platform = "unknown"
)

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IP        string    `json:"ip"`
	Platform  Platform  `json:"platform"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpireAt  time.Time `json:"expire_at"`
}

// Expired reports whether the session is unusable at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpireAt)
}
