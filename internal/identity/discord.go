// Package identity resolves external access tokens to provider identities.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrInvalidToken = errors.New("identity provider rejected token")

type Identity struct {
	ID       string
	Username string
}

type Provider interface {
	Lookup(ctx context.Context, accessToken string) (Identity, error)
}

type Discord struct {
	client  *http.Client
	userURL string
}

func NewDiscord(userURL string, timeout time.Duration) *Discord {
	return &Discord{
		client:  &http.Client{Timeout: timeout},
		userURL: userURL,
	}
}

type discordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (d *Discord) Lookup(ctx context.Context, accessToken string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.userURL, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("fetch identity: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Identity{}, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		return Identity{}, fmt.Errorf("fetch identity: unexpected status %d", resp.StatusCode)
	}

	var user discordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	if user.ID == "" {
		return Identity{}, fmt.Errorf("decode identity: missing id")
	}

	return Identity{ID: user.ID, Username: user.Username}, nil
}
