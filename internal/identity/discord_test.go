package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"80351110224678912","username":"nelly","discriminator":"1337"}`))
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, time.Second)

	id, err := d.Lookup(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "80351110224678912", Username: "nelly"}, id)

	_, err = d.Lookup(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDiscordLookup_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewDiscord(srv.URL, time.Second).Lookup(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestDiscordLookup_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"username":"nobody"}`))
	}))
	defer srv.Close()

	_, err := NewDiscord(srv.URL, time.Second).Lookup(context.Background(), "x")
	assert.Error(t, err)
}
