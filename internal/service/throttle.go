package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LoginThrottle counts failed logins per client IP in redis. Redis errors
// never block a login. A nil client disables the throttle.
type LoginThrottle struct {
	client *redis.Client
	limit  int
	window time.Duration
	log    zerolog.Logger
}

func NewLoginThrottle(client *redis.Client, limit int, window time.Duration, log zerolog.Logger) *LoginThrottle {
	return &LoginThrottle{client: client, limit: limit, window: window, log: log}
}

func throttleKey(ip string) string {
	return "login:fail:" + ip
}

// Blocked reports whether ip has used up its failed attempts for the window.
func (t *LoginThrottle) Blocked(ctx context.Context, ip string) bool {
	if t == nil || t.client == nil || t.limit <= 0 {
		return false
	}

	raw, err := t.client.Get(ctx, throttleKey(ip)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			t.log.Warn().Err(err).Str("ip", ip).Msg("login throttle lookup failed")
		}
		return false
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}
	return count >= t.limit
}

func (t *LoginThrottle) Fail(ctx context.Context, ip string) {
	if t == nil || t.client == nil {
		return
	}

	key := throttleKey(ip)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		t.log.Warn().Err(err).Str("ip", ip).Msg("login throttle increment failed")
		return
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			t.log.Warn().Err(err).Str("ip", ip).Msg("login throttle expire failed")
		}
	}
}

func (t *LoginThrottle) Reset(ctx context.Context, ip string) {
	if t == nil || t.client == nil {
		return
	}
	if err := t.client.Del(ctx, throttleKey(ip)).Err(); err != nil {
		t.log.Warn().Err(err).Str("ip", ip).Msg("login throttle reset failed")
	}
}
