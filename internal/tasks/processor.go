package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"toast/api/internal/jobs"
)

type SessionSweeper interface {
	DeleteAllExpired(ctx context.Context, now time.Time) (int64, error)
}

type Processor struct {
	logger   zerolog.Logger
	sessions SessionSweeper
	now      func() time.Time
}

type TaskPayload struct {
	Type string `json:"type"`
}

func NewProcessor(logger zerolog.Logger, sessions SessionSweeper) *Processor {
	return &Processor{
		logger:   logger,
		sessions: sessions,
		now:      time.Now,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case jobs.TaskSessionSweep:
		return p.handleSessionSweep(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) handleSessionSweep(ctx context.Context) error {
	n, err := p.sessions.DeleteAllExpired(ctx, p.now().UTC())
	if err != nil {
		return fmt.Errorf("sweep sessions: %w", err)
	}
	p.logger.Info().Int64("deleted", n).Msg("expired sessions swept")
	return nil
}
