package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// TaskSessionSweep asks a worker to delete every expired session.
const TaskSessionSweep = "session_sweep"

type Scheduler struct {
	cron     *cron.Cron
	queue    *redis.Client
	stream   string
	schedule string
	log      zerolog.Logger
}

func NewScheduler(queue *redis.Client, stream, schedule string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		queue:    queue,
		stream:   stream,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueSweep); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits up to timeout for running jobs to finish.
func (s *Scheduler) Stop(timeout time.Duration) {
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(timeout):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueSweep() {
	if err := s.enqueueTask(map[string]any{
		"type": TaskSessionSweep,
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue session sweep failed")
	}
}

func (s *Scheduler) enqueueTask(payload map[string]any) error {
	if s.queue == nil {
		return nil
	}
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: s.stream,
		Values: payload,
	}).Result()
	return err
}
