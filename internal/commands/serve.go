package commands

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"toast/api/internal/cache"
	"toast/api/internal/database"
	"toast/api/internal/handlers"
	"toast/api/internal/identity"
	"toast/api/internal/jobs"
	"toast/api/internal/server"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}

func runServe(ctx context.Context) error {
	pool, db, err := database.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}

	if migrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, login throttle and sweeps disabled")
	}

	provider := identity.NewDiscord(cfg.Discord.UserURL, cfg.Discord.Timeout)
	handlerSet := handlers.NewHandlerSet(logger, db, redisClient, provider, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(redisClient, cfg.Redis.Stream, cfg.Jobs.SweepSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	return waitForShutdown(ctx, errCh, httpServer, scheduler, pool, db, redisClient)
}

func waitForShutdown(
	ctx context.Context,
	errCh <-chan error,
	srv *server.HTTPServer,
	scheduler *jobs.Scheduler,
	pool *pgxpool.Pool,
	db *sql.DB,
	redisClient *redis.Client,
) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error().Err(serveErr).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop(5 * time.Second)

	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("database close error")
	}
	pool.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
	return serveErr
}
