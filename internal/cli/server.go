package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/memory"
	pgstore "trivia-quiz-service/internal/infra/postgres"
	redisstore "trivia-quiz-service/internal/infra/redis"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("pinging redis: %w", err)
		}
		logger.Info("connected to redis", "addr", cfg.Redis.Addr)
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	idleTTL := config.TTLDuration(cfg.Quiz.IdleTTL, 30*time.Minute)
	// markers must outlive the sessions they announce
	if idleTTL > 0 && redisTTL < idleTTL {
		redisTTL = idleTTL
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pool.Close()
		logger.Info("connected to postgres")
	}

	var sessions app.SessionRepository = memory.NewSessionStore()
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	}

	var kv app.KVStore = memory.NewKVStore()
	switch {
	case pool != nil:
		kv = pgstore.NewKVStore(pool)
	case redisClient != nil:
		kv = redisstore.NewKVStore(redisClient, "quiz:")
	default:
		logger.Warn("no persistent store configured, high score lives in memory")
	}

	provider := newProvider(cfg)
	timing, tickInterval := quizTiming(cfg)
	service := app.NewQuizService(provider, sessions, app.NewHighScoreTracker(kv, cfg.HighScore.Key, logger), logger).
		WithTiming(timing, tickInterval)

	srv := transport.NewServer(":"+finalPort, transport.NewRouter(service, provider, logger), logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting quiz service", "port", finalPort)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down quiz service")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		pruneIdleSessions(gctx, service, idleTTL)
		return nil
	})

	return g.Wait()
}

// pruneIdleSessions discards abandoned sessions until ctx is done.
func pruneIdleSessions(ctx context.Context, service *app.QuizService, idleTTL time.Duration) {
	if idleTTL <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			service.PruneIdle(ctx, idleTTL)
		}
	}
}
