package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/config"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/database"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/ledger"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/logging"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/memory"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/redis"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/server"
)

type repositories struct {
	communities  domain.CommunityRepository
	interactions domain.InteractionRepository
	stats        domain.StatsRepository
	health       *database.DB // nil in memory mode
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRepositories(cfg *config.Config, clock clockwork.Clock) repositories {
	if cfg.DatabaseURL == "" {
		slog.Info("No DATABASE_URL set, using in-memory store")
		store := memory.NewStore(clock)
		return repositories{
			communities:  memory.NewCommunityRepo(store),
			interactions: memory.NewInteractionRepo(store),
			stats:        memory.NewStatsRepo(store),
		}
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return repositories{
		communities:  database.NewCommunityRepo(db, clock),
		interactions: database.NewInteractionRepo(db),
		stats:        database.NewStatsRepo(db),
		health:       db,
	}
}

func setupRateLimiter(cfg *config.Config, clock clockwork.Clock) (*redis.VoteRateLimiter, *redis.Client) {
	if cfg.RedisURL == "" {
		slog.Info("No REDIS_URL set, vote rate limiting disabled")
		return nil, nil
	}

	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Failed to ping Redis", "error", err)
		os.Exit(1)
	}

	return redis.NewVoteRateLimiter(client, clock, cfg.VoteRateCapacity, cfg.VoteRatePerMinute), client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

// redisHealth adapts the Redis client to the server health check surface.
type redisHealth struct{ client *redis.Client }

func (r redisHealth) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx)
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	repos := setupRepositories(cfg, clock)
	if repos.health != nil {
		defer repos.health.Close()
	}

	limiter, redisClient := setupRateLimiter(cfg, clock)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Avoid a typed-nil limiter hiding behind the interface.
	var limiterIface ledger.RateLimiter
	if limiter != nil {
		limiterIface = limiter
	}

	svc := ledger.NewService(
		repos.communities,
		repos.interactions,
		repos.stats,
		limiterIface,
		clock,
		cfg.Points,
	)

	var dbHealth, redisHealthCheck interface {
		HealthCheck(ctx context.Context) error
	}
	if repos.health != nil {
		dbHealth = repos.health
	}
	if redisClient != nil {
		redisHealthCheck = redisHealth{client: redisClient}
	}

	srv := server.NewServer(cfg, svc, dbHealth, redisHealthCheck)
	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
