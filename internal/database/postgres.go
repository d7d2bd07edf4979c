package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/metrics"
)

// DB wraps the shared connection pool.
type DB struct {
	*sql.DB
}

func Connect(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Connection pool settings for production use
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) RunMigrations() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS communities (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			trial_start TIMESTAMPTZ NOT NULL,
			trial_end TIMESTAMPTZ NOT NULL,
			subscription_tier TEXT NOT NULL DEFAULT 'trial',
			subscription_active BOOLEAN NOT NULL DEFAULT FALSE,
			member_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			community_id TEXT NOT NULL,
			content_id TEXT NOT NULL,
			sharer_id TEXT NOT NULL,
			sharer_name TEXT NOT NULL DEFAULT '',
			votes JSONB NOT NULL DEFAULT '{}',
			total_votes INTEGER NOT NULL DEFAULT 0,
			average_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			five_star_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (community_id, content_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_community_id ON interactions(community_id)`,
		`CREATE TABLE IF NOT EXISTS user_stats (
			community_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			points INTEGER NOT NULL DEFAULT 0,
			videos_shared INTEGER NOT NULL DEFAULT 0,
			votes_cast INTEGER NOT NULL DEFAULT 0,
			five_stars_received INTEGER NOT NULL DEFAULT 0,
			rating_sum INTEGER NOT NULL DEFAULT 0,
			average_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (community_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_stats_community_id ON user_stats(community_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	slog.Info("database migrations completed")
	return nil
}

// track times a query for the database metrics. Domain sentinels are
// expected outcomes, not database failures, and are not counted as errors.
func track(query string) func(err error) {
	start := time.Now()
	return func(err error) {
		metrics.DBQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
		if err != nil && !isDomainOutcome(err) {
			metrics.DBErrorsTotal.WithLabelValues(query).Inc()
		}
	}
}

func isDomainOutcome(err error) bool {
	return errors.Is(err, domain.ErrCommunityNotFound) ||
		errors.Is(err, domain.ErrInteractionNotFound) ||
		errors.Is(err, domain.ErrDuplicateContent) ||
		errors.Is(err, domain.ErrAlreadyVoted) ||
		errors.Is(err, domain.ErrInvalidScore) ||
		errors.Is(err, domain.ErrStatRowNotFound)
}
