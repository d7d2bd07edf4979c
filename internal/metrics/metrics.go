package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vote Processing Metrics
var (
	// VoteProcessingTotal tracks votes processed by result
	VoteProcessingTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vote_processing_total",
			Help: "Total votes processed by result (applied/already_voted/not_found/invalid_score/rate_limited/error)",
		},
		[]string{"result"},
	)

	// VoteProcessingDuration tracks vote processing latency
	VoteProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vote_processing_duration_seconds",
			Help:    "Vote processing duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		},
	)

	// VoteScoreDistribution tracks applied votes by score
	VoteScoreDistribution = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vote_scores_total",
			Help: "Total applied votes by score (1-5)",
		},
		[]string{"score"},
	)
)

// Share Processing Metrics
var (
	// ShareProcessingTotal tracks content shares by result
	ShareProcessingTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_processing_total",
			Help: "Total content shares processed by result (created/duplicate/gated/error)",
		},
		[]string{"result"},
	)

	// CommunityTrialsStarted tracks trial windows opened on first contact
	CommunityTrialsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "community_trials_started_total",
			Help: "Total communities provisioned with a fresh trial window",
		},
	)

	// SubscriptionsActivated tracks subscription activations by tier
	SubscriptionsActivated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_activated_total",
			Help: "Total subscription activations by tier",
		},
		[]string{"tier"},
	)
)

// Leaderboard Metrics
var (
	// LeaderboardQueriesTotal tracks leaderboard reads by metric
	LeaderboardQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_queries_total",
			Help: "Total leaderboard queries by ranking metric",
		},
		[]string{"metric"},
	)
)

// Database Metrics
var (
	// DBQueryDuration tracks database query duration by query name
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBErrorsTotal tracks database errors by query name
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total database errors by query",
		},
		[]string{"query"},
	)
)

// Rate Limiter Metrics
var (
	// VoteRateLimitChecks tracks rate limit checks by outcome
	VoteRateLimitChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vote_rate_limit_checks_total",
			Help: "Total vote rate limit checks by outcome (allowed/limited/error)",
		},
		[]string{"outcome"},
	)
)
