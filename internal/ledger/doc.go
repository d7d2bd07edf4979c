// Package ledger is the application layer: it orchestrates the access
// gate, content ingestion, vote processing, point awards, and leaderboard
// queries over the repository interfaces. All atomicity lives in the
// repositories; the service itself holds no locks.
package ledger
