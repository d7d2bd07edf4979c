// Package database provides PostgreSQL connectivity and repositories.
//
// Repositories implement the domain interfaces CommunityRepository,
// InteractionRepository, and StatsRepository. Vote casting runs in a
// transaction with a row lock so the read-check-write on the vote
// mapping is atomic; stat deltas are applied in a single arithmetic
// UPDATE so concurrent awards never lose increments.
package database
