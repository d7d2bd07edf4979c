package domain

import "context"

// UserStat is the aggregate engagement record for one (community, user)
// pair. Points only ever grow; AverageRating always equals
// RatingSum / max(VideosShared, 1) after every mutation.
type UserStat struct {
	CommunityID string
	UserID      string
	// DisplayName is last-seen, informational only.
	DisplayName       string
	Points            int
	VideosShared      int
	VotesCast         int
	FiveStarsReceived int
	// RatingSum is the cumulative sum of all scores received as a sharer.
	RatingSum     int
	AverageRating float64
}

// StatDelta is a set of non-negative increments applied atomically to one
// UserStat row.
type StatDelta struct {
	Points            int
	VideosShared      int
	VotesCast         int
	FiveStarsReceived int
	RatingSum         int
}

// Valid reports whether all deltas are non-negative. Points monotonicity
// depends on this: no operation ever subtracts.
func (d StatDelta) Valid() bool {
	return d.Points >= 0 && d.VideosShared >= 0 && d.VotesCast >= 0 &&
		d.FiveStarsReceived >= 0 && d.RatingSum >= 0
}

// IsZero reports whether the delta changes nothing.
func (d StatDelta) IsZero() bool {
	return d == StatDelta{}
}

// EngagementScore is a display metric: points per shared video scaled to
// a 0-100 range.
func (s *UserStat) EngagementScore() int {
	score := s.Points * 10 / max(s.VideosShared, 1)
	return min(score, 100)
}

// LeaderboardMetric selects the ranking dimension for Top queries.
type LeaderboardMetric string

const (
	MetricFiveStars     LeaderboardMetric = "five_stars"
	MetricAverageRating LeaderboardMetric = "avg_rating"
	MetricVideosShared  LeaderboardMetric = "videos_shared"
	MetricPoints        LeaderboardMetric = "points"
)

// ParseLeaderboardMetric maps the wire value to a metric, defaulting to
// five stars for an empty string (matching the command default).
func ParseLeaderboardMetric(s string) (LeaderboardMetric, bool) {
	switch LeaderboardMetric(s) {
	case "":
		return MetricFiveStars, true
	case MetricFiveStars, MetricAverageRating, MetricVideosShared, MetricPoints:
		return LeaderboardMetric(s), true
	default:
		return "", false
	}
}

// Leaderboard limit bounds.
const (
	MinLeaderboardLimit     = 5
	MaxLeaderboardLimit     = 25
	DefaultLeaderboardLimit = 10
)

// ClampLeaderboardLimit bounds limit to the sane range, substituting the
// default for a zero value.
func ClampLeaderboardLimit(limit int) int {
	if limit == 0 {
		return DefaultLeaderboardLimit
	}
	if limit < MinLeaderboardLimit {
		return MinLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

// StatsRepository abstracts aggregate stat persistence. ApplyDelta must be
// atomic with respect to concurrent ApplyDelta calls on the same row;
// different rows never contend. The derived average is recomputed inside
// the same atomic unit whenever RatingSum or VideosShared changes.
type StatsRepository interface {
	// Ensure creates a zeroed row if absent, otherwise refreshes the
	// display name only. Idempotent.
	Ensure(ctx context.Context, communityID, userID, displayName string) error
	ApplyDelta(ctx context.Context, communityID, userID string, delta StatDelta) error
	// Get returns a zero-value row when none exists; a user with no
	// interactions is well-defined, not an error.
	Get(ctx context.Context, communityID, userID string) (*UserStat, error)
	// Top returns up to limit rows ranked by metric, excluding rows with
	// VideosShared == 0. Empty result is an empty slice, never an error.
	Top(ctx context.Context, communityID string, metric LeaderboardMetric, limit int) ([]UserStat, error)
}
