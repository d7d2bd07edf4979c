package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func trialCommunity(start time.Time) *Community {
	return &Community{
		ID:         "guild-1",
		OwnerID:    "owner-1",
		TrialStart: start,
		TrialEnd:   start.Add(TrialDuration),
	}
}

func TestIsActive_DuringTrial(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := trialCommunity(t0)

	assert.True(t, c.IsActive(t0))
	assert.True(t, c.IsActive(t0.Add(9*24*time.Hour)))
}

func TestIsActive_AfterTrialEnd(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := trialCommunity(t0)

	assert.False(t, c.IsActive(t0.Add(11*24*time.Hour)))
	// Exact boundary: trial end itself is no longer active.
	assert.False(t, c.IsActive(c.TrialEnd))
}

func TestIsActive_SubscriptionOverridesTrial(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := trialCommunity(t0)
	c.SubscriptionActive = true

	assert.True(t, c.IsActive(t0.Add(11*24*time.Hour)))
	assert.True(t, c.IsActive(t0.Add(365*24*time.Hour)))
}

func TestClampLeaderboardLimit(t *testing.T) {
	assert.Equal(t, DefaultLeaderboardLimit, ClampLeaderboardLimit(0))
	assert.Equal(t, MinLeaderboardLimit, ClampLeaderboardLimit(1))
	assert.Equal(t, 15, ClampLeaderboardLimit(15))
	assert.Equal(t, MaxLeaderboardLimit, ClampLeaderboardLimit(100))
}

func TestParseLeaderboardMetric(t *testing.T) {
	m, ok := ParseLeaderboardMetric("")
	assert.True(t, ok)
	assert.Equal(t, MetricFiveStars, m)

	m, ok = ParseLeaderboardMetric("points")
	assert.True(t, ok)
	assert.Equal(t, MetricPoints, m)

	_, ok = ParseLeaderboardMetric("bogus")
	assert.False(t, ok)
}

func TestStatDelta_Valid(t *testing.T) {
	assert.True(t, StatDelta{}.Valid())
	assert.True(t, StatDelta{Points: 10, VideosShared: 1}.Valid())
	assert.False(t, StatDelta{Points: -1}.Valid())
	assert.False(t, StatDelta{RatingSum: -5}.Valid())
}

func TestEngagementScore(t *testing.T) {
	assert.Equal(t, 0, (&UserStat{}).EngagementScore())
	assert.Equal(t, 40, (&UserStat{Points: 12, VideosShared: 3}).EngagementScore())
	// Points per video is scaled by ten and capped at 100.
	assert.Equal(t, 100, (&UserStat{Points: 50, VideosShared: 2}).EngagementScore())
}
