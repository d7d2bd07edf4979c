package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 10, cfg.Points.Share)
	assert.Equal(t, 2, cfg.Points.Vote)
	assert.Equal(t, 5, cfg.Points.FiveStarBonus)
	assert.Equal(t, 5, cfg.VoteRateCapacity)
	assert.Equal(t, 30, cfg.VoteRatePerMinute)
}

func TestLoad_PointOverrides(t *testing.T) {
	t.Setenv("SHARE_POINTS", "20")
	t.Setenv("VOTE_POINTS", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Points.Share)
	assert.Equal(t, 1, cfg.Points.Vote)
	assert.Equal(t, 5, cfg.Points.FiveStarBonus)
}

func TestLoad_RejectsNonInteger(t *testing.T) {
	t.Setenv("SHARE_POINTS", "ten")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SHARE_POINTS")
}

func TestLoad_RejectsNegativePoints(t *testing.T) {
	t.Setenv("VOTE_POINTS", "-2")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative")
}

func TestLoad_RejectsZeroRateCapacity(t *testing.T) {
	t.Setenv("VOTE_RATE_CAPACITY", "0")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "VOTE_RATE_CAPACITY")
}
