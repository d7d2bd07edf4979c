package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		members int
		key     string
	}{
		{0, "small"},
		{500, "small"},
		{1000, "small"},
		{1001, "medium"},
		{10000, "medium"},
		{10001, "large"},
		{250000, "large"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.key, TierFor(tt.members).Key, "members=%d", tt.members)
	}
}

func TestTierFor_Prices(t *testing.T) {
	assert.InDelta(t, 7.99, TierFor(100).MonthlyPrice, 0.001)
	assert.InDelta(t, 29.99, TierFor(5000).MonthlyPrice, 0.001)
	assert.InDelta(t, 59.99, TierFor(50000).MonthlyPrice, 0.001)
}
