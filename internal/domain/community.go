package domain

import (
	"context"
	"time"
)

// TrialDuration is the free trial window granted on first contact with a
// community. The trial end is fixed at creation and never mutated except
// by an explicit subscription activation.
const TrialDuration = 10 * 24 * time.Hour

// Community is a tenant boundary (one served chat server) with its own
// trial/subscription state and its own leaderboard.
type Community struct {
	ID                 string
	OwnerID            string
	TrialStart         time.Time
	TrialEnd           time.Time
	SubscriptionTier   string
	SubscriptionActive bool
	// MemberCount is used only for pricing display, never by the gate.
	MemberCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the community is currently entitled to the
// feature set: an active subscription, or a trial that has not yet ended.
// Pure over the record and the supplied time; no side effects.
func (c *Community) IsActive(now time.Time) bool {
	return c.SubscriptionActive || now.Before(c.TrialEnd)
}

// CommunityRepository abstracts community persistence.
type CommunityRepository interface {
	// Ensure creates the community with a fresh trial window if it does not
	// exist, otherwise refreshes owner and member count only. The trial
	// window is never touched after creation.
	Ensure(ctx context.Context, communityID, ownerID string, memberCount int) (*Community, error)
	Get(ctx context.Context, communityID string) (*Community, error)
	// ActivateSubscription marks the subscription active with the given
	// tier label. This is the only mutation of subscription state.
	ActivateSubscription(ctx context.Context, communityID, tier string) (*Community, error)
}
