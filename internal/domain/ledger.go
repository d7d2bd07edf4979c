package domain

import (
	"context"

	"github.com/google/uuid"
)

// ShareOutcome is the result of ingesting a shared content item.
// Duplicate marks a resend of an already-known item: the existing
// interaction is returned and no points are awarded (no-op success from
// the sharer's perspective).
type ShareOutcome struct {
	Interaction *ContentInteraction
	Duplicate   bool
}

// LedgerService is the application layer contract — handlers route all
// engagement operations through here.
type LedgerService interface {
	EnsureCommunity(ctx context.Context, communityID, ownerID string, memberCount int) (*Community, error)
	GetCommunity(ctx context.Context, communityID string) (*Community, error)
	ActivateSubscription(ctx context.Context, communityID string) (*Community, error)

	ShareContent(ctx context.Context, communityID, contentID, sharerID, sharerName string) (*ShareOutcome, error)
	CastVote(ctx context.Context, interactionID uuid.UUID, voterID, voterName string, score int) (*VoteOutcome, error)
	GetInteraction(ctx context.Context, interactionID uuid.UUID) (*ContentInteraction, error)

	Leaderboard(ctx context.Context, communityID string, metric LeaderboardMetric, limit int) ([]UserStat, error)
	GetStats(ctx context.Context, communityID, userID string) (*UserStat, error)
}
