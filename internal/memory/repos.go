package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
)

// One repo type per aggregate over the shared store, mirroring the
// persistence layer's layout so wiring is identical in both modes.

// CommunityRepo implements domain.CommunityRepository.
type CommunityRepo struct{ s *Store }

func NewCommunityRepo(s *Store) *CommunityRepo { return &CommunityRepo{s: s} }

func (r *CommunityRepo) Ensure(ctx context.Context, communityID, ownerID string, memberCount int) (*domain.Community, error) {
	return r.s.Ensure(ctx, communityID, ownerID, memberCount)
}

func (r *CommunityRepo) Get(ctx context.Context, communityID string) (*domain.Community, error) {
	return r.s.Get(ctx, communityID)
}

func (r *CommunityRepo) ActivateSubscription(ctx context.Context, communityID, tier string) (*domain.Community, error) {
	return r.s.ActivateSubscription(ctx, communityID, tier)
}

// InteractionRepo implements domain.InteractionRepository.
type InteractionRepo struct{ s *Store }

func NewInteractionRepo(s *Store) *InteractionRepo { return &InteractionRepo{s: s} }

func (r *InteractionRepo) Create(ctx context.Context, communityID, contentID, sharerID, sharerName string) (*domain.ContentInteraction, error) {
	return r.s.Create(ctx, communityID, contentID, sharerID, sharerName)
}

func (r *InteractionRepo) Get(ctx context.Context, id uuid.UUID) (*domain.ContentInteraction, error) {
	return r.s.GetInteraction(ctx, id)
}

func (r *InteractionRepo) GetByContentID(ctx context.Context, communityID, contentID string) (*domain.ContentInteraction, error) {
	return r.s.GetByContentID(ctx, communityID, contentID)
}

func (r *InteractionRepo) CastVote(ctx context.Context, id uuid.UUID, voterID string, score int) (*domain.VoteOutcome, error) {
	return r.s.CastVote(ctx, id, voterID, score)
}

// StatsRepo implements domain.StatsRepository.
type StatsRepo struct{ s *Store }

func NewStatsRepo(s *Store) *StatsRepo { return &StatsRepo{s: s} }

func (r *StatsRepo) Ensure(ctx context.Context, communityID, userID, displayName string) error {
	return r.s.EnsureStats(ctx, communityID, userID, displayName)
}

func (r *StatsRepo) ApplyDelta(ctx context.Context, communityID, userID string, delta domain.StatDelta) error {
	return r.s.ApplyDelta(ctx, communityID, userID, delta)
}

func (r *StatsRepo) Get(ctx context.Context, communityID, userID string) (*domain.UserStat, error) {
	return r.s.GetStats(ctx, communityID, userID)
}

func (r *StatsRepo) Top(ctx context.Context, communityID string, metric domain.LeaderboardMetric, limit int) ([]domain.UserStat, error) {
	return r.s.Top(ctx, communityID, metric, limit)
}
