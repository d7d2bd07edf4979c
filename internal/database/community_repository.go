package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
)

// communityColumns must match the Scan order in scanCommunity.
const communityColumns = `id, owner_id, trial_start, trial_end, subscription_tier, subscription_active, member_count, created_at, updated_at`

// CommunityRepo implements domain.CommunityRepository backed by PostgreSQL.
type CommunityRepo struct {
	db    *sql.DB
	clock clockwork.Clock
}

func NewCommunityRepo(db *DB, clock clockwork.Clock) *CommunityRepo {
	return &CommunityRepo{db: db.DB, clock: clock}
}

func scanCommunity(row *sql.Row) (*domain.Community, error) {
	var c domain.Community
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.TrialStart, &c.TrialEnd,
		&c.SubscriptionTier, &c.SubscriptionActive, &c.MemberCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Ensure provisions the community on first contact and refreshes the
// mutable fields afterwards. The trial window is fixed at creation, so
// the conflict branch deliberately never touches trial_start/trial_end.
func (r *CommunityRepo) Ensure(ctx context.Context, communityID, ownerID string, memberCount int) (*domain.Community, error) {
	done := track("ensure_community")

	now := r.clock.Now()
	c, err := scanCommunity(r.db.QueryRowContext(ctx, `
		INSERT INTO communities (id, owner_id, trial_start, trial_end, subscription_tier, member_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'trial', $5, $3, $3)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			member_count = EXCLUDED.member_count,
			updated_at = NOW()
		RETURNING `+communityColumns+`
	`, communityID, ownerID, now, now.Add(domain.TrialDuration), memberCount))
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure community: %w", err)
	}
	return c, nil
}

func (r *CommunityRepo) Get(ctx context.Context, communityID string) (*domain.Community, error) {
	done := track("get_community")

	c, err := scanCommunity(r.db.QueryRowContext(ctx,
		`SELECT `+communityColumns+` FROM communities WHERE id = $1`, communityID))
	if errors.Is(err, sql.ErrNoRows) {
		err = domain.ErrCommunityNotFound
	}
	done(err)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CommunityRepo) ActivateSubscription(ctx context.Context, communityID, tier string) (*domain.Community, error) {
	done := track("activate_subscription")

	c, err := scanCommunity(r.db.QueryRowContext(ctx, `
		UPDATE communities
		SET subscription_active = TRUE, subscription_tier = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+communityColumns+`
	`, communityID, tier))
	if errors.Is(err, sql.ErrNoRows) {
		err = domain.ErrCommunityNotFound
	}
	done(err)
	if err != nil {
		return nil, err
	}
	return c, nil
}
