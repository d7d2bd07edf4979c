package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/metrics"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/pricing"
)

// RateLimiter gates vote throughput per voter. A nil limiter disables
// the check entirely.
type RateLimiter interface {
	Allow(ctx context.Context, communityID, voterID string) (bool, error)
}

// Service implements domain.LedgerService.
type Service struct {
	communities  domain.CommunityRepository
	interactions domain.InteractionRepository
	stats        domain.StatsRepository
	limiter      RateLimiter
	clock        clockwork.Clock
	points       domain.PointValues

	// ensureGroup collapses concurrent first-contact provisioning of the
	// same community into one repository call.
	ensureGroup singleflight.Group
}

func NewService(
	communities domain.CommunityRepository,
	interactions domain.InteractionRepository,
	stats domain.StatsRepository,
	limiter RateLimiter,
	clock clockwork.Clock,
	points domain.PointValues,
) *Service {
	return &Service{
		communities:  communities,
		interactions: interactions,
		stats:        stats,
		limiter:      limiter,
		clock:        clock,
		points:       points,
	}
}

var _ domain.LedgerService = (*Service)(nil)

// EnsureCommunity provisions the community with a fresh trial window on
// first contact and refreshes owner and member count afterwards.
func (s *Service) EnsureCommunity(ctx context.Context, communityID, ownerID string, memberCount int) (*domain.Community, error) {
	v, err, _ := s.ensureGroup.Do(communityID, func() (any, error) {
		_, getErr := s.communities.Get(ctx, communityID)
		isNew := errors.Is(getErr, domain.ErrCommunityNotFound)
		if getErr != nil && !isNew {
			return nil, getErr
		}

		c, err := s.communities.Ensure(ctx, communityID, ownerID, memberCount)
		if err != nil {
			return nil, err
		}
		if isNew {
			metrics.CommunityTrialsStarted.Inc()
			slog.Info("community provisioned with trial",
				"community_id", c.ID, "trial_end", c.TrialEnd)
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Community), nil
}

func (s *Service) GetCommunity(ctx context.Context, communityID string) (*domain.Community, error) {
	return s.communities.Get(ctx, communityID)
}

// ActivateSubscription flips the community to a paid subscription on the
// tier matching its current member count.
func (s *Service) ActivateSubscription(ctx context.Context, communityID string) (*domain.Community, error) {
	c, err := s.communities.Get(ctx, communityID)
	if err != nil {
		return nil, err
	}

	tier := pricing.TierFor(c.MemberCount)
	c, err = s.communities.ActivateSubscription(ctx, communityID, tier.Name)
	if err != nil {
		return nil, err
	}

	metrics.SubscriptionsActivated.WithLabelValues(tier.Key).Inc()
	slog.Info("subscription activated",
		"community_id", c.ID, "tier", tier.Name, "member_count", c.MemberCount)
	return c, nil
}

// ShareContent ingests one shared item. The access gate applies here and
// only here: an expired trial without a subscription blocks new shares,
// while voting and reads stay open. A resend of known content is a no-op
// success that awards nothing.
func (s *Service) ShareContent(ctx context.Context, communityID, contentID, sharerID, sharerName string) (*domain.ShareOutcome, error) {
	c, err := s.communities.Get(ctx, communityID)
	if err != nil {
		metrics.ShareProcessingTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if !c.IsActive(s.clock.Now()) {
		metrics.ShareProcessingTotal.WithLabelValues("gated").Inc()
		return nil, domain.ErrAccessGated
	}

	in, err := s.interactions.Create(ctx, communityID, contentID, sharerID, sharerName)
	if errors.Is(err, domain.ErrDuplicateContent) {
		existing, getErr := s.interactions.GetByContentID(ctx, communityID, contentID)
		if getErr != nil {
			metrics.ShareProcessingTotal.WithLabelValues("error").Inc()
			return nil, getErr
		}
		metrics.ShareProcessingTotal.WithLabelValues("duplicate").Inc()
		return &domain.ShareOutcome{Interaction: existing, Duplicate: true}, nil
	}
	if err != nil {
		metrics.ShareProcessingTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.award(ctx, communityID, sharerID, sharerName, domain.StatDelta{
		Points:       s.points.Share,
		VideosShared: 1,
	}); err != nil {
		metrics.ShareProcessingTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.ShareProcessingTotal.WithLabelValues("created").Inc()
	slog.Debug("content share recorded",
		"community_id", communityID, "content_id", contentID, "sharer_id", sharerID)
	return &domain.ShareOutcome{Interaction: in}, nil
}

// CastVote records one vote and settles both sides of the point economy:
// the voter earns for participating, the sharer earns the rating and any
// five-star bonus. Votes are never gated by trial state.
func (s *Service) CastVote(ctx context.Context, interactionID uuid.UUID, voterID, voterName string, score int) (*domain.VoteOutcome, error) {
	timer := s.clock.Now()
	defer func() {
		metrics.VoteProcessingDuration.Observe(s.clock.Since(timer).Seconds())
	}()

	in, err := s.interactions.Get(ctx, interactionID)
	if err != nil {
		metrics.VoteProcessingTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, in.CommunityID, voterID)
		if err != nil {
			// Redis being down must not block voting.
			slog.Warn("vote rate limit check failed, allowing vote", "error", err)
		} else if !allowed {
			metrics.VoteProcessingTotal.WithLabelValues("rate_limited").Inc()
			return nil, domain.ErrVoteRateLimited
		}
	}

	out, err := s.interactions.CastVote(ctx, interactionID, voterID, score)
	switch {
	case errors.Is(err, domain.ErrAlreadyVoted):
		metrics.VoteProcessingTotal.WithLabelValues("already_voted").Inc()
		return nil, err
	case errors.Is(err, domain.ErrInvalidScore):
		metrics.VoteProcessingTotal.WithLabelValues("invalid_score").Inc()
		return nil, err
	case err != nil:
		metrics.VoteProcessingTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.award(ctx, in.CommunityID, voterID, voterName, domain.StatDelta{
		Points:    s.points.Vote,
		VotesCast: 1,
	}); err != nil {
		metrics.VoteProcessingTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	sharerDelta := domain.StatDelta{RatingSum: score}
	if score == 5 {
		sharerDelta.FiveStarsReceived = 1
		sharerDelta.Points = s.points.FiveStarBonus
	}
	if err := s.award(ctx, in.CommunityID, out.SharerID, "", sharerDelta); err != nil {
		metrics.VoteProcessingTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.VoteProcessingTotal.WithLabelValues("applied").Inc()
	metrics.VoteScoreDistribution.WithLabelValues(strconv.Itoa(score)).Inc()
	slog.Debug("vote applied",
		"interaction_id", interactionID, "voter_id", voterID, "score", score,
		"total_votes", out.TotalVotes)
	return out, nil
}

func (s *Service) GetInteraction(ctx context.Context, interactionID uuid.UUID) (*domain.ContentInteraction, error) {
	return s.interactions.Get(ctx, interactionID)
}

func (s *Service) Leaderboard(ctx context.Context, communityID string, metric domain.LeaderboardMetric, limit int) ([]domain.UserStat, error) {
	limit = domain.ClampLeaderboardLimit(limit)
	metrics.LeaderboardQueriesTotal.WithLabelValues(string(metric)).Inc()
	return s.stats.Top(ctx, communityID, metric, limit)
}

func (s *Service) GetStats(ctx context.Context, communityID, userID string) (*domain.UserStat, error) {
	return s.stats.Get(ctx, communityID, userID)
}

// award ensures the stat row exists and applies the delta to it.
func (s *Service) award(ctx context.Context, communityID, userID, displayName string, delta domain.StatDelta) error {
	if err := s.stats.Ensure(ctx, communityID, userID, displayName); err != nil {
		return fmt.Errorf("failed to ensure stat row: %w", err)
	}
	if err := s.stats.ApplyDelta(ctx, communityID, userID, delta); err != nil {
		return fmt.Errorf("failed to apply stat delta: %w", err)
	}
	return nil
}
