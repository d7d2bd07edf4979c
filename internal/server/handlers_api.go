package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/contentid"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
	apperrors "github.com/Quantum-Botworks/tik-dock-bot/internal/errors"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/pricing"
)

type communityResponse struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"owner_id"`
	TrialStart         time.Time `json:"trial_start"`
	TrialEnd           time.Time `json:"trial_end"`
	SubscriptionTier   string    `json:"subscription_tier"`
	SubscriptionActive bool      `json:"subscription_active"`
	MemberCount        int       `json:"member_count"`
	PricingTier        string    `json:"pricing_tier"`
	MonthlyPrice       float64   `json:"monthly_price"`
}

func toCommunityResponse(c *domain.Community) communityResponse {
	tier := pricing.TierFor(c.MemberCount)
	return communityResponse{
		ID:                 c.ID,
		OwnerID:            c.OwnerID,
		TrialStart:         c.TrialStart,
		TrialEnd:           c.TrialEnd,
		SubscriptionTier:   c.SubscriptionTier,
		SubscriptionActive: c.SubscriptionActive,
		MemberCount:        c.MemberCount,
		PricingTier:        tier.Name,
		MonthlyPrice:       tier.MonthlyPrice,
	}
}

type interactionResponse struct {
	ID            uuid.UUID `json:"id"`
	CommunityID   string    `json:"community_id"`
	ContentID     string    `json:"content_id"`
	SharerID      string    `json:"sharer_id"`
	SharerName    string    `json:"sharer_name"`
	TotalVotes    int       `json:"total_votes"`
	AverageRating float64   `json:"average_rating"`
	FiveStarCount int       `json:"five_star_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func toInteractionResponse(in *domain.ContentInteraction) interactionResponse {
	return interactionResponse{
		ID:            in.ID,
		CommunityID:   in.CommunityID,
		ContentID:     in.ContentID,
		SharerID:      in.SharerID,
		SharerName:    in.SharerName,
		TotalVotes:    in.TotalVotes,
		AverageRating: in.AverageRating,
		FiveStarCount: in.FiveStarCount,
		CreatedAt:     in.CreatedAt,
	}
}

type statResponse struct {
	CommunityID       string  `json:"community_id"`
	UserID            string  `json:"user_id"`
	DisplayName       string  `json:"display_name,omitempty"`
	Points            int     `json:"points"`
	VideosShared      int     `json:"videos_shared"`
	VotesCast         int     `json:"votes_cast"`
	FiveStarsReceived int     `json:"five_stars_received"`
	AverageRating     float64 `json:"average_rating"`
	EngagementScore   int     `json:"engagement_score"`
}

func toStatResponse(s *domain.UserStat) statResponse {
	return statResponse{
		CommunityID:       s.CommunityID,
		UserID:            s.UserID,
		DisplayName:       s.DisplayName,
		Points:            s.Points,
		VideosShared:      s.VideosShared,
		VotesCast:         s.VotesCast,
		FiveStarsReceived: s.FiveStarsReceived,
		AverageRating:     s.AverageRating,
		EngagementScore:   s.EngagementScore(),
	}
}

type ensureCommunityRequest struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	MemberCount int    `json:"member_count"`
}

func (s *Server) handleEnsureCommunity(c echo.Context) error {
	var req ensureCommunityRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.ID == "" || req.OwnerID == "" {
		return apperrors.ValidationError("id and owner_id are required")
	}
	if req.MemberCount < 0 {
		return apperrors.ValidationError("member_count must be non-negative")
	}

	community, err := s.ledger.EnsureCommunity(c.Request().Context(), req.ID, req.OwnerID, req.MemberCount)
	if err != nil {
		return apperrors.InternalError("failed to ensure community", err).WithField("community_id", req.ID)
	}
	return c.JSON(http.StatusOK, toCommunityResponse(community))
}

func (s *Server) handleGetCommunity(c echo.Context) error {
	communityID := c.Param("id")

	community, err := s.ledger.GetCommunity(c.Request().Context(), communityID)
	if errors.Is(err, domain.ErrCommunityNotFound) {
		return apperrors.NotFoundError("community not found").WithField("community_id", communityID)
	}
	if err != nil {
		return apperrors.InternalError("failed to load community", err).WithField("community_id", communityID)
	}
	return c.JSON(http.StatusOK, toCommunityResponse(community))
}

func (s *Server) handleActivateSubscription(c echo.Context) error {
	communityID := c.Param("id")

	community, err := s.ledger.ActivateSubscription(c.Request().Context(), communityID)
	if errors.Is(err, domain.ErrCommunityNotFound) {
		return apperrors.NotFoundError("community not found").WithField("community_id", communityID)
	}
	if err != nil {
		return apperrors.InternalError("failed to activate subscription", err).WithField("community_id", communityID)
	}
	return c.JSON(http.StatusOK, toCommunityResponse(community))
}

type shareContentRequest struct {
	URL        string `json:"url"`
	ContentID  string `json:"content_id"`
	SharerID   string `json:"sharer_id"`
	SharerName string `json:"sharer_name"`
}

type shareContentResponse struct {
	Interaction interactionResponse `json:"interaction"`
	Duplicate   bool                `json:"duplicate"`
}

func (s *Server) handleShareContent(c echo.Context) error {
	communityID := c.Param("id")

	var req shareContentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.SharerID == "" {
		return apperrors.ValidationError("sharer_id is required")
	}

	// Callers either pass a video URL (the ID is derived from it) or a
	// pre-derived content ID directly.
	contentID := req.ContentID
	if contentID == "" {
		if !contentid.IsVideoURL(req.URL) {
			return apperrors.ValidationError("url is not a recognized video link").WithField("url", req.URL)
		}
		contentID = contentid.FromURL(req.URL)
	}

	out, err := s.ledger.ShareContent(c.Request().Context(), communityID, contentID, req.SharerID, req.SharerName)
	switch {
	case errors.Is(err, domain.ErrCommunityNotFound):
		return apperrors.NotFoundError("community not found").WithField("community_id", communityID)
	case errors.Is(err, domain.ErrAccessGated):
		return apperrors.ConflictError("trial expired and no active subscription").
			WithField("community_id", communityID)
	case err != nil:
		return apperrors.InternalError("failed to record share", err).WithField("community_id", communityID)
	}

	status := http.StatusCreated
	if out.Duplicate {
		status = http.StatusOK
	}
	return c.JSON(status, shareContentResponse{
		Interaction: toInteractionResponse(out.Interaction),
		Duplicate:   out.Duplicate,
	})
}

func (s *Server) handleGetInteraction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid interaction ID").WithField("id", c.Param("id"))
	}

	in, err := s.ledger.GetInteraction(c.Request().Context(), id)
	if errors.Is(err, domain.ErrInteractionNotFound) {
		return apperrors.NotFoundError("interaction not found").WithField("interaction_id", id.String())
	}
	if err != nil {
		return apperrors.InternalError("failed to load interaction", err).WithField("interaction_id", id.String())
	}
	return c.JSON(http.StatusOK, toInteractionResponse(in))
}

type castVoteRequest struct {
	VoterID   string `json:"voter_id"`
	VoterName string `json:"voter_name"`
	Score     int    `json:"score"`
}

type castVoteResponse struct {
	InteractionID uuid.UUID `json:"interaction_id"`
	Score         int       `json:"score"`
	TotalVotes    int       `json:"total_votes"`
	AverageRating float64   `json:"average_rating"`
	FiveStarCount int       `json:"five_star_count"`
}

func (s *Server) handleCastVote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid interaction ID").WithField("id", c.Param("id"))
	}

	var req castVoteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.VoterID == "" {
		return apperrors.ValidationError("voter_id is required")
	}

	out, err := s.ledger.CastVote(c.Request().Context(), id, req.VoterID, req.VoterName, req.Score)
	switch {
	case errors.Is(err, domain.ErrInteractionNotFound):
		return apperrors.NotFoundError("interaction not found").WithField("interaction_id", id.String())
	case errors.Is(err, domain.ErrInvalidScore):
		return apperrors.ValidationError("score must be between 1 and 5").WithField("score", req.Score)
	case errors.Is(err, domain.ErrAlreadyVoted):
		return apperrors.ConflictError("you already voted on this video").
			WithField("interaction_id", id.String()).
			WithField("voter_id", req.VoterID)
	case errors.Is(err, domain.ErrVoteRateLimited):
		return apperrors.RateLimitedError("too many votes, slow down").WithField("voter_id", req.VoterID)
	case err != nil:
		return apperrors.InternalError("failed to cast vote", err).WithField("interaction_id", id.String())
	}

	return c.JSON(http.StatusOK, castVoteResponse{
		InteractionID: out.InteractionID,
		Score:         out.Score,
		TotalVotes:    out.TotalVotes,
		AverageRating: out.AverageRating,
		FiveStarCount: out.FiveStarCount,
	})
}

func (s *Server) handleLeaderboard(c echo.Context) error {
	communityID := c.Param("id")

	metric, ok := domain.ParseLeaderboardMetric(c.QueryParam("metric"))
	if !ok {
		return apperrors.ValidationError("unknown leaderboard metric").WithField("metric", c.QueryParam("metric"))
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return apperrors.ValidationError("limit must be an integer").WithField("limit", raw)
		}
	}

	rows, err := s.ledger.Leaderboard(c.Request().Context(), communityID, metric, limit)
	if err != nil {
		return apperrors.InternalError("failed to query leaderboard", err).WithField("community_id", communityID)
	}

	out := make([]statResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toStatResponse(&rows[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"metric":  metric,
		"entries": out,
	})
}

func (s *Server) handleGetStats(c echo.Context) error {
	communityID := c.Param("id")
	userID := c.Param("user_id")

	stat, err := s.ledger.GetStats(c.Request().Context(), communityID, userID)
	if err != nil {
		return apperrors.InternalError("failed to load user stats", err).
			WithField("community_id", communityID).
			WithField("user_id", userID)
	}
	return c.JSON(http.StatusOK, toStatResponse(stat))
}
