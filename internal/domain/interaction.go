package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContentInteraction is one shared content item and the votes cast on it.
// The voter→score mapping is the single source of truth for "has this user
// already voted"; TotalVotes, AverageRating, and FiveStarCount are caches
// recomputed from the full mapping on every mutation.
type ContentInteraction struct {
	ID          uuid.UUID
	CommunityID string
	// ContentID is derived from the source URL and stable across resends
	// of the same item.
	ContentID  string
	SharerID   string
	SharerName string
	// Votes maps voter ID to a score in [1,5], one entry per voter.
	Votes         map[string]int
	TotalVotes    int
	AverageRating float64
	FiveStarCount int
	CreatedAt     time.Time
}

// VoteOutcome carries the interaction's state after a successful vote so
// the caller can refresh any display surface.
type VoteOutcome struct {
	InteractionID uuid.UUID
	SharerID      string
	Score         int
	TotalVotes    int
	AverageRating float64
	FiveStarCount int
}

// InteractionRepository abstracts content interaction persistence.
// CastVote is the only mutator of the vote mapping; implementations must
// serialize it per interaction so concurrent votes on the same item cannot
// lose updates, while votes on different items never block each other.
type InteractionRepository interface {
	// Create fails with ErrDuplicateContent if an interaction for this
	// (community, contentID) already exists.
	Create(ctx context.Context, communityID, contentID, sharerID, sharerName string) (*ContentInteraction, error)
	Get(ctx context.Context, id uuid.UUID) (*ContentInteraction, error)
	GetByContentID(ctx context.Context, communityID, contentID string) (*ContentInteraction, error)
	// CastVote records voterID→score exactly once. It fails with
	// ErrAlreadyVoted (no state change) on a repeat voter and recomputes
	// all derived fields from the full mapping before persisting.
	CastVote(ctx context.Context, id uuid.UUID, voterID string, score int) (*VoteOutcome, error)
}
