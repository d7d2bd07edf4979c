// Package memory provides an in-memory implementation of the ledger
// repositories for single-instance mode and tests. Mutations are
// serialized per entity: each interaction and each stat row carries its
// own mutex, so concurrent votes on the same item cannot lose updates
// while votes on different items never block each other. The outer map
// lock is held only to locate or insert entries, never across a mutation.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
)

type contentKey struct {
	CommunityID string
	ContentID   string
}

type statKey struct {
	CommunityID string
	UserID      string
}

type interactionEntry struct {
	mu  sync.Mutex
	rec domain.ContentInteraction
}

type statEntry struct {
	mu  sync.Mutex
	row domain.UserStat
}

// Store implements domain.CommunityRepository, domain.InteractionRepository,
// and domain.StatsRepository backed by process memory.
type Store struct {
	clock clockwork.Clock

	mu           sync.RWMutex
	communities  map[string]*domain.Community
	interactions map[uuid.UUID]*interactionEntry
	byContent    map[contentKey]uuid.UUID
	stats        map[statKey]*statEntry
}

func NewStore(clock clockwork.Clock) *Store {
	return &Store{
		clock:        clock,
		communities:  make(map[string]*domain.Community),
		interactions: make(map[uuid.UUID]*interactionEntry),
		byContent:    make(map[contentKey]uuid.UUID),
		stats:        make(map[statKey]*statEntry),
	}
}

// --- CommunityRepository ---

func (s *Store) Ensure(_ context.Context, communityID, ownerID string, memberCount int) (*domain.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, exists := s.communities[communityID]; exists {
		c.OwnerID = ownerID
		c.MemberCount = memberCount
		c.UpdatedAt = s.clock.Now()
		cp := *c
		return &cp, nil
	}

	now := s.clock.Now()
	c := &domain.Community{
		ID:               communityID,
		OwnerID:          ownerID,
		TrialStart:       now,
		TrialEnd:         now.Add(domain.TrialDuration),
		SubscriptionTier: "trial",
		MemberCount:      memberCount,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.communities[communityID] = c
	cp := *c
	return &cp, nil
}

func (s *Store) Get(_ context.Context, communityID string) (*domain.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.communities[communityID]
	if !exists {
		return nil, domain.ErrCommunityNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ActivateSubscription(_ context.Context, communityID, tier string) (*domain.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.communities[communityID]
	if !exists {
		return nil, domain.ErrCommunityNotFound
	}
	c.SubscriptionActive = true
	c.SubscriptionTier = tier
	c.UpdatedAt = s.clock.Now()
	cp := *c
	return &cp, nil
}

// --- InteractionRepository ---

func (s *Store) Create(_ context.Context, communityID, contentID, sharerID, sharerName string) (*domain.ContentInteraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := contentKey{CommunityID: communityID, ContentID: contentID}
	if _, exists := s.byContent[key]; exists {
		return nil, domain.ErrDuplicateContent
	}

	entry := &interactionEntry{
		rec: domain.ContentInteraction{
			ID:          uuid.New(),
			CommunityID: communityID,
			ContentID:   contentID,
			SharerID:    sharerID,
			SharerName:  sharerName,
			Votes:       make(map[string]int),
			CreatedAt:   s.clock.Now(),
		},
	}
	s.interactions[entry.rec.ID] = entry
	s.byContent[key] = entry.rec.ID

	return copyInteraction(&entry.rec), nil
}

func (s *Store) GetInteraction(_ context.Context, id uuid.UUID) (*domain.ContentInteraction, error) {
	s.mu.RLock()
	entry, exists := s.interactions[id]
	s.mu.RUnlock()
	if !exists {
		return nil, domain.ErrInteractionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return copyInteraction(&entry.rec), nil
}

func (s *Store) GetByContentID(_ context.Context, communityID, contentID string) (*domain.ContentInteraction, error) {
	s.mu.RLock()
	id, exists := s.byContent[contentKey{CommunityID: communityID, ContentID: contentID}]
	var entry *interactionEntry
	if exists {
		entry = s.interactions[id]
	}
	s.mu.RUnlock()
	if !exists {
		return nil, domain.ErrInteractionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return copyInteraction(&entry.rec), nil
}

func (s *Store) CastVote(_ context.Context, id uuid.UUID, voterID string, score int) (*domain.VoteOutcome, error) {
	if score < 1 || score > 5 {
		return nil, domain.ErrInvalidScore
	}

	s.mu.RLock()
	entry, exists := s.interactions[id]
	s.mu.RUnlock()
	if !exists {
		return nil, domain.ErrInteractionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	rec := &entry.rec
	if _, voted := rec.Votes[voterID]; voted {
		return nil, domain.ErrAlreadyVoted
	}
	rec.Votes[voterID] = score

	// Derived fields are recomputed from the whole mapping, not
	// incrementally, so they can never drift from their source.
	total, sum, fiveStars := 0, 0, 0
	for _, v := range rec.Votes {
		total++
		sum += v
		if v == 5 {
			fiveStars++
		}
	}
	rec.TotalVotes = total
	rec.AverageRating = float64(sum) / float64(total)
	rec.FiveStarCount = fiveStars

	return &domain.VoteOutcome{
		InteractionID: rec.ID,
		SharerID:      rec.SharerID,
		Score:         score,
		TotalVotes:    rec.TotalVotes,
		AverageRating: rec.AverageRating,
		FiveStarCount: rec.FiveStarCount,
	}, nil
}

// --- StatsRepository ---

func (s *Store) EnsureStats(_ context.Context, communityID, userID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := statKey{CommunityID: communityID, UserID: userID}
	if entry, exists := s.stats[key]; exists {
		if displayName != "" {
			entry.mu.Lock()
			entry.row.DisplayName = displayName
			entry.mu.Unlock()
		}
		return nil
	}
	s.stats[key] = &statEntry{
		row: domain.UserStat{
			CommunityID: communityID,
			UserID:      userID,
			DisplayName: displayName,
		},
	}
	return nil
}

func (s *Store) ApplyDelta(_ context.Context, communityID, userID string, delta domain.StatDelta) error {
	if !delta.Valid() {
		return domain.ErrNegativeDelta
	}

	s.mu.RLock()
	entry, exists := s.stats[statKey{CommunityID: communityID, UserID: userID}]
	s.mu.RUnlock()
	if !exists {
		return domain.ErrStatRowNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	row := &entry.row
	row.Points += delta.Points
	row.VideosShared += delta.VideosShared
	row.VotesCast += delta.VotesCast
	row.FiveStarsReceived += delta.FiveStarsReceived
	row.RatingSum += delta.RatingSum

	// Same critical section as the delta: the average is never observably stale.
	row.AverageRating = float64(row.RatingSum) / float64(max(row.VideosShared, 1))
	return nil
}

func (s *Store) GetStats(_ context.Context, communityID, userID string) (*domain.UserStat, error) {
	s.mu.RLock()
	entry, exists := s.stats[statKey{CommunityID: communityID, UserID: userID}]
	s.mu.RUnlock()
	if !exists {
		// A user with no interactions is a zero row, not an error.
		return &domain.UserStat{CommunityID: communityID, UserID: userID}, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	row := entry.row
	return &row, nil
}

func (s *Store) Top(_ context.Context, communityID string, metric domain.LeaderboardMetric, limit int) ([]domain.UserStat, error) {
	s.mu.RLock()
	rows := make([]domain.UserStat, 0, len(s.stats))
	for key, entry := range s.stats {
		if key.CommunityID != communityID {
			continue
		}
		entry.mu.Lock()
		row := entry.row
		entry.mu.Unlock()
		if row.VideosShared == 0 {
			continue
		}
		rows = append(rows, row)
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		return lessForMetric(metric, &rows[i], &rows[j])
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// lessForMetric orders rows descending by the metric's primary key, then
// its tie-break, then user ID ascending for a deterministic final order.
func lessForMetric(metric domain.LeaderboardMetric, a, b *domain.UserStat) bool {
	type pair struct{ primary, tieBreak float64 }
	keys := func(u *domain.UserStat) pair {
		switch metric {
		case domain.MetricAverageRating:
			return pair{u.AverageRating, float64(u.VideosShared)}
		case domain.MetricVideosShared:
			return pair{float64(u.VideosShared), float64(u.Points)}
		case domain.MetricPoints:
			return pair{float64(u.Points), float64(u.VideosShared)}
		default: // MetricFiveStars
			return pair{float64(u.FiveStarsReceived), u.AverageRating}
		}
	}

	ka, kb := keys(a), keys(b)
	if ka.primary != kb.primary {
		return ka.primary > kb.primary
	}
	if ka.tieBreak != kb.tieBreak {
		return ka.tieBreak > kb.tieBreak
	}
	return a.UserID < b.UserID
}

func copyInteraction(rec *domain.ContentInteraction) *domain.ContentInteraction {
	cp := *rec
	cp.Votes = make(map[string]int, len(rec.Votes))
	for k, v := range rec.Votes {
		cp.Votes[k] = v
	}
	return &cp
}
