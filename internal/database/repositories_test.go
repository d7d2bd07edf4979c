package database

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &DB{DB: db}, mock
}

func communityRows(c domain.Community) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "trial_start", "trial_end",
		"subscription_tier", "subscription_active", "member_count",
		"created_at", "updated_at",
	}).AddRow(c.ID, c.OwnerID, c.TrialStart, c.TrialEnd,
		c.SubscriptionTier, c.SubscriptionActive, c.MemberCount,
		c.CreatedAt, c.UpdatedAt)
}

func TestCommunityRepo_Ensure(t *testing.T) {
	db, mock := newMockDB(t)
	clock := clockwork.NewFakeClock()
	repo := NewCommunityRepo(db, clock)

	now := clock.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO communities")).
		WithArgs("guild-1", "owner-1", now, now.Add(domain.TrialDuration), 250).
		WillReturnRows(communityRows(domain.Community{
			ID: "guild-1", OwnerID: "owner-1",
			TrialStart: now, TrialEnd: now.Add(domain.TrialDuration),
			SubscriptionTier: "trial", MemberCount: 250,
			CreatedAt: now, UpdatedAt: now,
		}))

	c, err := repo.Ensure(context.Background(), "guild-1", "owner-1", 250)
	require.NoError(t, err)
	assert.Equal(t, "guild-1", c.ID)
	assert.Equal(t, now.Add(domain.TrialDuration), c.TrialEnd)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunityRepo_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCommunityRepo(db, clockwork.NewFakeClock())

	mock.ExpectQuery(regexp.QuoteMeta("FROM communities")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCommunityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunityRepo_ActivateSubscription_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCommunityRepo(db, clockwork.NewFakeClock())

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE communities")).
		WithArgs("missing", "Starter").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.ActivateSubscription(context.Background(), "missing", "Starter")
	assert.ErrorIs(t, err, domain.ErrCommunityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func interactionRows(in domain.ContentInteraction) *sqlmock.Rows {
	votes, _ := json.Marshal(in.Votes)
	return sqlmock.NewRows([]string{
		"id", "community_id", "content_id", "sharer_id", "sharer_name",
		"votes", "total_votes", "average_rating", "five_star_count", "created_at",
	}).AddRow(in.ID, in.CommunityID, in.ContentID, in.SharerID, in.SharerName,
		votes, in.TotalVotes, in.AverageRating, in.FiveStarCount, in.CreatedAt)
}

func TestInteractionRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInteractionRepo(db)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO interactions")).
		WithArgs("guild-1", "vid-1", "alice", "Alice").
		WillReturnRows(interactionRows(domain.ContentInteraction{
			ID: id, CommunityID: "guild-1", ContentID: "vid-1",
			SharerID: "alice", SharerName: "Alice",
			Votes: map[string]int{}, CreatedAt: time.Now(),
		}))

	in, err := repo.Create(context.Background(), "guild-1", "vid-1", "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, id, in.ID)
	assert.NotNil(t, in.Votes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepo_Create_DuplicateContent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInteractionRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO interactions")).
		WithArgs("guild-1", "vid-1", "bob", "Bob").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "interactions_community_id_content_id_key"})

	_, err := repo.Create(context.Background(), "guild-1", "vid-1", "bob", "Bob")
	assert.ErrorIs(t, err, domain.ErrDuplicateContent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepo_CastVote(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInteractionRepo(db)
	id := uuid.New()

	existing, _ := json.Marshal(map[string]int{"bob": 5})
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"sharer_id", "votes"}).AddRow("alice", existing))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE interactions")).
		WithArgs(sqlmock.AnyArg(), 2, 4.0, 1, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := repo.CastVote(context.Background(), id, "carol", 3)
	require.NoError(t, err)
	assert.Equal(t, "alice", out.SharerID)
	assert.Equal(t, 2, out.TotalVotes)
	assert.InDelta(t, 4.0, out.AverageRating, 1e-9)
	assert.Equal(t, 1, out.FiveStarCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepo_CastVote_AlreadyVoted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInteractionRepo(db)
	id := uuid.New()

	existing, _ := json.Marshal(map[string]int{"bob": 4})
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"sharer_id", "votes"}).AddRow("alice", existing))
	mock.ExpectRollback()

	_, err := repo.CastVote(context.Background(), id, "bob", 1)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepo_CastVote_InvalidScore(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewInteractionRepo(db)

	// Rejected before any query is issued.
	_, err := repo.CastVote(context.Background(), uuid.New(), "bob", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidScore)
	_, err = repo.CastVote(context.Background(), uuid.New(), "bob", 6)
	assert.ErrorIs(t, err, domain.ErrInvalidScore)
}

func TestInteractionRepo_CastVote_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInteractionRepo(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"sharer_id", "votes"}))
	mock.ExpectRollback()

	_, err := repo.CastVote(context.Background(), id, "bob", 3)
	assert.ErrorIs(t, err, domain.ErrInteractionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepo_ApplyDelta(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_stats")).
		WithArgs(10, 1, 0, 0, 0, "guild-1", "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ApplyDelta(context.Background(), "guild-1", "alice",
		domain.StatDelta{Points: 10, VideosShared: 1})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepo_ApplyDelta_MissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_stats")).
		WithArgs(1, 0, 0, 0, 0, "guild-1", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ApplyDelta(context.Background(), "guild-1", "ghost", domain.StatDelta{Points: 1})
	assert.ErrorIs(t, err, domain.ErrStatRowNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepo_ApplyDelta_RejectsNegative(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewStatsRepo(db)

	err := repo.ApplyDelta(context.Background(), "guild-1", "alice", domain.StatDelta{Points: -5})
	assert.ErrorIs(t, err, domain.ErrNegativeDelta)
}

func TestStatsRepo_ApplyDelta_ZeroDeltaIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepo(db)

	// No query expected.
	err := repo.ApplyDelta(context.Background(), "guild-1", "alice", domain.StatDelta{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepo_Get_ZeroRowWhenAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_stats")).
		WithArgs("guild-1", "nobody").
		WillReturnRows(sqlmock.NewRows([]string{"community_id"}))

	s, err := repo.Get(context.Background(), "guild-1", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "guild-1", s.CommunityID)
	assert.Equal(t, "nobody", s.UserID)
	assert.Zero(t, s.Points)
}

func TestStatsRepo_Top(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepo(db)

	rows := sqlmock.NewRows([]string{
		"community_id", "user_id", "display_name", "points", "videos_shared",
		"votes_cast", "five_stars_received", "rating_sum", "average_rating",
	}).
		AddRow("guild-1", "alice", "Alice", 40, 3, 2, 4, 13, 4.33).
		AddRow("guild-1", "bob", "Bob", 20, 1, 5, 1, 5, 5.0)

	mock.ExpectQuery(regexp.QuoteMeta("videos_shared > 0")).
		WithArgs("guild-1", 10).
		WillReturnRows(rows)

	out, err := repo.Top(context.Background(), "guild-1", domain.MetricFiveStars, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "alice", out[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepo_Top_UnknownMetric(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewStatsRepo(db)

	_, err := repo.Top(context.Background(), "guild-1", domain.LeaderboardMetric("bogus"), 10)
	assert.Error(t, err)
}
