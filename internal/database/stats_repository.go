package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
)

// statColumns must match the Scan order in scanStat.
const statColumns = `community_id, user_id, display_name, points, videos_shared, votes_cast, five_stars_received, rating_sum, average_rating`

// orderings maps each leaderboard metric to its whitelisted ORDER BY
// clause: primary key descending, metric-specific tie-break descending,
// then user_id ascending so equal rows always come back in the same order.
var orderings = map[domain.LeaderboardMetric]string{
	domain.MetricFiveStars:     "five_stars_received DESC, average_rating DESC, user_id ASC",
	domain.MetricAverageRating: "average_rating DESC, videos_shared DESC, user_id ASC",
	domain.MetricVideosShared:  "videos_shared DESC, points DESC, user_id ASC",
	domain.MetricPoints:        "points DESC, videos_shared DESC, user_id ASC",
}

// StatsRepo implements domain.StatsRepository backed by PostgreSQL.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *DB) *StatsRepo {
	return &StatsRepo{db: db.DB}
}

func scanStat(row rowScanner, s *domain.UserStat) error {
	return row.Scan(
		&s.CommunityID, &s.UserID, &s.DisplayName, &s.Points, &s.VideosShared,
		&s.VotesCast, &s.FiveStarsReceived, &s.RatingSum, &s.AverageRating,
	)
}

func (r *StatsRepo) Ensure(ctx context.Context, communityID, userID, displayName string) error {
	done := track("ensure_user_stats")

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_stats (community_id, user_id, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (community_id, user_id) DO UPDATE SET
			display_name = CASE
				WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name
				ELSE user_stats.display_name
			END
	`, communityID, userID, displayName)
	done(err)
	if err != nil {
		return fmt.Errorf("failed to ensure user stats: %w", err)
	}
	return nil
}

// ApplyDelta adds the delta in a single arithmetic UPDATE. The database
// evaluates the additions against the current row under its own row lock,
// so concurrent awards to the same user never lose increments, and the
// derived average is recomputed in the same statement.
func (r *StatsRepo) ApplyDelta(ctx context.Context, communityID, userID string, delta domain.StatDelta) error {
	if !delta.Valid() {
		return domain.ErrNegativeDelta
	}
	if delta.IsZero() {
		return nil
	}

	done := track("apply_stat_delta")

	res, err := r.db.ExecContext(ctx, `
		UPDATE user_stats
		SET points = points + $1,
			videos_shared = videos_shared + $2,
			votes_cast = votes_cast + $3,
			five_stars_received = five_stars_received + $4,
			rating_sum = rating_sum + $5,
			average_rating = (rating_sum + $5)::float / GREATEST(videos_shared + $2, 1)
		WHERE community_id = $6 AND user_id = $7
	`, delta.Points, delta.VideosShared, delta.VotesCast, delta.FiveStarsReceived, delta.RatingSum,
		communityID, userID)
	if err == nil {
		var affected int64
		affected, err = res.RowsAffected()
		if err == nil && affected == 0 {
			err = domain.ErrStatRowNotFound
		}
	}
	done(err)
	if err != nil {
		return err
	}
	return nil
}

func (r *StatsRepo) Get(ctx context.Context, communityID, userID string) (*domain.UserStat, error) {
	done := track("get_user_stats")

	var s domain.UserStat
	err := scanStat(r.db.QueryRowContext(ctx,
		`SELECT `+statColumns+` FROM user_stats WHERE community_id = $1 AND user_id = $2`,
		communityID, userID), &s)
	if errors.Is(err, sql.ErrNoRows) {
		// A user with no interactions is a zero row, not an error.
		done(nil)
		return &domain.UserStat{CommunityID: communityID, UserID: userID}, nil
	}
	done(err)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StatsRepo) Top(ctx context.Context, communityID string, metric domain.LeaderboardMetric, limit int) (_ []domain.UserStat, err error) {
	ordering, ok := orderings[metric]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard metric %q", metric)
	}

	done := track("leaderboard_top")
	defer func() { done(err) }()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+statColumns+`
		FROM user_stats
		WHERE community_id = $1 AND videos_shared > 0
		ORDER BY `+ordering+`
		LIMIT $2
	`, communityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []domain.UserStat
	for rows.Next() {
		var s domain.UserStat
		if err = scanStat(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		out = append(out, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
