package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
)

// interactionColumns must match the Scan order in scanInteraction.
const interactionColumns = `id, community_id, content_id, sharer_id, sharer_name, votes, total_votes, average_rating, five_star_count, created_at`

const uniqueViolationCode = "23505"

// InteractionRepo implements domain.InteractionRepository backed by PostgreSQL.
// The vote mapping lives in a JSONB column keyed by voter ID, which is what
// makes the one-vote-per-voter check and the full recompute possible in a
// single locked row.
type InteractionRepo struct {
	db *sql.DB
}

func NewInteractionRepo(db *DB) *InteractionRepo {
	return &InteractionRepo{db: db.DB}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInteraction(row rowScanner) (*domain.ContentInteraction, error) {
	var (
		in       domain.ContentInteraction
		votesRaw []byte
	)
	err := row.Scan(
		&in.ID, &in.CommunityID, &in.ContentID, &in.SharerID, &in.SharerName,
		&votesRaw, &in.TotalVotes, &in.AverageRating, &in.FiveStarCount,
		&in.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(votesRaw, &in.Votes); err != nil {
		return nil, fmt.Errorf("failed to decode vote mapping: %w", err)
	}
	if in.Votes == nil {
		in.Votes = make(map[string]int)
	}
	return &in, nil
}

func (r *InteractionRepo) Create(ctx context.Context, communityID, contentID, sharerID, sharerName string) (*domain.ContentInteraction, error) {
	done := track("create_interaction")

	in, err := scanInteraction(r.db.QueryRowContext(ctx, `
		INSERT INTO interactions (community_id, content_id, sharer_id, sharer_name, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING `+interactionColumns+`
	`, communityID, contentID, sharerID, sharerName))

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		err = domain.ErrDuplicateContent
	}
	done(err)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (r *InteractionRepo) Get(ctx context.Context, id uuid.UUID) (*domain.ContentInteraction, error) {
	done := track("get_interaction")

	in, err := scanInteraction(r.db.QueryRowContext(ctx,
		`SELECT `+interactionColumns+` FROM interactions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		err = domain.ErrInteractionNotFound
	}
	done(err)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (r *InteractionRepo) GetByContentID(ctx context.Context, communityID, contentID string) (*domain.ContentInteraction, error) {
	done := track("get_interaction_by_content")

	in, err := scanInteraction(r.db.QueryRowContext(ctx,
		`SELECT `+interactionColumns+` FROM interactions WHERE community_id = $1 AND content_id = $2`,
		communityID, contentID))
	if errors.Is(err, sql.ErrNoRows) {
		err = domain.ErrInteractionNotFound
	}
	done(err)
	if err != nil {
		return nil, err
	}
	return in, nil
}

// CastVote records a vote inside a transaction holding a row lock, so the
// voted-already check, the mapping update, and the derived-field recompute
// form one atomic unit. Derived fields are always recomputed from the full
// mapping rather than adjusted incrementally.
func (r *InteractionRepo) CastVote(ctx context.Context, id uuid.UUID, voterID string, score int) (_ *domain.VoteOutcome, err error) {
	if score < 1 || score > 5 {
		return nil, domain.ErrInvalidScore
	}

	done := track("cast_vote")
	defer func() { done(err) }()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var (
		sharerID string
		votesRaw []byte
	)
	err = tx.QueryRowContext(ctx,
		`SELECT sharer_id, votes FROM interactions WHERE id = $1 FOR UPDATE`, id,
	).Scan(&sharerID, &votesRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInteractionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock interaction: %w", err)
	}

	votes := make(map[string]int)
	if err = json.Unmarshal(votesRaw, &votes); err != nil {
		return nil, fmt.Errorf("failed to decode vote mapping: %w", err)
	}
	if _, voted := votes[voterID]; voted {
		return nil, domain.ErrAlreadyVoted
	}
	votes[voterID] = score

	total, sum, fiveStars := 0, 0, 0
	for _, v := range votes {
		total++
		sum += v
		if v == 5 {
			fiveStars++
		}
	}
	average := float64(sum) / float64(total)

	encoded, err := json.Marshal(votes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode vote mapping: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE interactions
		SET votes = $1, total_votes = $2, average_rating = $3, five_star_count = $4
		WHERE id = $5
	`, encoded, total, average, fiveStars, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update interaction: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &domain.VoteOutcome{
		InteractionID: id,
		SharerID:      sharerID,
		Score:         score,
		TotalVotes:    total,
		AverageRating: average,
		FiveStarCount: fiveStars,
	}, nil
}
