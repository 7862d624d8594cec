package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/models"
)

// ContestRepository provides read access to static contest configuration.
type ContestRepository interface {
	// List retrieves contests, newest start date first.
	List(ctx context.Context, limit, offset int) ([]*models.Contest, error)

	// GetByID retrieves a single contest.
	GetByID(ctx context.Context, id int64) (*models.Contest, error)

	// Categories retrieves the ranking categories for a contest.
	Categories(ctx context.Context, contestID int64) ([]*models.ContestCategory, error)

	// Prizes retrieves the prize payouts for a contest.
	Prizes(ctx context.Context, contestID int64) ([]*models.ContestPrize, error)
}

type contestRepository struct {
	pool *pgxpool.Pool
}

// NewContestRepository creates a new ContestRepository.
func NewContestRepository(pool *pgxpool.Pool) ContestRepository {
	return &contestRepository{pool: pool}
}

func (r *contestRepository) List(ctx context.Context, limit, offset int) ([]*models.Contest, error) {
	query := `
		SELECT id, title, starts_at, ends_at, required_hashtags, description_template, created_at
		FROM contest_review.contests
		ORDER BY starts_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, db.WrapError(err, "list contests")
	}
	defer rows.Close()

	var contests []*models.Contest
	for rows.Next() {
		var c models.Contest
		if err := rows.Scan(
			&c.ID, &c.Title, &c.StartsAt, &c.EndsAt,
			&c.RequiredHashtags, &c.DescriptionTemplate, &c.CreatedAt,
		); err != nil {
			return nil, db.WrapError(err, "scan contest")
		}
		contests = append(contests, &c)
	}
	return contests, rows.Err()
}

func (r *contestRepository) GetByID(ctx context.Context, id int64) (*models.Contest, error) {
	query := `
		SELECT id, title, starts_at, ends_at, required_hashtags, description_template, created_at
		FROM contest_review.contests
		WHERE id = $1`

	var c models.Contest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.StartsAt, &c.EndsAt,
		&c.RequiredHashtags, &c.DescriptionTemplate, &c.CreatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get contest")
	}
	return &c, nil
}

func (r *contestRepository) Categories(ctx context.Context, contestID int64) ([]*models.ContestCategory, error) {
	query := `
		SELECT id, contest_id, name, ranking_method
		FROM contest_review.contest_categories
		WHERE contest_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, contestID)
	if err != nil {
		return nil, db.WrapError(err, "list contest categories")
	}
	defer rows.Close()

	var categories []*models.ContestCategory
	for rows.Next() {
		var c models.ContestCategory
		if err := rows.Scan(&c.ID, &c.ContestID, &c.Name, &c.RankingMethod); err != nil {
			return nil, db.WrapError(err, "scan contest category")
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (r *contestRepository) Prizes(ctx context.Context, contestID int64) ([]*models.ContestPrize, error) {
	query := `
		SELECT id, contest_id, category_id, rank, amount_cents
		FROM contest_review.contest_prizes
		WHERE contest_id = $1
		ORDER BY category_id, rank`

	rows, err := r.pool.Query(ctx, query, contestID)
	if err != nil {
		return nil, db.WrapError(err, "list contest prizes")
	}
	defer rows.Close()

	var prizes []*models.ContestPrize
	for rows.Next() {
		var p models.ContestPrize
		if err := rows.Scan(&p.ID, &p.ContestID, &p.CategoryID, &p.Rank, &p.AmountCents); err != nil {
			return nil, db.WrapError(err, "scan contest prize")
		}
		prizes = append(prizes, &p)
	}
	return prizes, rows.Err()
}
