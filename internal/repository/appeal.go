package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/models"
)

// AppealRepository defines operations over check appeals.
type AppealRepository interface {
	// Create inserts a new pending appeal.
	Create(ctx context.Context, appeal *models.Appeal) error

	// GetByID retrieves an appeal.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appeal, error)

	// List retrieves appeals, optionally filtered by status, newest first.
	List(ctx context.Context, status models.AppealStatus, limit int) ([]*models.Appeal, error)

	// HasPending reports whether the submission already has a pending
	// appeal of the given type.
	HasPending(ctx context.Context, submissionID int64, appealType models.AppealType) (bool, error)

	// Resolve records the decision on a pending appeal and returns the
	// updated row.
	Resolve(ctx context.Context, id uuid.UUID, status models.AppealStatus, adminResponse, reviewerID string) (*models.Appeal, error)
}

type appealRepository struct {
	pool *pgxpool.Pool
}

// NewAppealRepository creates a new AppealRepository.
func NewAppealRepository(pool *pgxpool.Pool) AppealRepository {
	return &appealRepository{pool: pool}
}

const appealColumns = `
	id, submission_id, appeal_type, reason, status,
	admin_response, reviewer_id, created_at, updated_at, resolved_at`

func scanAppeal(row pgx.Row) (*models.Appeal, error) {
	var a models.Appeal
	err := row.Scan(
		&a.ID, &a.SubmissionID, &a.AppealType, &a.Reason, &a.Status,
		&a.AdminResponse, &a.ReviewerID, &a.CreatedAt, &a.UpdatedAt, &a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appealRepository) Create(ctx context.Context, appeal *models.Appeal) error {
	query := `
		INSERT INTO contest_review.appeals
		(id, submission_id, appeal_type, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		appeal.ID, appeal.SubmissionID, appeal.AppealType, appeal.Reason, appeal.Status,
	).Scan(&appeal.CreatedAt, &appeal.UpdatedAt)
	return db.WrapError(err, "create appeal")
}

func (r *appealRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Appeal, error) {
	query := `SELECT` + appealColumns + ` FROM contest_review.appeals WHERE id = $1`

	appeal, err := scanAppeal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, db.WrapError(err, "get appeal")
	}
	return appeal, nil
}

func (r *appealRepository) List(ctx context.Context, status models.AppealStatus, limit int) ([]*models.Appeal, error) {
	query := `SELECT` + appealColumns + ` FROM contest_review.appeals`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.WrapError(err, "list appeals")
	}
	defer rows.Close()

	var appeals []*models.Appeal
	for rows.Next() {
		appeal, err := scanAppeal(rows)
		if err != nil {
			return nil, db.WrapError(err, "scan appeal")
		}
		appeals = append(appeals, appeal)
	}
	return appeals, rows.Err()
}

func (r *appealRepository) HasPending(ctx context.Context, submissionID int64, appealType models.AppealType) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM contest_review.appeals
			WHERE submission_id = $1 AND appeal_type = $2 AND status = 'pending'
		)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, submissionID, appealType).Scan(&exists)
	return exists, db.WrapError(err, "check pending appeal")
}

func (r *appealRepository) Resolve(ctx context.Context, id uuid.UUID, status models.AppealStatus, adminResponse, reviewerID string) (*models.Appeal, error) {
	query := `
		UPDATE contest_review.appeals
		SET status = $2, admin_response = $3, reviewer_id = $4,
		    resolved_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING` + appealColumns

	appeal, err := scanAppeal(r.pool.QueryRow(ctx, query, id, status, adminResponse, reviewerID))
	if err != nil {
		return nil, db.WrapError(err, "resolve appeal")
	}
	return appeal, nil
}
