// Package repository provides database operations for the review service.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/models"
)

// SubmissionFilter narrows List results. Zero values mean "no filter".
type SubmissionFilter struct {
	ContestID     int64
	Platform      models.Platform
	IncludeHidden bool
	Limit         int
	Offset        int
}

// StatusPatch is a partial update of a submission's status fields. Nil
// fields are left untouched. updated_at always advances.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type StatusPatch struct {
	ProcessingStatus    *models.ProcessingStatus
	HashtagStatus       *models.CheckStatus
	DescriptionStatus   *models.CheckStatus
	ContentReviewStatus *models.ContentReviewStatus
	OwnershipStatus     *models.OwnershipStatus
	OwnershipReason     *string
	InvalidStats        *bool
	Hidden              *bool
	LastStatsRefreshAt  *time.Time
}

// SubmissionRepository defines operations over contest submissions.
type SubmissionRepository interface {
	// GetByID retrieves a single submission.
	GetByID(ctx context.Context, id int64) (*models.Submission, error)

	// List retrieves submissions matching the filter, newest first.
	List(ctx context.Context, filter SubmissionFilter) ([]*models.Submission, error)

	// ListUnsettled retrieves submissions whose pipeline stage is neither
	// approved nor waiting_review. The watcher's candidate set.
	ListUnsettled(ctx context.Context, limit int) ([]*models.Submission, error)

	// UpdateStatus applies a partial status update and returns the
	// updated record.
	UpdateStatus(ctx context.Context, id int64, patch StatusPatch) (*models.Submission, error)
}

type submissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{pool: pool}
}

const submissionColumns = `
	id, contest_id, user_id, video_url, platform, transcode_bucket, transcode_path,
	views, likes, comments, shares, saves,
	processing_status, hashtag_status, description_status, content_review_status,
	mp4_ownership_status, mp4_ownership_reason, invalid_stats_flag, hidden,
	created_at, updated_at, last_stats_refresh_at`

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var s models.Submission
	err := row.Scan(
		&s.ID, &s.ContestID, &s.UserID, &s.VideoURL, &s.Platform,
		&s.TranscodeBucket, &s.TranscodePath,
		&s.Views, &s.Likes, &s.Comments, &s.Shares, &s.Saves,
		&s.ProcessingStatus, &s.HashtagStatus, &s.DescriptionStatus, &s.ContentReviewStatus,
		&s.OwnershipStatus, &s.OwnershipReason, &s.InvalidStats, &s.Hidden,
		&s.CreatedAt, &s.UpdatedAt, &s.LastStatsRefreshAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	query := `SELECT` + submissionColumns + `
		FROM contest_review.submissions
		WHERE id = $1`

	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, db.WrapError(err, "get submission")
	}
	return sub, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]*models.Submission, error) {
	var (
		conds []string
		args  []interface{}
	)

	if !filter.IncludeHidden {
		conds = append(conds, "NOT hidden")
	}
	if filter.ContestID != 0 {
		args = append(args, filter.ContestID)
		conds = append(conds, fmt.Sprintf("contest_id = $%d", len(args)))
	}
	if filter.Platform != "" {
		args = append(args, filter.Platform)
		conds = append(conds, fmt.Sprintf("platform = $%d", len(args)))
	}

	query := `SELECT` + submissionColumns + ` FROM contest_review.submissions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.WrapError(err, "list submissions")
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

func (r *submissionRepository) ListUnsettled(ctx context.Context, limit int) ([]*models.Submission, error) {
	query := `SELECT` + submissionColumns + `
		FROM contest_review.submissions
		WHERE NOT hidden
		  AND processing_status NOT IN ('approved', 'waiting_review')
		ORDER BY updated_at ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, db.WrapError(err, "list unsettled submissions")
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

func collectSubmissions(rows pgx.Rows) ([]*models.Submission, error) {
	var subs []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, db.WrapError(err, "scan submission")
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id int64, patch StatusPatch) (*models.Submission, error) {
	sets := []string{"updated_at = now()"}
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.ProcessingStatus != nil {
		add("processing_status", *patch.ProcessingStatus)
	}
	if patch.HashtagStatus != nil {
		add("hashtag_status", *patch.HashtagStatus)
	}
	if patch.DescriptionStatus != nil {
		add("description_status", *patch.DescriptionStatus)
	}
	if patch.ContentReviewStatus != nil {
		add("content_review_status", *patch.ContentReviewStatus)
	}
	if patch.OwnershipStatus != nil {
		add("mp4_ownership_status", *patch.OwnershipStatus)
	}
	if patch.OwnershipReason != nil {
		add("mp4_ownership_reason", *patch.OwnershipReason)
	}
	if patch.InvalidStats != nil {
		add("invalid_stats_flag", *patch.InvalidStats)
	}
	if patch.Hidden != nil {
		add("hidden", *patch.Hidden)
	}
	if patch.LastStatsRefreshAt != nil {
		add("last_stats_refresh_at", *patch.LastStatsRefreshAt)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE contest_review.submissions
		SET %s
		WHERE id = $%d
		RETURNING`+submissionColumns,
		strings.Join(sets, ", "), len(args),
	)

	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, db.WrapError(err, "update submission status")
	}
	return sub, nil
}
