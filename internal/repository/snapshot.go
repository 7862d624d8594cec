package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/models"
)

// SnapshotRepository tracks provider stat snapshots from webhook receipt
// through ingestion, and hands ready payloads to the ingestion procedure.
type SnapshotRepository interface {
	// Create records a newly received snapshot id.
	Create(ctx context.Context, ingestion *models.SnapshotIngestion) error

	// GetBySnapshotID retrieves the tracking row for a provider snapshot.
	GetBySnapshotID(ctx context.Context, snapshotID string) (*models.SnapshotIngestion, error)

	// MarkIngesting bumps the attempt counter and flags the row in-flight.
	MarkIngesting(ctx context.Context, id uuid.UUID) error

	// MarkIngested records a successful ingestion.
	MarkIngested(ctx context.Context, id uuid.UUID) error

	// MarkFailed records a terminal ingestion failure.
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error

	// IngestPayload forwards a downloaded provider payload to the
	// server-side ingestion procedure, which updates submission stats.
	IngestPayload(ctx context.Context, snapshotID string, payload []byte) error
}

type snapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) SnapshotRepository {
	return &snapshotRepository{pool: pool}
}

func (r *snapshotRepository) Create(ctx context.Context, ingestion *models.SnapshotIngestion) error {
	query := `
		INSERT INTO contest_review.snapshot_ingestions
		(id, snapshot_id, status, attempts)
		VALUES ($1, $2, $3, 0)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		ingestion.ID, ingestion.SnapshotID, ingestion.Status,
	).Scan(&ingestion.CreatedAt, &ingestion.UpdatedAt)
	return db.WrapError(err, "create snapshot ingestion")
}

func (r *snapshotRepository) GetBySnapshotID(ctx context.Context, snapshotID string) (*models.SnapshotIngestion, error) {
	query := `
		SELECT id, snapshot_id, status, attempts, error_message,
		       created_at, updated_at, ingested_at
		FROM contest_review.snapshot_ingestions
		WHERE snapshot_id = $1
	`
	var ing models.SnapshotIngestion
	err := r.pool.QueryRow(ctx, query, snapshotID).Scan(
		&ing.ID, &ing.SnapshotID, &ing.Status, &ing.Attempts, &ing.ErrorMessage,
		&ing.CreatedAt, &ing.UpdatedAt, &ing.IngestedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get snapshot ingestion")
	}
	return &ing, nil
}

func (r *snapshotRepository) MarkIngesting(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE contest_review.snapshot_ingestions
		SET status = 'ingesting', attempts = attempts + 1, updated_at = now()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return db.WrapError(err, "mark snapshot ingesting")
}

func (r *snapshotRepository) MarkIngested(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE contest_review.snapshot_ingestions
		SET status = 'ingested', error_message = NULL,
		    ingested_at = now(), updated_at = now()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return db.WrapError(err, "mark snapshot ingested")
}

func (r *snapshotRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE contest_review.snapshot_ingestions
		SET status = 'failed', error_message = $2, updated_at = now()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, errorMessage)
	return db.WrapError(err, "mark snapshot failed")
}

func (r *snapshotRepository) IngestPayload(ctx context.Context, snapshotID string, payload []byte) error {
	// The heavy lifting (matching records to submissions, writing stats,
	// advancing pipeline stages) lives in the database procedure.
	_, err := r.pool.Exec(ctx,
		`SELECT contest_review.ingest_provider_snapshot($1, $2::jsonb)`,
		snapshotID, payload,
	)
	return db.WrapError(err, "ingest provider snapshot")
}
