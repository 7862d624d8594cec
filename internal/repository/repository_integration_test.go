//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/db/testutil"
	"github.com/clipcontest/submission-review-go/internal/models"
)

func seedContest(t *testing.T, td *testutil.TestDatabase) int64 {
	t.Helper()
	var id int64
	err := td.Pool.QueryRow(context.Background(), `
		INSERT INTO contest_review.contests (title, starts_at, ends_at, required_hashtags)
		VALUES ('Test Contest', now() - interval '7 days', now() + interval '7 days', '{#contest}')
		RETURNING id`).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedSubmission(t *testing.T, td *testutil.TestDatabase, contestID int64) int64 {
	t.Helper()
	var id int64
	err := td.Pool.QueryRow(context.Background(), `
		INSERT INTO contest_review.submissions (contest_id, user_id, video_url, platform, processing_status)
		VALUES ($1, 'user-1', 'https://www.tiktok.com/@user/video/1', 'tiktok', 'fetching_stats')
		RETURNING id`, contestID).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestSubmissionRepositoryIntegration(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Teardown(t)

	ctx := context.Background()
	contestID := seedContest(t, td)
	subID := seedSubmission(t, td, contestID)
	repo := NewSubmissionRepository(td.Pool)

	t.Run("GetByID", func(t *testing.T) {
		sub, err := repo.GetByID(ctx, subID)
		require.NoError(t, err)
		require.Equal(t, models.PlatformTikTok, sub.Platform)
		require.Equal(t, models.ProcessingFetchingStats, sub.ProcessingStatus)
	})

	t.Run("GetByID missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999999)
		require.True(t, db.IsNotFound(err))
	})

	t.Run("UpdateStatus partial patch", func(t *testing.T) {
		approved := models.ContentReviewApproved
		updated, err := repo.UpdateStatus(ctx, subID, StatusPatch{
			ContentReviewStatus: &approved,
		})
		require.NoError(t, err)
		require.Equal(t, models.ContentReviewApproved, updated.ContentReviewStatus)
		// Untouched fields survive the patch.
		require.Equal(t, models.ProcessingFetchingStats, updated.ProcessingStatus)
		require.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	})

	t.Run("UpdateStatus stamps refresh time", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Millisecond)
		updated, err := repo.UpdateStatus(ctx, subID, StatusPatch{
			LastStatsRefreshAt: &now,
		})
		require.NoError(t, err)
		require.NotNil(t, updated.LastStatsRefreshAt)
	})

	t.Run("List filters hidden", func(t *testing.T) {
		hidden := true
		_, err := repo.UpdateStatus(ctx, subID, StatusPatch{Hidden: &hidden})
		require.NoError(t, err)

		subs, err := repo.List(ctx, SubmissionFilter{ContestID: contestID})
		require.NoError(t, err)
		require.Empty(t, subs)

		subs, err = repo.List(ctx, SubmissionFilter{ContestID: contestID, IncludeHidden: true})
		require.NoError(t, err)
		require.Len(t, subs, 1)

		visible := false
		_, err = repo.UpdateStatus(ctx, subID, StatusPatch{Hidden: &visible})
		require.NoError(t, err)
	})

	t.Run("ListUnsettled excludes settled stages", func(t *testing.T) {
		subs, err := repo.ListUnsettled(ctx, 100)
		require.NoError(t, err)
		require.Len(t, subs, 1)

		settled := models.ProcessingApproved
		_, err = repo.UpdateStatus(ctx, subID, StatusPatch{ProcessingStatus: &settled})
		require.NoError(t, err)

		subs, err = repo.ListUnsettled(ctx, 100)
		require.NoError(t, err)
		require.Empty(t, subs)
	})
}

func TestAppealRepositoryIntegration(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Teardown(t)

	ctx := context.Background()
	contestID := seedContest(t, td)
	subID := seedSubmission(t, td, contestID)
	repo := NewAppealRepository(td.Pool)

	appeal := &models.Appeal{
		ID:           uuid.New(),
		SubmissionID: subID,
		AppealType:   models.AppealHashtag,
		Reason:       "hashtag is in the pinned comment",
		Status:       models.AppealPending,
	}
	require.NoError(t, repo.Create(ctx, appeal))

	t.Run("duplicate pending appeal rejected", func(t *testing.T) {
		dup := &models.Appeal{
			ID:           uuid.New(),
			SubmissionID: subID,
			AppealType:   models.AppealHashtag,
			Reason:       "again",
			Status:       models.AppealPending,
		}
		err := repo.Create(ctx, dup)
		require.True(t, db.IsDuplicateKey(err))
	})

	t.Run("HasPending", func(t *testing.T) {
		pending, err := repo.HasPending(ctx, subID, models.AppealHashtag)
		require.NoError(t, err)
		require.True(t, pending)

		pending, err = repo.HasPending(ctx, subID, models.AppealDescription)
		require.NoError(t, err)
		require.False(t, pending)
	})

	t.Run("Resolve only once", func(t *testing.T) {
		resolved, err := repo.Resolve(ctx, appeal.ID, models.AppealApproved, "ok", "admin-1")
		require.NoError(t, err)
		require.Equal(t, models.AppealApproved, resolved.Status)
		require.NotNil(t, resolved.ResolvedAt)

		_, err = repo.Resolve(ctx, appeal.ID, models.AppealDenied, "no", "admin-1")
		require.True(t, db.IsNotFound(err))
	})
}

func TestSnapshotRepositoryIntegration(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Teardown(t)

	ctx := context.Background()
	contestID := seedContest(t, td)
	subID := seedSubmission(t, td, contestID)
	repo := NewSnapshotRepository(td.Pool)

	ingestion := &models.SnapshotIngestion{
		ID:         uuid.New(),
		SnapshotID: "snap-1",
		Status:     models.SnapshotReceived,
	}
	require.NoError(t, repo.Create(ctx, ingestion))

	t.Run("duplicate snapshot id rejected", func(t *testing.T) {
		dup := &models.SnapshotIngestion{
			ID:         uuid.New(),
			SnapshotID: "snap-1",
			Status:     models.SnapshotReceived,
		}
		err := repo.Create(ctx, dup)
		require.True(t, db.IsDuplicateKey(err))
	})

	t.Run("lifecycle", func(t *testing.T) {
		require.NoError(t, repo.MarkIngesting(ctx, ingestion.ID))
		row, err := repo.GetBySnapshotID(ctx, "snap-1")
		require.NoError(t, err)
		require.Equal(t, models.SnapshotIngesting, row.Status)
		require.Equal(t, 1, row.Attempts)

		require.NoError(t, repo.MarkIngested(ctx, ingestion.ID))
		row, err = repo.GetBySnapshotID(ctx, "snap-1")
		require.NoError(t, err)
		require.Equal(t, models.SnapshotIngested, row.Status)
		require.NotNil(t, row.IngestedAt)
	})

	t.Run("ingest payload updates submission stats", func(t *testing.T) {
		payload := []byte(`[{"url":"https://www.tiktok.com/@user/video/1","views":1234,"likes":56}]`)
		require.NoError(t, repo.IngestPayload(ctx, "snap-1", payload))

		subRepo := NewSubmissionRepository(td.Pool)
		sub, err := subRepo.GetByID(ctx, subID)
		require.NoError(t, err)
		require.Equal(t, int64(1234), sub.Views)
		require.Equal(t, int64(56), sub.Likes)
		// fetching_stats advances once stats land.
		require.Equal(t, models.ProcessingCheckingHashtags, sub.ProcessingStatus)
	})

	t.Run("provider error flags invalid stats", func(t *testing.T) {
		payload := []byte(`[{"url":"https://www.tiktok.com/@user/video/1","error":"dead_page"}]`)
		require.NoError(t, repo.IngestPayload(ctx, "snap-1", payload))

		subRepo := NewSubmissionRepository(td.Pool)
		sub, err := subRepo.GetByID(ctx, subID)
		require.NoError(t, err)
		require.True(t, sub.InvalidStats)
	})
}
