package review

import (
	"time"

	"github.com/clipcontest/submission-review-go/internal/models"
)

// Stage-specific staleness thresholds. Stats fetching depends on a
// third-party scraper and is expected to complete quickly; the remaining
// stages get a wider window.
const (
	StuckFetchingStatsAfter = 30 * time.Minute
	StuckDefaultAfter       = 60 * time.Minute

	// StatsRefreshWindow rate-limits manual stats refreshes per submission.
	StatsRefreshWindow = 24 * time.Hour
)

// lastAdvance returns the timestamp the stuck thresholds are measured
// from: updated_at, falling back to created_at when updated_at is unset.
func lastAdvance(sub *models.Submission) time.Time {
	if sub.UpdatedAt.IsZero() {
		return sub.CreatedAt
	}
	return sub.UpdatedAt
}

// IsStuck reports whether a submission has sat in its current pipeline
// stage past the stage's threshold. Terminal and waiting_review stages are
// never stuck. Advisory only; callers must not mutate state based on it.
func IsStuck(sub *models.Submission, now time.Time) bool {
	switch sub.ProcessingStatus {
	case models.ProcessingApproved, models.ProcessingWaitingReview:
		return false
	case models.ProcessingFetchingStats:
		return now.Sub(lastAdvance(sub)) > StuckFetchingStatsAfter
	default:
		return now.Sub(lastAdvance(sub)) > StuckDefaultAfter
	}
}

// HasFailed reports whether a submission's automated processing should be
// presented as failed rather than merely slow: either the provider flagged
// the stats as invalid, or the stats fetch itself is stuck.
func HasFailed(sub *models.Submission, now time.Time) bool {
	if sub.InvalidStats {
		return true
	}
	return sub.ProcessingStatus == models.ProcessingFetchingStats && IsStuck(sub, now)
}

// IsActivelyProcessing reports whether a submission still warrants
// background refresh polling. Approved and waiting_review submissions do
// not; neither does a stats fetch that is invalid or stuck, nor any other
// stage that is stuck - those need operator action, not more polling.
func IsActivelyProcessing(sub *models.Submission, now time.Time) bool {
	switch sub.ProcessingStatus {
	case models.ProcessingApproved, models.ProcessingWaitingReview:
		return false
	case models.ProcessingFetchingStats:
		return !sub.InvalidStats && !IsStuck(sub, now)
	default:
		return !IsStuck(sub, now)
	}
}

// CanRefreshStats reports whether a manual stats refresh is allowed:
// never refreshed before, or at least StatsRefreshWindow since the last
// one. The boundary is inclusive - exactly 24h ago is allowed.
func CanRefreshStats(sub *models.Submission, now time.Time) bool {
	if sub.LastStatsRefreshAt == nil {
		return true
	}
	return now.Sub(*sub.LastStatsRefreshAt) >= StatsRefreshWindow
}
