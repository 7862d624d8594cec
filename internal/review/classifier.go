// Package review derives user-facing review state from the raw,
// independently-settable status fields on a submission. Every rule that
// decides how a submission is presented lives here so precedence is
// testable in one place instead of scattered across dashboard views.
package review

import "github.com/clipcontest/submission-review-go/internal/models"

// Bucket is the single user-facing classification of a submission.
type Bucket string

// Bucket constants.
const (
	BucketPending  Bucket = "pending"
	BucketApproved Bucket = "approved"
	BucketRejected Bucket = "rejected"
)

// inFlightStages are the pipeline stages that always read as pending,
// regardless of any stale content review decision left over from a prior
// processing cycle.
var inFlightStages = map[models.ProcessingStatus]bool{
	models.ProcessingUploaded:            true,
	models.ProcessingFetchingStats:       true,
	models.ProcessingCheckingHashtags:    true,
	models.ProcessingCheckingDescription: true,
	models.ProcessingWaitingReview:       true,
}

// Classify maps a submission's raw status fields to its review bucket.
//
// Precedence, highest first:
//  1. content_review_status == rejected  -> rejected (terminal)
//  2. processing_status in-flight        -> pending
//  3. content_review_status == approved  -> approved
//  4. anything else                      -> pending
//
// Rule 2 deliberately overrides an approved content review: the two fields
// are updated independently server-side, and a submission that re-entered
// the pipeline must not show as approved mid-flight. Hashtag, description
// and ownership statuses are informational and never change the bucket.
func Classify(sub *models.Submission) Bucket {
	if sub.ContentReviewStatus == models.ContentReviewRejected {
		return BucketRejected
	}
	if inFlightStages[sub.ProcessingStatus] {
		return BucketPending
	}
	if sub.ContentReviewStatus == models.ContentReviewApproved {
		return BucketApproved
	}
	return BucketPending
}
