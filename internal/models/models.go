// Package models contains the data models and DTOs for the contest
// submission review service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Platform identifies the social platform a submission was posted on.
type Platform string

// Platform constants. Unrecognized provider values map to PlatformUnknown.
const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformUnknown   Platform = "unknown"
)

// ProcessingStatus is the ordered automated-ingestion stage of a submission.
type ProcessingStatus string

// Pipeline stages, in order. A submission normally advances
// uploaded -> fetching_stats -> checking_hashtags -> checking_description ->
// waiting_review -> approved.
const (
	ProcessingUploaded            ProcessingStatus = "uploaded"
	ProcessingFetchingStats       ProcessingStatus = "fetching_stats"
	ProcessingCheckingHashtags    ProcessingStatus = "checking_hashtags"
	ProcessingCheckingDescription ProcessingStatus = "checking_description"
	ProcessingWaitingReview       ProcessingStatus = "waiting_review"
	ProcessingApproved            ProcessingStatus = "approved"
)

// CheckStatus is the outcome of an automated hashtag or description check.
type CheckStatus string

// CheckStatus constants. ApprovedManual records an admin override of a
// failed automated check.
const (
	CheckPending        CheckStatus = "pending"
	CheckPass           CheckStatus = "pass"
	CheckFail           CheckStatus = "fail"
	CheckPendingReview  CheckStatus = "pending_review"
	CheckApprovedManual CheckStatus = "approved_manual"
)

// ContentReviewStatus is the human review decision on a submission.
type ContentReviewStatus string

// ContentReviewStatus constants.
const (
	ContentReviewPending  ContentReviewStatus = "pending"
	ContentReviewApproved ContentReviewStatus = "approved"
	ContentReviewRejected ContentReviewStatus = "rejected"
)

// OwnershipStatus records whether the claiming account has been confirmed
// as the owner of the underlying video. Informational only; it never
// affects the review bucket.
type OwnershipStatus string

// OwnershipStatus constants.
const (
	OwnershipPending   OwnershipStatus = "pending"
	OwnershipVerified  OwnershipStatus = "verified"
	OwnershipFailed    OwnershipStatus = "failed"
	OwnershipContested OwnershipStatus = "contested"
)

// AppealType identifies which automated check an appeal contests.
type AppealType string

// AppealType constants.
const (
	AppealHashtag     AppealType = "hashtag"
	AppealDescription AppealType = "description"
)

// AppealStatus is the lifecycle state of an appeal.
type AppealStatus string

// AppealStatus constants.
const (
	AppealPending  AppealStatus = "pending"
	AppealApproved AppealStatus = "approved"
	AppealDenied   AppealStatus = "denied"
)

// Submission is a single contest entry: an externally-hosted video plus
// platform metadata and the independent review-status fields.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Submission struct {
	ID        int64  `json:"id"`
	ContestID int64  `json:"contest_id"`
	UserID    string `json:"user_id"`

	VideoURL        string   `json:"video_url"`
	Platform        Platform `json:"platform"`
	TranscodeBucket *string  `json:"transcode_bucket,omitempty"`
	TranscodePath   *string  `json:"transcode_path,omitempty"`

	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
	Saves    int64 `json:"saves"`

	ProcessingStatus    ProcessingStatus    `json:"processing_status"`
	HashtagStatus       CheckStatus         `json:"hashtag_status"`
	DescriptionStatus   CheckStatus         `json:"description_status"`
	ContentReviewStatus ContentReviewStatus `json:"content_review_status"`
	OwnershipStatus     OwnershipStatus     `json:"mp4_ownership_status"`
	OwnershipReason     *string             `json:"mp4_ownership_reason,omitempty"`
	InvalidStats        bool                `json:"invalid_stats_flag"`
	Hidden              bool                `json:"hidden"`

	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	LastStatsRefreshAt *time.Time `json:"last_stats_refresh_at,omitempty"`
}

// Appeal is a creator-initiated request to re-review a failed automated
// check on a submission.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Appeal struct {
	ID            uuid.UUID    `json:"id"`
	SubmissionID  int64        `json:"submission_id"`
	AppealType    AppealType   `json:"appeal_type"`
	Reason        string       `json:"reason"`
	Status        AppealStatus `json:"status"`
	AdminResponse *string      `json:"admin_response,omitempty"`
	ReviewerID    *string      `json:"reviewer_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	ResolvedAt    *time.Time   `json:"resolved_at,omitempty"`
}

// Contest is static configuration for a branded contest.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Contest struct {
	ID                  int64     `json:"id"`
	Title               string    `json:"title"`
	StartsAt            time.Time `json:"starts_at"`
	EndsAt              time.Time `json:"ends_at"`
	RequiredHashtags    []string  `json:"required_hashtags"`
	DescriptionTemplate string    `json:"description_template"`
	CreatedAt           time.Time `json:"created_at"`
}

// ContestCategory groups submissions within a contest for ranking.
type ContestCategory struct {
	ID            int64  `json:"id"`
	ContestID     int64  `json:"contest_id"`
	Name          string `json:"name"`
	RankingMethod string `json:"ranking_method"`
}

// ContestPrize is a payout slot for a contest category.
type ContestPrize struct {
	ID          int64 `json:"id"`
	ContestID   int64 `json:"contest_id"`
	CategoryID  int64 `json:"category_id"`
	Rank        int   `json:"rank"`
	AmountCents int64 `json:"amount_cents"`
}

// SnapshotStatus is the lifecycle state of a provider snapshot ingestion.
type SnapshotStatus string

// SnapshotStatus constants.
const (
	SnapshotReceived  SnapshotStatus = "received"
	SnapshotIngesting SnapshotStatus = "ingesting"
	SnapshotIngested  SnapshotStatus = "ingested"
	SnapshotFailed    SnapshotStatus = "failed"
)

// SnapshotIngestion tracks a provider stats snapshot from webhook receipt
// through ingestion into the submissions table.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type SnapshotIngestion struct {
	ID           uuid.UUID      `json:"id"`
	SnapshotID   string         `json:"snapshot_id"`
	Status       SnapshotStatus `json:"status"`
	Attempts     int            `json:"attempts"`
	ErrorMessage *string        `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	IngestedAt   *time.Time     `json:"ingested_at,omitempty"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// SnapshotWebhookDTO is the provider webhook request body.
type SnapshotWebhookDTO struct {
	SnapshotID string `json:"snapshotId" binding:"required,max=100"`
	DatasetID  string `json:"datasetId" binding:"max=100"`
}

// AppealRequestDTO is the appeal submission request body.
type AppealRequestDTO struct {
	AppealType AppealType `json:"appealType" binding:"required,oneof=hashtag description"`
	Reason     string     `json:"reason" binding:"required,max=2000"`
}

// ResolveAppealDTO is the appeal resolution request body.
type ResolveAppealDTO struct {
	Approve       bool   `json:"approve"`
	AdminResponse string `json:"adminResponse" binding:"max=2000"`
	ReviewerID    string `json:"reviewerId" binding:"required,max=100"`
}
