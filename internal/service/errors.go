package service

import "fmt"

// ValidationError represents a request that cannot be acted on as given.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError represents a missing submission, appeal or contest.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError represents an action rejected because another action on
// the same submission is still in flight.
type ConflictError struct {
	SubmissionID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("submission %d already has an action in flight", e.SubmissionID)
}

// RateLimitError represents an action refused by a client-enforced
// rate-limit window.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// ProcessingError represents an internal failure while dispatching an
// action.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}
