package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Submission gateway.
	ErrExtraction = errors.New("extraction rejected")

	// Terminal poller outcomes. Timed-out is distinct from failed because a
	// timed-out job may still complete server-side.
	ErrGenerationFailed   = errors.New("generation failed")
	ErrGenerationTimedOut = errors.New("generation timed out")
	ErrNetworkAborted     = errors.New("polling aborted after repeated network errors")

	// Authorization coordinator outcomes.
	ErrInitiation      = errors.New("authorization initiation failed")
	ErrDenied          = errors.New("authorization denied")
	ErrInvalidCallback = errors.New("invalid authorization callback")
	ErrSessionLost     = errors.New("authorization session lost")

	// Publish/schedule manager outcomes.
	ErrPublish                = errors.New("publish failed")
	ErrInvalidScheduleTime    = errors.New("scheduled time must be in the future")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// Retryable reports whether the failure is worth retrying later. Network and
// timeout conditions are; rejections and invalid transitions are not.
func Retryable(err error) bool {
	return errors.Is(err, ErrGenerationTimedOut) ||
		errors.Is(err, ErrNetworkAborted) ||
		errors.Is(err, ErrPublish)
}
