package domain

import "time"

// PostStatus enumerates scheduled post lifecycle states.
type PostStatus string

const (
	PostStatusPending    PostStatus = "pending"
	PostStatusPublishing PostStatus = "publishing"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
	PostStatusCancelled  PostStatus = "cancelled"
)

// ScheduledPost is a post queued for future (or immediate) publishing.
type ScheduledPost struct {
	ID              string
	AccountID       string
	ContentText     string
	ScheduledTime   time.Time
	Status          PostStatus
	ErrorMessage    string
	PlatformPostURL string
	RetryCount      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanCancel reports whether cancellation is valid for the current status.
func (p ScheduledPost) CanCancel() bool { return p.Status == PostStatusPending }

// CanRetry reports whether a publish retry is valid for the current status.
func (p ScheduledPost) CanRetry() bool { return p.Status == PostStatusFailed }
