package domain

// JobStatus enumerates the lifecycle states a background generation or image
// job reports through the jobs endpoint.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusTimedOut  JobStatus = "timed_out"
)

// Terminal reports whether no further transition can occur. A terminal job is
// never mutated again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusTimedOut:
		return true
	}
	return false
}

// ImageAsset is a single generated image reference produced by an image job.
type ImageAsset struct {
	URL    string
	Format string
}
