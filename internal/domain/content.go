package domain

import "time"

// SourceKind enumerates the accepted submission inputs.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindText SourceKind = "text"
	SourceKindURL  SourceKind = "url"
)

// ContentUpload is the extraction service's record of submitted source
// material. Immutable once created; referenced by exactly one generation job.
type ContentUpload struct {
	ID               string
	SourceKind       SourceKind
	OriginalFilename string
	URL              string
	WordCount        int
	DetectedTopic    string
	Status           string
	ProcessedAt      time.Time
}
