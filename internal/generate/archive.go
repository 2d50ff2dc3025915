package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"socialflow/internal/domain"
	"socialflow/internal/storage"
)

// Archiver persists settled results. *storage.FileStore satisfies it.
type Archiver interface {
	Write(ctx context.Context, key string, data []byte) error
}

var _ Archiver = (*storage.FileStore)(nil)

// archivedResult is the on-disk shape of a settled session. Fragments keep
// the backend's platform-keyed wire layout so archives stay readable by the
// same tooling.
type archivedResult struct {
	SessionID       string          `json:"session_id"`
	ContentUploadID string          `json:"content_upload_id"`
	TaskID          string          `json:"task_id"`
	ArchivedAt      string          `json:"archived_at"`
	ContentJSON     map[string]any  `json:"content_json"`
	Images          []archivedImage `json:"images,omitempty"`
}

type archivedImage struct {
	URL    string `json:"url"`
	Format string `json:"format,omitempty"`
}

func archiveSnapshot(ctx context.Context, archive Archiver, snap Snapshot) error {
	record := archivedResult{
		SessionID:       snap.ID,
		ContentUploadID: snap.ContentUploadID,
		TaskID:          snap.TaskID,
		ArchivedAt:      time.Now().UTC().Format(time.RFC3339),
		ContentJSON:     encodeFragments(snap.Fragments),
	}
	if snap.Image != nil {
		for _, asset := range snap.Image.Assets {
			record.Images = append(record.Images, archivedImage{URL: asset.URL, Format: asset.Format})
		}
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("generate: encode archive: %w", err)
	}
	return archive.Write(ctx, "results/"+snap.ID+".json", data)
}

// encodeFragments renders fragments under the backend's content_json keys.
func encodeFragments(fragments []domain.Fragment) map[string]any {
	out := make(map[string]any, len(fragments))
	for _, f := range fragments {
		switch v := f.(type) {
		case domain.LinkedInPost:
			out["linkedin"] = map[string]any{"post_text": v.Text, "hashtags": v.Hashtags}
		case domain.TwitterThread:
			out["x_thread"] = v.Tweets
		case domain.YouTubeScript:
			out["youtube"] = map[string]any{"title": v.Title, "script": v.Script, "description": v.Description}
		case domain.BlogArticle:
			out["long_blog"] = map[string]any{"title": v.Title, "html": v.HTML, "word_count": v.WordCount}
		case domain.EmailNewsletter:
			out["email_newsletter"] = map[string]any{"subject": v.Subject, "plain_text": v.Text}
		}
	}
	return out
}
