package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"socialflow/internal/domain"
	"socialflow/internal/generate"
	"socialflow/pkg/zip"
)

type generationRequest struct {
	ContentUploadID string   `json:"content_upload_id"`
	Platforms       []string `json:"platforms"`
	Locale          string   `json:"locale"`
	WithImage       bool     `json:"with_image"`
	ImagePrompt     string   `json:"image_prompt"`
}

type generationResponse struct {
	SessionID string            `json:"session_id"`
	State     string            `json:"state"`
	TaskID    string            `json:"task_id,omitempty"`
	Error     string            `json:"error,omitempty"`
	Fragments map[string]any    `json:"fragments"`
	Image     *imageResponse    `json:"image,omitempty"`
	Platforms []domain.Platform `json:"platforms"`
}

type imageResponse struct {
	State  string       `json:"state"`
	Error  string       `json:"error,omitempty"`
	Assets []imageAsset `json:"assets,omitempty"`
}

type imageAsset struct {
	URL    string `json:"url"`
	Format string `json:"format,omitempty"`
}

// StartGeneration begins a generation session and returns its handle.
func (a *App) StartGeneration(w http.ResponseWriter, r *http.Request) {
	var req generationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	platforms := make([]domain.Platform, 0, len(req.Platforms))
	for _, raw := range req.Platforms {
		p, err := domain.ParsePlatform(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		platforms = append(platforms, p)
	}
	locale := req.Locale
	if locale == "" {
		locale = a.Locale
	}

	session, err := a.Registry.Start(r.Context(), generate.Request{
		ContentUploadID: req.ContentUploadID,
		Platforms:       platforms,
		Locale:          locale,
		WithImage:       req.WithImage,
		ImagePrompt:     req.ImagePrompt,
	})
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusAccepted, snapshotToResponse(session.Snapshot()))
}

// ListGenerations returns every known session.
func (a *App) ListGenerations(w http.ResponseWriter, r *http.Request) {
	snapshots := a.Registry.Snapshots()
	items := make([]generationResponse, 0, len(snapshots))
	for _, snap := range snapshots {
		items = append(items, snapshotToResponse(snap))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// GenerationStatus returns one session.
func (a *App) GenerationStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := a.Registry.Get(chi.URLParam(r, "id"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown session")
		return
	}
	a.json(w, http.StatusOK, snapshotToResponse(session.Snapshot()))
}

// CancelGeneration aborts a session's jobs.
func (a *App) CancelGeneration(w http.ResponseWriter, r *http.Request) {
	if err := a.Registry.Cancel(chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

// ExportGeneration downloads a session's fragments as a zip archive.
func (a *App) ExportGeneration(w http.ResponseWriter, r *http.Request) {
	session, ok := a.Registry.Get(chi.URLParam(r, "id"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown session")
		return
	}
	snap := session.Snapshot()
	if len(snap.Fragments) == 0 {
		a.error(w, http.StatusConflict, "conflict", "session has no fragments yet")
		return
	}

	entries := make([]zip.Entry, 0, len(snap.Fragments))
	for _, f := range snap.Fragments {
		entries = append(entries, zip.Entry{
			Filename: exportFilename(f),
			Data:     []byte(f.Body()),
		})
	}
	archive := zip.Archive(entries)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=content-%s.zip", snap.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func exportFilename(f domain.Fragment) string {
	switch f.Platform() {
	case domain.PlatformBlog:
		return "blog.html"
	case domain.PlatformYouTube:
		return "youtube_script.md"
	case domain.PlatformTwitter:
		return "twitter_thread.txt"
	case domain.PlatformEmail:
		return "email_newsletter.txt"
	}
	return string(f.Platform()) + ".txt"
}

func snapshotToResponse(snap generate.Snapshot) generationResponse {
	resp := generationResponse{
		SessionID: snap.ID,
		State:     string(snap.State),
		TaskID:    snap.TaskID,
		Error:     snap.Error,
		Fragments: fragmentsToResponse(snap.Fragments),
		Platforms: snap.Platforms,
	}
	if snap.Image != nil {
		img := &imageResponse{State: string(snap.Image.State), Error: snap.Image.Error}
		for _, asset := range snap.Image.Assets {
			img.Assets = append(img.Assets, imageAsset{URL: asset.URL, Format: asset.Format})
		}
		resp.Image = img
	}
	return resp
}

func fragmentsToResponse(fragments []domain.Fragment) map[string]any {
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
