package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"socialflow/internal/domain"
)

type publishRequest struct {
	Platform  string   `json:"platform"`
	Content   string   `json:"content"`
	MediaURLs []string `json:"media_urls"`
}

type scheduleRequest struct {
	Platform      string `json:"platform"`
	Content       string `json:"content"`
	ScheduledTime string `json:"scheduled_time"`
}

type postResponse struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	ContentText     string `json:"content_text"`
	ScheduledTime   string `json:"scheduled_time"`
	Status          string `json:"status"`
	ErrorMessage    string `json:"error_message,omitempty"`
	PlatformPostURL string `json:"platform_post_url,omitempty"`
	RetryCount      int    `json:"retry_count"`
}

// PublishPost publishes immediately, or starts account linking when the
// platform has no usable account. The two outcomes are discriminated in the
// response body.
func (a *App) PublishPost(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	platform, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	outcome, err := a.Manager.PublishOrLink(r.Context(), platform, req.Content, req.MediaURLs)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if !outcome.Published {
		a.json(w, http.StatusOK, map[string]any{
			"published":         false,
			"authorization_url": outcome.AuthorizationURL,
		})
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"published": true,
		"post_url":  outcome.PostURL,
	})
}

// CreateScheduledPost queues a post for a strictly future time.
func (a *App) CreateScheduledPost(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	platform, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	scheduledTime, err := time.Parse(time.RFC3339, req.ScheduledTime)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "scheduled_time must be RFC 3339")
		return
	}

	post, err := a.Manager.Schedule(r.Context(), platform, req.Content, scheduledTime)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, postToResponse(post))
}

// ListScheduledPosts returns the ledger.
func (a *App) ListScheduledPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.Manager.List(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]postResponse, 0, len(posts))
	for i := range posts {
		items = append(items, postToResponse(&posts[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// GetScheduledPost returns one ledger entry.
func (a *App) GetScheduledPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.Manager.Post(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, postToResponse(post))
}

// CancelScheduledPost cancels a pending post.
func (a *App) CancelScheduledPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.Manager.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, postToResponse(post))
}

// RetryScheduledPost re-attempts a failed post.
func (a *App) RetryScheduledPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.Manager.Retry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, postToResponse(post))
}

func postToResponse(post *domain.ScheduledPost) postResponse {
	return postResponse{
		ID:              post.ID,
		AccountID:       post.AccountID,
		ContentText:     post.ContentText,
		ScheduledTime:   post.ScheduledTime.UTC().Format(time.RFC3339),
		Status:          string(post.Status),
		ErrorMessage:    post.ErrorMessage,
		PlatformPostURL: post.PlatformPostURL,
		RetryCount:      post.RetryCount,
	}
}
