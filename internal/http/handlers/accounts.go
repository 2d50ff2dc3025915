package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"socialflow/internal/domain"
	"socialflow/internal/social"
)

type initiateRequest struct {
	Platform string `json:"platform"`
}

type accountResponse struct {
	ID          string `json:"id"`
	Platform    string `json:"platform"`
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle,omitempty"`
	IsActive    bool   `json:"is_active"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	ConnectedAt string `json:"connected_at,omitempty"`
}

// InitiateOAuth starts the linking flow and returns the authorization URL the
// browser must visit.
func (a *App) InitiateOAuth(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	platform, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	authURL, err := a.Coordinator.Initiate(r.Context(), platform)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"authorization_url": authURL})
}

// OAuthCallback receives the provider redirect and settles the pending
// authorization. The response is plain text aimed at the browser tab the
// redirect landed in.
func (a *App) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := social.CallbackParams{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		ErrorCode:        q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}

	account, err := a.Coordinator.Callback(r.Context(), params)
	if err != nil {
		status := http.StatusBadRequest
		message := "Authorization failed. You can close this tab and try again."
		switch {
		case errors.Is(err, domain.ErrDenied):
			status = http.StatusForbidden
			message = "Authorization was denied. You can close this tab."
		case errors.Is(err, domain.ErrSessionLost):
			status = http.StatusGone
			message = "This authorization link is no longer valid. Start the connection again."
		}
		a.Logger.Warn().Err(err).Msg("handlers: oauth callback rejected")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(message))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(account.DisplayName + " connected. You can close this tab."))
}

// ListAccounts returns the active account per linkable platform.
func (a *App) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.Coordinator.Accounts(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, accountToResponse(account))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// DisconnectAccount revokes the platform's linked account.
func (a *App) DisconnectAccount(w http.ResponseWriter, r *http.Request) {
	platform, err := domain.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := a.Coordinator.Disconnect(r.Context(), platform); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

func accountToResponse(account domain.SocialAccount) accountResponse {
	resp := accountResponse{
		ID:          account.ID,
		Platform:    string(account.Platform),
		DisplayName: account.DisplayName,
		Handle:      account.Handle,
		IsActive:    account.IsActive,
	}
	if !account.ExpiresAt.IsZero() {
		resp.ExpiresAt = account.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if !account.ConnectedAt.IsZero() {
		resp.ConnectedAt = account.ConnectedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
