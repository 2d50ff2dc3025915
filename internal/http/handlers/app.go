// Package handlers implements the agent's local HTTP API: submissions,
// generation sessions, account linking (including the OAuth callback), and
// the scheduled-post ledger.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"socialflow/internal/domain"
	"socialflow/internal/generate"
	"socialflow/internal/infra"
	"socialflow/internal/ingest"
	"socialflow/internal/publish"
	"socialflow/internal/social"
)

type App struct {
	Gateway     *ingest.Gateway
	Registry    *generate.Registry
	Coordinator *social.Coordinator
	Manager     *publish.Manager
	Logger      *infra.Logger
	// Locale is the default content locale for generation requests.
	Locale string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]any{"error": map[string]string{"code": kind, "message": message}})
}

// domainError maps sentinel errors onto HTTP responses.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrExtraction),
		errors.Is(err, domain.ErrInvalidScheduleTime),
		errors.Is(err, domain.ErrInvalidCallback):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrDenied):
		a.error(w, http.StatusForbidden, "denied", err.Error())
	case errors.Is(err, domain.ErrSessionLost):
		a.error(w, http.StatusGone, "session_lost", err.Error())
	case errors.Is(err, domain.ErrInitiation),
		errors.Is(err, domain.ErrPublish),
		errors.Is(err, domain.ErrGenerationFailed):
		a.error(w, http.StatusBadGateway, "upstream", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("handlers: unexpected error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
