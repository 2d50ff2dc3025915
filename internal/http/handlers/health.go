package handlers

import "net/http"

// Health reports liveness. The agent has no readiness distinction: if the
// router answers, the agent is up.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "socialflow-agent",
	})
}
