package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"socialflow/internal/http/handlers"
	"socialflow/internal/middleware"
)

func NewRouter(app *handlers.App, logger zerolog.Logger, allowedOrigins []string) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/submissions", func(r chi.Router) {
		r.Post("/", app.CreateSubmission)
	})

	r.Route("/v1/generations", func(r chi.Router) {
		r.Post("/", app.StartGeneration)
		r.Get("/", app.ListGenerations)
		r.Get("/{id}", app.GenerationStatus)
		r.Post("/{id}/cancel", app.CancelGeneration)
		r.Get("/{id}/export", app.ExportGeneration)
	})

	r.Route("/v1/oauth", func(r chi.Router) {
		r.Post("/initiate", app.InitiateOAuth)
		r.Get("/callback", app.OAuthCallback)
	})

	r.Route("/v1/accounts", func(r chi.Router) {
		r.Get("/", app.ListAccounts)
		r.Post("/{platform}/disconnect", app.DisconnectAccount)
	})

	r.Post("/v1/posts", app.PublishPost)

	r.Route("/v1/scheduled-posts", func(r chi.Router) {
		r.Post("/", app.CreateScheduledPost)
		r.Get("/", app.ListScheduledPosts)
		r.Get("/{id}", app.GetScheduledPost)
		r.Post("/{id}/cancel", app.CancelScheduledPost)
		r.Post("/{id}/retry", app.RetryScheduledPost)
	})

	return r
}
