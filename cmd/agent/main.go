package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"socialflow/internal/backend"
	"socialflow/internal/domain"
	"socialflow/internal/generate"
	"socialflow/internal/http/handlers"
	httpapi "socialflow/internal/http/httpapi"
	"socialflow/internal/infra"
	"socialflow/internal/ingest"
	"socialflow/internal/poll"
	"socialflow/internal/publish"
	"socialflow/internal/social"
	"socialflow/internal/storage"
	"socialflow/internal/store"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	files, err := storage.NewFileStore(cfg.StatePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare state directory")
	}

	// State stores: Postgres when DATABASE_URL is set, otherwise memory plus
	// the state directory.
	var (
		accounts domain.AccountStore
		posts    domain.PostStore
		slot     social.Slot
	)
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()

		runner := infra.NewSQLRunner(pool, logger)
		if err := store.EnsureSchema(ctx, runner); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare schema")
		}
		accounts = store.NewPGAccountStore(runner)
		posts = store.NewPGPostStore(runner)
		slot = store.NewPGSlot(runner)
		logger.Info().Msg("state store: postgres")
	} else {
		accounts = store.NewMemoryAccountStore()
		posts = store.NewMemoryPostStore()
		logger.Info().Str("path", cfg.StatePath).Msg("state store: memory + files")
	}

	client, err := backend.NewClient(backend.Options{
		BaseURL:  cfg.BackendBaseURL,
		APIToken: cfg.BackendAPIToken,
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build backend client")
	}

	var pending *social.PendingStore
	if slot != nil {
		pending, err = social.NewPendingStore(slot, cfg.StateSecret, cfg.PendingAuthTTL, &logger)
	} else {
		pending, err = social.NewFilePendingStore(files, cfg.StateSecret, cfg.PendingAuthTTL, &logger)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pending store")
	}

	pollCfg := poll.Config{
		Interval:             cfg.PollInterval,
		MaxPolls:             cfg.MaxPolls,
		MaxConsecutiveErrors: cfg.MaxPollErrors,
		Logger:               &logger,
	}

	coordinator := social.NewCoordinator(client, pending, accounts, &logger)
	app := &handlers.App{
		Gateway:     ingest.NewGateway(client, &logger),
		Registry:    generate.NewRegistry(client, pollCfg, &logger, files),
		Coordinator: coordinator,
		Manager:     publish.NewManager(client, coordinator, posts, &logger),
		Logger:      &logger,
		Locale:      cfg.ContentLocale,
	}

	router := httpapi.NewRouter(app, logger, cfg.AllowedOrigins)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("agent API listening on :%s", cfg.Port)
		logger.Info().Msgf("OAuth callback at %s/v1/oauth/callback", cfg.CallbackBaseURL)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("agent stopped")
}
