package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STATE_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("CALLBACK_BASE_URL", "")
	t.Setenv("POLL_INTERVAL_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("PollInterval = %v, want 2s", cfg.PollInterval)
	}
	if cfg.MaxPolls != 60 || cfg.MaxPollErrors != 5 {
		t.Fatalf("poll bounds = %d/%d, want 60/5", cfg.MaxPolls, cfg.MaxPollErrors)
	}
	if cfg.CallbackBaseURL != "http://localhost:8484" {
		t.Fatalf("CallbackBaseURL = %q, want port default inherited", cfg.CallbackBaseURL)
	}
}

func TestLoadConfigCallbackInheritsPort(t *testing.T) {
	t.Setenv("STATE_SECRET", "test-secret")
	t.Setenv("PORT", "1919")
	t.Setenv("CALLBACK_BASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.CallbackBaseURL != "http://localhost:1919" {
		t.Fatalf("CallbackBaseURL = %q, want http://localhost:1919", cfg.CallbackBaseURL)
	}
}

func TestLoadConfigRequiresStateSecret(t *testing.T) {
	t.Setenv("STATE_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without STATE_SECRET")
	}
}

func TestLoadConfigRejectsBadLocale(t *testing.T) {
	t.Setenv("STATE_SECRET", "test-secret")
	t.Setenv("CONTENT_LOCALE", "not a locale!!")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for invalid CONTENT_LOCALE")
	}
}

func TestLoadConfigSplitsOrigins(t *testing.T) {
	t.Setenv("STATE_SECRET", "test-secret")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, http://127.0.0.1:3000 ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %#v, want %#v", cfg.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}
