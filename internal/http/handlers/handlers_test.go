package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"socialflow/internal/backend"
	"socialflow/internal/domain"
	"socialflow/internal/generate"
	"socialflow/internal/infra"
	"socialflow/internal/ingest"
	"socialflow/internal/poll"
	"socialflow/internal/publish"
	"socialflow/internal/social"
	"socialflow/internal/storage"
	"socialflow/internal/store"
)

// stubBackend implements every backend slice the app consumes.
type stubBackend struct {
	mu         sync.Mutex
	upload     *domain.ContentUpload
	uploadErr  error
	genStatus  *backend.JobSnapshot
	initiation *backend.OAuthInitiation
	account    *domain.SocialAccount
	receipt    *backend.PublishReceipt
}

func (s *stubBackend) ExtractFile(ctx context.Context, filename string, data []byte) (*domain.ContentUpload, error) {
	return s.upload, s.uploadErr
}

func (s *stubBackend) ExtractText(ctx context.Context, text string) (*domain.ContentUpload, error) {
	return s.upload, s.uploadErr
}

func (s *stubBackend) ExtractURL(ctx context.Context, rawURL string) (*domain.ContentUpload, error) {
	return s.upload, s.uploadErr
}

func (s *stubBackend) StartGeneration(ctx context.Context, contentID string, platforms []domain.Platform, locale string) (string, error) {
	return "task-1", nil
}

func (s *stubBackend) GenerationStatus(ctx context.Context, taskID string) (*backend.JobSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.genStatus, nil
}

func (s *stubBackend) StartImageTask(ctx context.Context, contentID, prompt string) (string, error) {
	return "img-1", nil
}

func (s *stubBackend) ImageTaskStatus(ctx context.Context, taskID string) (*backend.JobSnapshot, error) {
	return &backend.JobSnapshot{TaskID: taskID, Status: domain.JobStatusCompleted}, nil
}

func (s *stubBackend) InitiateOAuth(ctx context.Context, platform domain.Platform) (*backend.OAuthInitiation, error) {
	return s.initiation, nil
}

func (s *stubBackend) ConnectAccount(ctx context.Context, platform domain.Platform, code, state string) (*domain.SocialAccount, error) {
	return s.account, nil
}

func (s *stubBackend) DisconnectAccount(ctx context.Context, accountID string) error { return nil }

func (s *stubBackend) DirectPost(ctx context.Context, platform domain.Platform, content string, mediaURLs []string) (*backend.PublishReceipt, error) {
	return s.receipt, nil
}

func (s *stubBackend) CreateScheduledPost(ctx context.Context, accountID, contentText string, scheduledTime time.Time) (string, error) {
	return "sched-1", nil
}

func (s *stubBackend) CancelScheduledPost(ctx context.Context, postID string) error { return nil }

func (s *stubBackend) RetryScheduledPost(ctx context.Context, postID string) (*backend.PublishReceipt, error) {
	return s.receipt, nil
}

func newTestApp(t *testing.T, stub *stubBackend) *App {
	t.Helper()
	discard := infra.Logger(zerolog.New(io.Discard))
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	pending, err := social.NewFilePendingStore(files, "test-secret", time.Minute, &discard)
	if err != nil {
		t.Fatalf("pending store: %v", err)
	}
	accounts := store.NewMemoryAccountStore()
	posts := store.NewMemoryPostStore()
	coordinator := social.NewCoordinator(stub, pending, accounts, &discard)
	cfg := poll.Config{Interval: time.Millisecond, MaxPolls: 60, MaxConsecutiveErrors: 5, Logger: &discard}
	return &App{
		Gateway:     ingest.NewGateway(stub, &discard),
		Registry:    generate.NewRegistry(stub, cfg, &discard, nil),
		Coordinator: coordinator,
		Manager:     publish.NewManager(stub, coordinator, posts, &discard),
		Logger:      &discard,
		Locale:      "en",
	}
}

func TestCreateSubmissionTextHappyPath(t *testing.T) {
	stub := &stubBackend{upload: &domain.ContentUpload{
		ID: "upload-1", SourceKind: domain.SourceKindText, WordCount: 42,
	}}
	app := newTestApp(t, stub)

	req := httptest.NewRequest("POST", "/v1/submissions", strings.NewReader(`{"text":"hello world"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	app.CreateSubmission(rr, req)

	if rr.Code != 201 {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var payload uploadResponse
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.ID != "upload-1" || payload.WordCount != 42 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestCreateSubmissionMalformedURLIs400(t *testing.T) {
	app := newTestApp(t, &stubBackend{})

	req := httptest.NewRequest("POST", "/v1/submissions", strings.NewReader(`{"url":"not a url"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	app.CreateSubmission(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestStartGenerationRejectsUnknownPlatform(t *testing.T) {
	app := newTestApp(t, &stubBackend{})

	body := `{"content_upload_id":"u1","platforms":["myspace"]}`
	req := httptest.NewRequest("POST", "/v1/generations", strings.NewReader(body))
	rr := httptest.NewRecorder()
	app.StartGeneration(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestStartGenerationReturnsSessionHandle(t *testing.T) {
	stub := &stubBackend{genStatus: &backend.JobSnapshot{
		TaskID: "task-1", Status: domain.JobStatusCompleted,
		Fragments: []domain.Fragment{domain.LinkedInPost{Text: "hi"}},
	}}
	app := newTestApp(t, stub)

	body := `{"content_upload_id":"u1","platforms":["linkedin"]}`
	req := httptest.NewRequest("POST", "/v1/generations", strings.NewReader(body))
	rr := httptest.NewRecorder()
	app.StartGeneration(rr, req)

	if rr.Code != 202 {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}
	var payload generationResponse
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.SessionID == "" {
		t.Fatalf("missing session id")
	}

	session, ok := app.Registry.Get(payload.SessionID)
	if !ok {
		t.Fatalf("session not registered")
	}
	select {
	case <-session.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("session did not settle")
	}
	if got := session.Snapshot().State; got != poll.StateCompleted {
		t.Fatalf("state = %s, want completed", got)
	}
}

func TestPublishPostDiscriminatesLinkOutcome(t *testing.T) {
	stub := &stubBackend{initiation: &backend.OAuthInitiation{
		AuthorizationURL: "https://provider/auth", State: "s1",
	}}
	app := newTestApp(t, stub)

	body := `{"platform":"linkedin","content":"hello"}`
	req := httptest.NewRequest("POST", "/v1/posts", strings.NewReader(body))
	rr := httptest.NewRecorder()
	app.PublishPost(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["published"] != false || payload["authorization_url"] != "https://provider/auth" {
		t.Fatalf("payload = %v, want the link outcome", payload)
	}
}

func TestCreateScheduledPostRejectsPastTime(t *testing.T) {
	stub := &stubBackend{}
	app := newTestApp(t, stub)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	body := `{"platform":"linkedin","content":"hello","scheduled_time":"` + past + `"}`
	req := httptest.NewRequest("POST", "/v1/scheduled-posts", strings.NewReader(body))
	rr := httptest.NewRecorder()
	app.CreateScheduledPost(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400: %s", rr.Code, rr.Body.String())
	}
}
