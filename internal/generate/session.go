// Package generate runs content generation jobs: each session submits a
// backend job, polls it to a terminal state, and accumulates the per-platform
// fragments its responses carry. An optional image job polls on its own loop
// beside the content job.
package generate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"socialflow/internal/backend"
	"socialflow/internal/domain"
	"socialflow/internal/infra"
	"socialflow/internal/poll"
)

// Backend is the slice of the backend client a session needs.
type Backend interface {
	StartGeneration(ctx context.Context, contentID string, platforms []domain.Platform, locale string) (string, error)
	GenerationStatus(ctx context.Context, taskID string) (*backend.JobSnapshot, error)
	StartImageTask(ctx context.Context, contentID, prompt string) (string, error)
	ImageTaskStatus(ctx context.Context, taskID string) (*backend.JobSnapshot, error)
}

var _ Backend = (*backend.Client)(nil)

// Request describes one generation run. WithImage runs an image job alongside
// the content job; the two poll independently and neither outcome affects the
// other.
type Request struct {
	ContentUploadID string
	Platforms       []domain.Platform
	Locale          string
	WithImage       bool
	ImagePrompt     string
}

// ImageSnapshot is the image job's slice of a session snapshot.
type ImageSnapshot struct {
	State  poll.State
	Error  string
	Assets []domain.ImageAsset
}

// Snapshot is a point-in-time view of a session, safe to hold after the
// session moves on.
type Snapshot struct {
	ID              string
	ContentUploadID string
	Platforms       []domain.Platform
	State           poll.State
	TaskID          string
	Error           string
	Fragments       []domain.Fragment
	Image           *ImageSnapshot
}

// Session drives one generation job (plus an optional image job) to a
// terminal state. All reads go through Snapshot.
type Session struct {
	id      string
	client  Backend
	cfg     poll.Config
	logger  *infra.Logger
	req     Request
	archive Archiver

	cancel context.CancelFunc
	done   chan struct{}

	mu         sync.Mutex
	state      poll.State
	taskID     string
	runErr     error
	results    *domain.ResultSet
	imageState poll.State
	imageErr   error
	images     []domain.ImageAsset
}

func newSession(client Backend, cfg poll.Config, logger *infra.Logger, archive Archiver, req Request) *Session {
	return &Session{
		id:         uuid.NewString(),
		client:     client,
		cfg:        cfg,
		logger:     logger,
		req:        req,
		archive:    archive,
		done:       make(chan struct{}),
		state:      poll.StateIdle,
		results:    domain.NewResultSet(),
		imageState: poll.StateIdle,
	}
}

// ID returns the session's handle.
func (s *Session) ID() string { return s.id }

// Done is closed once the session (including any image job) has settled.
func (s *Session) Done() <-chan struct{} { return s.done }

// Cancel aborts the session's jobs. Responses already in flight are discarded.
func (s *Session) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Snapshot returns a detached view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:              s.id,
		ContentUploadID: s.req.ContentUploadID,
		Platforms:       append([]domain.Platform(nil), s.req.Platforms...),
		State:           s.state,
		TaskID:          s.taskID,
		Fragments:       s.results.Snapshot(),
	}
	if s.runErr != nil {
		snap.Error = s.runErr.Error()
	}
	if s.req.WithImage {
		img := &ImageSnapshot{
			State:  s.imageState,
			Assets: append([]domain.ImageAsset(nil), s.images...),
		}
		if s.imageErr != nil {
			img.Error = s.imageErr.Error()
		}
		snap.Image = img
	}
	return snap
}

// run executes the session to completion. Called once, on its own goroutine.
// The image job, when requested, runs on its own timer loop from the start:
// it shares only the context with the generation job, so either side can fail
// without touching the other.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	var imageDone chan struct{}
	if s.req.WithImage {
		imageDone = make(chan struct{})
		go func() {
			defer close(imageDone)
			s.setImageState(poll.StateSubmitting)
			result := poll.Run(ctx, s.cfg, imageDriver{s})
			s.mu.Lock()
			s.imageState = result.State
			s.imageErr = result.Err
			s.mu.Unlock()
		}()
	}

	s.setState(poll.StateSubmitting)
	result := poll.Run(ctx, s.cfg, generationDriver{s})

	s.mu.Lock()
	s.state = result.State
	s.taskID = result.TaskID
	s.runErr = result.Err
	s.mu.Unlock()

	s.logger.Info().
		Str("session_id", s.id).
		Str("task_id", result.TaskID).
		Str("state", string(result.State)).
		Int("polls", result.Polls).
		Msg("generate: session settled")

	if imageDone != nil {
		<-imageDone
	}

	if result.State == poll.StateCompleted && s.archive != nil {
		if err := archiveSnapshot(ctx, s.archive, s.Snapshot()); err != nil {
			s.logger.Warn().Err(err).Str("session_id", s.id).Msg("generate: archive failed")
		}
	}
}

func (s *Session) setState(state poll.State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) setImageState(state poll.State) {
	s.mu.Lock()
	s.imageState = state
	s.mu.Unlock()
}

// generationDriver adapts the content job to the poll engine.
type generationDriver struct{ s *Session }

func (d generationDriver) Start(ctx context.Context) (string, error) {
	taskID, err := d.s.client.StartGeneration(ctx, d.s.req.ContentUploadID, d.s.req.Platforms, d.s.req.Locale)
	if err != nil {
		return "", err
	}
	d.s.mu.Lock()
	d.s.taskID = taskID
	d.s.state = poll.StatePolling
	d.s.mu.Unlock()
	return taskID, nil
}

func (d generationDriver) Poll(ctx context.Context, taskID string) (poll.Update, error) {
	snap, err := d.s.client.GenerationStatus(ctx, taskID)
	if err != nil {
		return poll.Update{}, err
	}
	update := poll.Update{Status: snap.Status, ErrorDetail: snap.ErrorDetail}
	if len(snap.Fragments) > 0 {
		fragments := snap.Fragments
		update.Apply = func() {
			d.s.mu.Lock()
			d.s.results.Merge(fragments...)
			d.s.mu.Unlock()
		}
	}
	return update, nil
}

// imageDriver adapts the image job to the poll engine.
type imageDriver struct{ s *Session }

func (d imageDriver) Start(ctx context.Context) (string, error) {
	taskID, err := d.s.client.StartImageTask(ctx, d.s.req.ContentUploadID, d.s.req.ImagePrompt)
	if err != nil {
		return "", err
	}
	d.s.setImageState(poll.StatePolling)
	return taskID, nil
}

func (d imageDriver) Poll(ctx context.Context, taskID string) (poll.Update, error) {
	snap, err := d.s.client.ImageTaskStatus(ctx, taskID)
	if err != nil {
		return poll.Update{}, err
	}
	update := poll.Update{Status: snap.Status, ErrorDetail: snap.ErrorDetail}
	if len(snap.Images) > 0 {
		images := snap.Images
		update.Apply = func() {
			d.s.mu.Lock()
			d.s.images = images
			d.s.mu.Unlock()
		}
	}
	return update, nil
}

func validateRequest(req Request) error {
	if req.ContentUploadID == "" {
		return errors.New("generate: content upload id is required")
	}
	if len(req.Platforms) == 0 {
		return errors.New("generate: at least one platform is required")
	}
	seen := map[domain.Platform]bool{}
	for _, p := range req.Platforms {
		if _, err := domain.ParsePlatform(string(p)); err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		if seen[p] {
			return fmt.Errorf("generate: duplicate platform %s", p)
		}
		seen[p] = true
	}
	return nil
}
