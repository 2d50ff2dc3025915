package generate

import (
	"context"
	"sync"

	"socialflow/internal/domain"
	"socialflow/internal/infra"
	"socialflow/internal/poll"
)

// Registry owns live and settled sessions, keyed by session id. Sessions stay
// queryable after they settle; restarting the agent forgets them (archived
// results survive on disk).
type Registry struct {
	client  Backend
	cfg     poll.Config
	logger  *infra.Logger
	archive Archiver

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry constructs a Registry. archive may be nil to disable archiving.
func NewRegistry(client Backend, cfg poll.Config, logger *infra.Logger, archive Archiver) *Registry {
	return &Registry{
		client:   client,
		cfg:      cfg,
		logger:   logger,
		archive:  archive,
		sessions: make(map[string]*Session),
	}
}

// Start validates the request, registers a session, and begins driving it in
// the background. The returned session is immediately queryable.
func (r *Registry) Start(ctx context.Context, req Request) (*Session, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	session := newSession(r.client, r.cfg, r.logger, r.archive, req)
	// The session outlives the request that started it: drop the caller's
	// cancellation but keep its values.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	session.cancel = cancel

	r.mu.Lock()
	r.sessions[session.id] = session
	r.mu.Unlock()

	r.logger.Info().
		Str("session_id", session.id).
		Str("content_id", req.ContentUploadID).
		Int("platforms", len(req.Platforms)).
		Bool("with_image", req.WithImage).
		Msg("generate: session started")

	go session.run(runCtx)
	return session, nil
}

// Get returns the session for an id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Cancel aborts a session's jobs. It returns domain.ErrNotFound for unknown
// ids; cancelling an already-settled session is a no-op.
func (r *Registry) Cancel(id string) error {
	s, ok := r.Get(id)
	if !ok {
		return domain.ErrNotFound
	}
	s.Cancel()
	return nil
}

// Snapshots returns a view of every known session.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	out := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Snapshot())
	}
	return out
}
