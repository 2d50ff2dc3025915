// Package publish sends content out through linked accounts, immediately or
// on a schedule. The local post ledger is the authority for which status
// transitions are allowed; the backend is only asked once a transition is
// valid.
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"socialflow/internal/backend"
	"socialflow/internal/domain"
	"socialflow/internal/infra"
	"socialflow/internal/social"
)

// Linker resolves linked accounts and starts the linking flow when none
// exists. *social.Coordinator satisfies it.
type Linker interface {
	ActiveAccount(ctx context.Context, platform domain.Platform) (*domain.SocialAccount, error)
	Initiate(ctx context.Context, platform domain.Platform) (string, error)
}

var _ Linker = (*social.Coordinator)(nil)

// Publisher is the slice of the backend client the manager needs.
type Publisher interface {
	DirectPost(ctx context.Context, platform domain.Platform, content string, mediaURLs []string) (*backend.PublishReceipt, error)
	CreateScheduledPost(ctx context.Context, accountID, contentText string, scheduledTime time.Time) (string, error)
	CancelScheduledPost(ctx context.Context, postID string) error
	RetryScheduledPost(ctx context.Context, postID string) (*backend.PublishReceipt, error)
}

var _ Publisher = (*backend.Client)(nil)

// Outcome discriminates the two ways a publish request can resolve: the post
// went out, or linking was started and the user must visit AuthorizationURL
// first.
type Outcome struct {
	Published        bool
	PostURL          string
	AuthorizationURL string
}

// Manager coordinates publishing against the account link state and the
// local post ledger.
type Manager struct {
	backend Publisher
	linker  Linker
	posts   domain.PostStore
	logger  *infra.Logger
	now     func() time.Time
}

// NewManager constructs a Manager.
func NewManager(b Publisher, linker Linker, posts domain.PostStore, logger *infra.Logger) *Manager {
	return &Manager{backend: b, linker: linker, posts: posts, logger: logger, now: time.Now}
}

// PublishOrLink publishes immediately when an active account exists for the
// platform; otherwise it starts the linking flow and returns the
// authorization URL instead. An expired credential counts as unlinked.
func (m *Manager) PublishOrLink(ctx context.Context, platform domain.Platform, content string, mediaURLs []string) (*Outcome, error) {
	if !platform.Linkable() {
		return nil, fmt.Errorf("%w: %s content is exported, not published", domain.ErrPublish, platform)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is empty", domain.ErrPublish)
	}

	account, err := m.linker.ActiveAccount(ctx, platform)
	needsLink := errors.Is(err, domain.ErrNotFound) || (err == nil && account.TokenExpired(m.now()))
	if err != nil && !needsLink {
		return nil, err
	}
	if needsLink {
		authURL, err := m.linker.Initiate(ctx, platform)
		if err != nil {
			return nil, err
		}
		return &Outcome{AuthorizationURL: authURL}, nil
	}

	receipt, err := m.backend.DirectPost(ctx, platform, content, mediaURLs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPublish, err)
	}

	now := m.now()
	post := &domain.ScheduledPost{
		ID:              receiptID(receipt),
		AccountID:       account.ID,
		ContentText:     content,
		ScheduledTime:   now,
		Status:          domain.PostStatusPublished,
		PlatformPostURL: receipt.PostURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := m.posts.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("publish: record post: %w", err)
	}

	m.logger.Info().
		Str("platform", string(platform)).
		Str("post_id", post.ID).
		Msg("publish: posted")
	return &Outcome{Published: true, PostURL: receipt.PostURL}, nil
}

// Schedule queues a post for a strictly future time. On a rejected time
// nothing is created, locally or on the backend.
func (m *Manager) Schedule(ctx context.Context, platform domain.Platform, content string, scheduledTime time.Time) (*domain.ScheduledPost, error) {
	if !scheduledTime.After(m.now()) {
		return nil, domain.ErrInvalidScheduleTime
	}
	account, err := m.linker.ActiveAccount(ctx, platform)
	if err != nil {
		return nil, err
	}

	backendID, err := m.backend.CreateScheduledPost(ctx, account.ID, content, scheduledTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPublish, err)
	}
	if backendID == "" {
		backendID = uuid.NewString()
	}

	now := m.now()
	post := &domain.ScheduledPost{
		ID:            backendID,
		AccountID:     account.ID,
		ContentText:   content,
		ScheduledTime: scheduledTime,
		Status:        domain.PostStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := m.posts.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("publish: record post: %w", err)
	}

	m.logger.Info().
		Str("post_id", post.ID).
		Time("scheduled_time", scheduledTime).
		Msg("publish: post scheduled")
	return post, nil
}

// Cancel cancels a pending post. Any other status is an invalid transition
// and never reaches the backend.
func (m *Manager) Cancel(ctx context.Context, postID string) (*domain.ScheduledPost, error) {
	post, err := m.posts.PostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.CanCancel() {
		return nil, fmt.Errorf("%w: cannot cancel a %s post", domain.ErrInvalidStateTransition, post.Status)
	}

	if err := m.backend.CancelScheduledPost(ctx, postID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPublish, err)
	}

	post.Status = domain.PostStatusCancelled
	post.UpdatedAt = m.now()
	if err := m.posts.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("publish: update post: %w", err)
	}
	return post, nil
}

// Retry re-attempts a failed post. The ledger passes through publishing while
// the attempt is in flight and settles published or failed from the receipt.
func (m *Manager) Retry(ctx context.Context, postID string) (*domain.ScheduledPost, error) {
	post, err := m.posts.PostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.CanRetry() {
		return nil, fmt.Errorf("%w: cannot retry a %s post", domain.ErrInvalidStateTransition, post.Status)
	}

	post.Status = domain.PostStatusPublishing
	post.RetryCount++
	post.UpdatedAt = m.now()
	if err := m.posts.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("publish: update post: %w", err)
	}

	receipt, err := m.backend.RetryScheduledPost(ctx, postID)
	if err != nil {
		post.Status = domain.PostStatusFailed
		post.ErrorMessage = err.Error()
		post.UpdatedAt = m.now()
		if updateErr := m.posts.UpdatePost(ctx, post); updateErr != nil {
			m.logger.Error().Err(updateErr).Str("post_id", postID).Msg("publish: record retry failure")
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPublish, err)
	}

	switch receipt.Status {
	case "published", "success":
		post.Status = domain.PostStatusPublished
		post.PlatformPostURL = receipt.PostURL
		post.ErrorMessage = ""
	default:
		post.Status = domain.PostStatusFailed
		post.ErrorMessage = receipt.Message
	}
	post.UpdatedAt = m.now()
	if err := m.posts.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("publish: update post: %w", err)
	}

	m.logger.Info().
		Str("post_id", postID).
		Str("status", string(post.Status)).
		Int("retry_count", post.RetryCount).
		Msg("publish: retry settled")
	return post, nil
}

// List returns the ledger's posts.
func (m *Manager) List(ctx context.Context) ([]domain.ScheduledPost, error) {
	return m.posts.ListPosts(ctx)
}

// Post returns one ledger entry.
func (m *Manager) Post(ctx context.Context, postID string) (*domain.ScheduledPost, error) {
	return m.posts.PostByID(ctx, postID)
}

func receiptID(receipt *backend.PublishReceipt) string {
	if receipt.PostID != "" {
		return receipt.PostID
	}
	return uuid.NewString()
}
