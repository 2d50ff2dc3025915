package publish

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialflow/internal/backend"
	"socialflow/internal/domain"
	"socialflow/internal/infra"
	"socialflow/internal/store"
)

type fakeLinker struct {
	account   *domain.SocialAccount
	authURL   string
	initiated int
}

func (f *fakeLinker) ActiveAccount(ctx context.Context, platform domain.Platform) (*domain.SocialAccount, error) {
	if f.account == nil {
		return nil, domain.ErrNotFound
	}
	return f.account, nil
}

func (f *fakeLinker) Initiate(ctx context.Context, platform domain.Platform) (string, error) {
	f.initiated++
	return f.authURL, nil
}

type fakePublisher struct {
	directReceipt *backend.PublishReceipt
	directErr     error
	directCalls   int
	scheduledID   string
	scheduleErr   error
	scheduleCalls int
	cancelErr     error
	cancelCalls   int
	retryReceipt  *backend.PublishReceipt
	retryErr      error
	retryCalls    int
}

func (f *fakePublisher) DirectPost(ctx context.Context, platform domain.Platform, content string, mediaURLs []string) (*backend.PublishReceipt, error) {
	f.directCalls++
	return f.directReceipt, f.directErr
}

func (f *fakePublisher) CreateScheduledPost(ctx context.Context, accountID, contentText string, scheduledTime time.Time) (string, error) {
	f.scheduleCalls++
	return f.scheduledID, f.scheduleErr
}

func (f *fakePublisher) CancelScheduledPost(ctx context.Context, postID string) error {
	f.cancelCalls++
	return f.cancelErr
}

func (f *fakePublisher) RetryScheduledPost(ctx context.Context, postID string) (*backend.PublishReceipt, error) {
	f.retryCalls++
	return f.retryReceipt, f.retryErr
}

func newManager(publisher Publisher, linker Linker) (*Manager, domain.PostStore) {
	discard := infra.Logger(zerolog.New(io.Discard))
	posts := store.NewMemoryPostStore()
	return NewManager(publisher, linker, posts, &discard), posts
}

func TestPublishOrLinkPublishesThroughActiveAccount(t *testing.T) {
	linker := &fakeLinker{account: &domain.SocialAccount{ID: "acct-1", Platform: domain.PlatformLinkedIn, IsActive: true}}
	publisher := &fakePublisher{directReceipt: &backend.PublishReceipt{
		PostID: "post-1", PostURL: "https://linkedin.com/p/1", Status: "published",
	}}
	manager, posts := newManager(publisher, linker)

	outcome, err := manager.PublishOrLink(context.Background(), domain.PlatformLinkedIn, "hello", nil)
	require.NoError(t, err)
	assert.True(t, outcome.Published)
	assert.Equal(t, "https://linkedin.com/p/1", outcome.PostURL)
	assert.Equal(t, 0, linker.initiated)

	post, err := posts.PostByID(context.Background(), "post-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusPublished, post.Status)
}

func TestPublishOrLinkStartsLinkingWhenUnlinked(t *testing.T) {
	linker := &fakeLinker{authURL: "https://provider/auth"}
	publisher := &fakePublisher{}
	manager, _ := newManager(publisher, linker)

	outcome, err := manager.PublishOrLink(context.Background(), domain.PlatformTwitter, "hello", nil)
	require.NoError(t, err)
	assert.False(t, outcome.Published)
	assert.Equal(t, "https://provider/auth", outcome.AuthorizationURL)
	assert.Equal(t, 0, publisher.directCalls, "no publish without a linked account")
}

func TestPublishOrLinkTreatsExpiredTokenAsUnlinked(t *testing.T) {
	linker := &fakeLinker{
		account: &domain.SocialAccount{
			ID: "acct-1", Platform: domain.PlatformTwitter, IsActive: true,
			ExpiresAt: time.Now().Add(-time.Hour),
		},
		authURL: "https://provider/auth",
	}
	publisher := &fakePublisher{}
	manager, _ := newManager(publisher, linker)

	outcome, err := manager.PublishOrLink(context.Background(), domain.PlatformTwitter, "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://provider/auth", outcome.AuthorizationURL)
	assert.Equal(t, 0, publisher.directCalls)
}

func TestPublishOrLinkRejectsUnlinkablePlatforms(t *testing.T) {
	manager, _ := newManager(&fakePublisher{}, &fakeLinker{})

	_, err := manager.PublishOrLink(context.Background(), domain.PlatformBlog, "hello", nil)
	assert.ErrorIs(t, err, domain.ErrPublish)
}

func TestScheduleRejectsPastTimeWithoutCreating(t *testing.T) {
	linker := &fakeLinker{account: &domain.SocialAccount{ID: "acct-1", IsActive: true}}
	publisher := &fakePublisher{scheduledID: "post-1"}
	manager, posts := newManager(publisher, linker)

	for _, when := range []time.Time{time.Now().Add(-time.Minute), time.Now()} {
		_, err := manager.Schedule(context.Background(), domain.PlatformLinkedIn, "hello", when)
		assert.ErrorIs(t, err, domain.ErrInvalidScheduleTime)
	}
	assert.Equal(t, 0, publisher.scheduleCalls, "rejected time must not reach the backend")
	listed, err := posts.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestScheduleCreatesPendingLedgerEntry(t *testing.T) {
	linker := &fakeLinker{account: &domain.SocialAccount{ID: "acct-1", IsActive: true}}
	publisher := &fakePublisher{scheduledID: "post-1"}
	manager, _ := newManager(publisher, linker)
	when := time.Now().Add(time.Hour)

	post, err := manager.Schedule(context.Background(), domain.PlatformLinkedIn, "hello", when)
	require.NoError(t, err)
	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, domain.PostStatusPending, post.Status)
	assert.Equal(t, "acct-1", post.AccountID)
	assert.True(t, post.ScheduledTime.Equal(when))
}

func TestCancelOnlyPendingPosts(t *testing.T) {
	linker := &fakeLinker{account: &domain.SocialAccount{ID: "acct-1", IsActive: true}}
	publisher := &fakePublisher{scheduledID: "post-1"}
	manager, posts := newManager(publisher, linker)
	ctx := context.Background()

	_, err := manager.Schedule(ctx, domain.PlatformLinkedIn, "hello", time.Now().Add(time.Hour))
	require.NoError(t, err)

	post, err := manager.Cancel(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusCancelled, post.Status)
	assert.Equal(t, 1, publisher.cancelCalls)

	// Cancelling again is an invalid transition and never reaches the backend.
	_, err = manager.Cancel(ctx, "post-1")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, 1, publisher.cancelCalls)

	_, err = manager.Cancel(ctx, "no-such-post")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := posts.PostByID(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusCancelled, stored.Status)
}

func TestRetryOnlyFailedPosts(t *testing.T) {
	linker := &fakeLinker{account: &domain.SocialAccount{ID: "acct-1", IsActive: true}}
	publisher := &fakePublisher{
		scheduledID:  "post-1",
		retryReceipt: &backend.PublishReceipt{Status: "published", PostURL: "https://x.com/p/9"},
	}
	manager, posts := newManager(publisher, linker)
	ctx := context.Background()

	_, err := manager.Schedule(ctx, domain.PlatformTwitter, "hello", time.Now().Add(time.Hour))
	require.NoError(t, err)

	// Pending posts cannot be retried.
	_, err = manager.Retry(ctx, "post-1")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, 0, publisher.retryCalls)

	failed, err := posts.PostByID(ctx, "post-1")
	require.NoError(t, err)
	failed.Status = domain.PostStatusFailed
	failed.ErrorMessage = "provider 500"
	require.NoError(t, posts.UpdatePost(ctx, failed))

	post, err := manager.Retry(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusPublished, post.Status)
	assert.Equal(t, "https://x.com/p/9", post.PlatformPostURL)
	assert.Equal(t, 1, post.RetryCount)
	assert.Empty(t, post.ErrorMessage)
}

func TestRetryFailureSettlesFailedWithDetail(t *testing.T) {
	linker := &fakeLinker{account: &domain.SocialAccount{ID: "acct-1", IsActive: true}}
	publisher := &fakePublisher{scheduledID: "post-1", retryErr: errors.New("provider unreachable")}
	manager, posts := newManager(publisher, linker)
	ctx := context.Background()

	_, err := manager.Schedule(ctx, domain.PlatformTwitter, "hello", time.Now().Add(time.Hour))
	require.NoError(t, err)
	failed, err := posts.PostByID(ctx, "post-1")
	require.NoError(t, err)
	failed.Status = domain.PostStatusFailed
	require.NoError(t, posts.UpdatePost(ctx, failed))

	_, err = manager.Retry(ctx, "post-1")
	assert.ErrorIs(t, err, domain.ErrPublish)

	stored, err := posts.PostByID(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusFailed, stored.Status)
	assert.Equal(t, "provider unreachable", stored.ErrorMessage)
	assert.Equal(t, 1, stored.RetryCount)
}
