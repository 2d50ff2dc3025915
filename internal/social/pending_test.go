package social

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialflow/internal/domain"
	"socialflow/internal/infra"
	"socialflow/internal/storage"
)

func newPendingStore(t *testing.T, ttl time.Duration) *PendingStore {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	discard := infra.Logger(zerolog.New(io.Discard))
	store, err := NewFilePendingStore(files, "test-secret", ttl, &discard)
	require.NoError(t, err)
	return store
}

func TestPendingSlotRoundTrip(t *testing.T) {
	store := newPendingStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.PendingAuthorization{
		Platform: domain.PlatformLinkedIn,
		State:    "state-abc",
	}))

	pending, err := store.Take(ctx)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, domain.PlatformLinkedIn, pending.Platform)
	assert.Equal(t, "state-abc", pending.State)

	// Take cleared the slot.
	pending, err = store.Take(ctx)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestPendingSlotTakeOnEmptyReturnsNil(t *testing.T) {
	store := newPendingStore(t, time.Minute)

	pending, err := store.Take(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestPendingSlotExpiredReadsAsEmpty(t *testing.T) {
	store := newPendingStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.PendingAuthorization{
		Platform:  domain.PlatformTwitter,
		State:     "state-old",
		CreatedAt: time.Now().Add(-2 * time.Minute),
	}))

	pending, err := store.Take(ctx)
	require.NoError(t, err)
	assert.Nil(t, pending, "expired slot must read as empty")
}

func TestPendingSlotTamperedReadsAsEmpty(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	discard := infra.Logger(zerolog.New(io.Discard))
	store, err := NewFilePendingStore(files, "test-secret", time.Minute, &discard)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.PendingAuthorization{
		Platform: domain.PlatformYouTube,
		State:    "state-x",
	}))
	raw, err := files.Read(ctx, "oauth/pending.jwt")
	require.NoError(t, err)
	// Flip a signature byte.
	raw[len(raw)-1] ^= 0x01
	require.NoError(t, files.Write(ctx, "oauth/pending.jwt", raw))

	pending, err := store.Take(ctx)
	require.NoError(t, err)
	assert.Nil(t, pending, "tampered slot must read as empty")
}

func TestPendingSlotPutOverwrites(t *testing.T) {
	store := newPendingStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.PendingAuthorization{Platform: domain.PlatformLinkedIn, State: "first"}))
	require.NoError(t, store.Put(ctx, domain.PendingAuthorization{Platform: domain.PlatformTwitter, State: "second"}))

	pending, err := store.Take(ctx)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "second", pending.State)
	assert.Equal(t, domain.PlatformTwitter, pending.Platform)
}
