package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialflow/internal/domain"
)

func TestAccountStoreKeepsOneActivePerPlatform(t *testing.T) {
	s := NewMemoryAccountStore()
	ctx := context.Background()

	if err := s.SaveAccount(ctx, &domain.SocialAccount{ID: "a1", Platform: domain.PlatformLinkedIn, IsActive: true}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveAccount(ctx, &domain.SocialAccount{ID: "a2", Platform: domain.PlatformLinkedIn, IsActive: true}); err != nil {
		t.Fatalf("save: %v", err)
	}

	account, err := s.ActiveAccount(ctx, domain.PlatformLinkedIn)
	if err != nil {
		t.Fatalf("active account: %v", err)
	}
	if account.ID != "a2" {
		t.Fatalf("active id = %q, want the newer account", account.ID)
	}
}

func TestAccountStoreDeactivate(t *testing.T) {
	s := NewMemoryAccountStore()
	ctx := context.Background()
	if err := s.SaveAccount(ctx, &domain.SocialAccount{ID: "a1", Platform: domain.PlatformTwitter, IsActive: true}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.DeactivateAccount(ctx, "a1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := s.ActiveAccount(ctx, domain.PlatformTwitter); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after deactivation", err)
	}
	if err := s.DeactivateAccount(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for unknown id", err)
	}
}

func TestPostStoreRoundTripAndNotFound(t *testing.T) {
	s := NewMemoryPostStore()
	ctx := context.Background()
	post := &domain.ScheduledPost{
		ID: "p1", AccountID: "a1", ContentText: "hi",
		ScheduledTime: time.Now().Add(time.Hour), Status: domain.PostStatusPending,
	}
	if err := s.SavePost(ctx, post); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.PostByID(ctx, "p1")
	if err != nil {
		t.Fatalf("post by id: %v", err)
	}
	// The returned copy is detached from the store.
	got.Status = domain.PostStatusFailed
	stored, err := s.PostByID(ctx, "p1")
	if err != nil {
		t.Fatalf("post by id: %v", err)
	}
	if stored.Status != domain.PostStatusPending {
		t.Fatalf("stored status mutated through a returned copy")
	}

	if _, err := s.PostByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := s.UpdatePost(ctx, &domain.ScheduledPost{ID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update err = %v, want ErrNotFound", err)
	}
}

func TestPostStoreListsNewestScheduledFirst(t *testing.T) {
	s := NewMemoryPostStore()
	ctx := context.Background()
	base := time.Now()
	for i, id := range []string{"p1", "p2", "p3"} {
		err := s.SavePost(ctx, &domain.ScheduledPost{
			ID:            id,
			ScheduledTime: base.Add(time.Duration(i) * time.Hour),
			Status:        domain.PostStatusPending,
		})
		if err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	posts, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 3 || posts[0].ID != "p3" || posts[2].ID != "p1" {
		ids := make([]string, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		t.Fatalf("order = %v, want newest scheduled first", ids)
	}
}
