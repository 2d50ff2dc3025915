// Package store holds the agent's local state: linked accounts and the
// scheduled-post ledger. The memory implementations back the agent when no
// DATABASE_URL is configured; the pg implementations persist the same state
// in Postgres.
package store

import (
	"context"
	"sort"
	"sync"

	"socialflow/internal/domain"
)

// MemoryAccountStore is an in-memory AccountStore.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.SocialAccount
}

var _ domain.AccountStore = (*MemoryAccountStore)(nil)

// NewMemoryAccountStore constructs an empty account store.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[string]domain.SocialAccount)}
}

// SaveAccount upserts an account. Saving an active account deactivates any
// other active account on the same platform, keeping at most one.
func (s *MemoryAccountStore) SaveAccount(ctx context.Context, account *domain.SocialAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account.IsActive {
		for id, existing := range s.accounts {
			if existing.Platform == account.Platform && existing.IsActive && id != account.ID {
				existing.IsActive = false
				s.accounts[id] = existing
			}
		}
	}
	s.accounts[account.ID] = *account
	return nil
}

// ActiveAccount returns the platform's active account, or ErrNotFound.
func (s *MemoryAccountStore) ActiveAccount(ctx context.Context, platform domain.Platform) (*domain.SocialAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if account.Platform == platform && account.IsActive {
			found := account
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

// DeactivateAccount flips the account inactive. Unknown ids are ErrNotFound.
func (s *MemoryAccountStore) DeactivateAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	account.IsActive = false
	s.accounts[id] = account
	return nil
}

// MemoryPostStore is an in-memory PostStore.
type MemoryPostStore struct {
	mu    sync.RWMutex
	posts map[string]domain.ScheduledPost
}

var _ domain.PostStore = (*MemoryPostStore)(nil)

// NewMemoryPostStore constructs an empty post ledger.
func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{posts: make(map[string]domain.ScheduledPost)}
}

// SavePost inserts a post. Re-saving an existing id overwrites it.
func (s *MemoryPostStore) SavePost(ctx context.Context, post *domain.ScheduledPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = *post
	return nil
}

// PostByID returns a detached copy of the post, or ErrNotFound.
func (s *MemoryPostStore) PostByID(ctx context.Context, id string) (*domain.ScheduledPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &post, nil
}

// UpdatePost replaces an existing post. Unknown ids are ErrNotFound.
func (s *MemoryPostStore) UpdatePost(ctx context.Context, post *domain.ScheduledPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; !ok {
		return domain.ErrNotFound
	}
	s.posts[post.ID] = *post
	return nil
}

// ListPosts returns every post, newest scheduled time first.
func (s *MemoryPostStore) ListPosts(ctx context.Context) ([]domain.ScheduledPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScheduledPost, 0, len(s.posts))
	for _, post := range s.posts {
		out = append(out, post)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledTime.Equal(out[j].ScheduledTime) {
			return out[i].ScheduledTime.After(out[j].ScheduledTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
