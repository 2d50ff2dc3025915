package domain

import "context"

// AccountStore holds linked social accounts.
type AccountStore interface {
	SaveAccount(ctx context.Context, account *SocialAccount) error
	// ActiveAccount returns the active account for a platform, or ErrNotFound.
	ActiveAccount(ctx context.Context, platform Platform) (*SocialAccount, error)
	DeactivateAccount(ctx context.Context, id string) error
}

// PostStore holds the agent's view of scheduled posts. It is the authority
// for status-transition validation.
type PostStore interface {
	SavePost(ctx context.Context, post *ScheduledPost) error
	PostByID(ctx context.Context, id string) (*ScheduledPost, error)
	UpdatePost(ctx context.Context, post *ScheduledPost) error
	ListPosts(ctx context.Context) ([]ScheduledPost, error)
}

// PendingStore is the durable single-slot holder for the pending
// authorization. Put overwrites the slot; Take reads and clears it in one
// step and returns nil when the slot is empty or unreadable.
type PendingStore interface {
	Put(ctx context.Context, pending PendingAuthorization) error
	Take(ctx context.Context) (*PendingAuthorization, error)
	Clear(ctx context.Context) error
}
