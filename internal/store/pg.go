package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"socialflow/internal/domain"
	"socialflow/internal/infra"
	"socialflow/internal/sqlinline"
)

// EnsureSchema creates the agent's tables when they do not exist yet.
func EnsureSchema(ctx context.Context, runner infra.SQLExecutor) error {
	for _, query := range []string{
		sqlinline.SchemaSocialAccounts,
		sqlinline.SchemaScheduledPosts,
		sqlinline.SchemaOAuthPending,
	} {
		if _, err := runner.Exec(ctx, query); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	return nil
}

// PGAccountStore is the Postgres AccountStore.
type PGAccountStore struct {
	runner infra.SQLExecutor
}

var _ domain.AccountStore = (*PGAccountStore)(nil)

func NewPGAccountStore(runner infra.SQLExecutor) *PGAccountStore {
	return &PGAccountStore{runner: runner}
}

// SaveAccount upserts the account and, when it is active, deactivates any
// other active account on the same platform.
func (s *PGAccountStore) SaveAccount(ctx context.Context, account *domain.SocialAccount) error {
	var expiresAt *time.Time
	if !account.ExpiresAt.IsZero() {
		expiresAt = &account.ExpiresAt
	}
	connectedAt := account.ConnectedAt
	if connectedAt.IsZero() {
		connectedAt = time.Now()
	}
	_, err := s.runner.Exec(ctx, sqlinline.AccountUpsert,
		account.ID, string(account.Platform), account.DisplayName, account.Handle,
		account.IsActive, expiresAt, connectedAt)
	if err != nil {
		return fmt.Errorf("store: save account: %w", err)
	}
	if account.IsActive {
		if _, err := s.runner.Exec(ctx, sqlinline.AccountDeactivateOthers, string(account.Platform), account.ID); err != nil {
			return fmt.Errorf("store: deactivate siblings: %w", err)
		}
	}
	return nil
}

func (s *PGAccountStore) ActiveAccount(ctx context.Context, platform domain.Platform) (*domain.SocialAccount, error) {
	row := s.runner.QueryRow(ctx, sqlinline.AccountActiveByPlatform, string(platform))
	var account domain.SocialAccount
	var rawPlatform string
	var expiresAt sql.NullTime
	err := row.Scan(&account.ID, &rawPlatform, &account.DisplayName, &account.Handle,
		&account.IsActive, &expiresAt, &account.ConnectedAt)
	if infra.IsNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: active account: %w", err)
	}
	account.Platform = domain.Platform(rawPlatform)
	if expiresAt.Valid {
		account.ExpiresAt = expiresAt.Time
	}
	return &account, nil
}

func (s *PGAccountStore) DeactivateAccount(ctx context.Context, id string) error {
	tag, err := s.runner.Exec(ctx, sqlinline.AccountDeactivate, id)
	if err != nil {
		return fmt.Errorf("store: deactivate account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PGPostStore is the Postgres PostStore.
type PGPostStore struct {
	runner infra.SQLExecutor
}

var _ domain.PostStore = (*PGPostStore)(nil)

func NewPGPostStore(runner infra.SQLExecutor) *PGPostStore {
	return &PGPostStore{runner: runner}
}

func (s *PGPostStore) SavePost(ctx context.Context, post *domain.ScheduledPost) error {
	_, err := s.runner.Exec(ctx, sqlinline.PostInsert,
		post.ID, post.AccountID, post.ContentText, post.ScheduledTime, string(post.Status),
		post.ErrorMessage, post.PlatformPostURL, post.RetryCount, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: save post: %w", err)
	}
	return nil
}

func (s *PGPostStore) PostByID(ctx context.Context, id string) (*domain.ScheduledPost, error) {
	row := s.runner.QueryRow(ctx, sqlinline.PostByID, id)
	post, err := scanPost(row)
	if infra.IsNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: post by id: %w", err)
	}
	return post, nil
}

func (s *PGPostStore) UpdatePost(ctx context.Context, post *domain.ScheduledPost) error {
	tag, err := s.runner.Exec(ctx, sqlinline.PostUpdate,
		post.ID, string(post.Status), post.ErrorMessage, post.PlatformPostURL,
		post.RetryCount, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PGPostStore) ListPosts(ctx context.Context) ([]domain.ScheduledPost, error) {
	rows, err := s.runner.Query(ctx, sqlinline.PostList)
	if err != nil {
		return nil, fmt.Errorf("store: list posts: %w", err)
	}
	defer rows.Close()

	var out []domain.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan post: %w", err)
		}
		out = append(out, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list posts: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*domain.ScheduledPost, error) {
	var post domain.ScheduledPost
	var rawStatus string
	err := row.Scan(&post.ID, &post.AccountID, &post.ContentText, &post.ScheduledTime,
		&rawStatus, &post.ErrorMessage, &post.PlatformPostURL, &post.RetryCount,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	post.Status = domain.PostStatus(rawStatus)
	return &post, nil
}

// PGSlot stores the signed pending-authorization token in the single-row
// oauth_pending table. It implements social.Slot.
type PGSlot struct {
	runner infra.SQLExecutor
}

func NewPGSlot(runner infra.SQLExecutor) *PGSlot {
	return &PGSlot{runner: runner}
}

func (s *PGSlot) Write(ctx context.Context, token string) error {
	_, err := s.runner.Exec(ctx, sqlinline.PendingUpsert, token)
	return err
}

func (s *PGSlot) Read(ctx context.Context) (string, bool, error) {
	var token string
	err := s.runner.QueryRow(ctx, sqlinline.PendingSelect).Scan(&token)
	if infra.IsNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

func (s *PGSlot) Delete(ctx context.Context) error {
	_, err := s.runner.Exec(ctx, sqlinline.PendingDelete)
	return err
}
