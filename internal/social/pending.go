// Package social links external accounts: it coordinates the authorization
// redirect flow and keeps the single pending-authorization slot durable
// across agent restarts.
package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"socialflow/internal/domain"
	"socialflow/internal/infra"
	"socialflow/internal/storage"
)

const pendingSlotKey = "oauth/pending.jwt"

// Slot persists one opaque token. Implementations back it with a file or a
// database row; there is only ever one slot.
type Slot interface {
	Write(ctx context.Context, token string) error
	// Read returns the token and whether the slot held one.
	Read(ctx context.Context) (string, bool, error)
	Delete(ctx context.Context) error
}

// PendingStore keeps the pending-authorization slot as a signed token. The
// redirect round-trip leaves the agent's hands, so the slot is treated as
// untrusted on the way back in: a tampered or expired token reads as an empty
// slot.
type PendingStore struct {
	slot   Slot
	secret []byte
	ttl    time.Duration
	logger *infra.Logger
}

var _ domain.PendingStore = (*PendingStore)(nil)

// NewPendingStore constructs the store. ttl bounds how long an issued
// redirect stays redeemable.
func NewPendingStore(slot Slot, secret string, ttl time.Duration, logger *infra.Logger) (*PendingStore, error) {
	if secret == "" {
		return nil, errors.New("social: signing secret is required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &PendingStore{slot: slot, secret: []byte(secret), ttl: ttl, logger: logger}, nil
}

// NewFilePendingStore is NewPendingStore over a file-backed slot.
func NewFilePendingStore(files *storage.FileStore, secret string, ttl time.Duration, logger *infra.Logger) (*PendingStore, error) {
	return NewPendingStore(fileSlot{files: files}, secret, ttl, logger)
}

// Put overwrites the slot with a freshly signed record.
func (s *PendingStore) Put(ctx context.Context, pending domain.PendingAuthorization) error {
	issuedAt := pending.CreatedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	claims := jwt.MapClaims{
		"platform": string(pending.Platform),
		"state":    pending.State,
		"iat":      issuedAt.Unix(),
		"exp":      issuedAt.Add(s.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("social: sign pending slot: %w", err)
	}
	return s.slot.Write(ctx, signed)
}

// Take reads and clears the slot in one step. It returns nil for an empty,
// expired, or tampered slot; the slot is cleared in every case.
func (s *PendingStore) Take(ctx context.Context) (*domain.PendingAuthorization, error) {
	raw, ok, err := s.slot.Read(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if err := s.Clear(ctx); err != nil {
		return nil, err
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		s.logger.Warn().Err(err).Msg("social: discarding unreadable pending slot")
		return nil, nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil
	}
	platform, _ := claims["platform"].(string)
	state, _ := claims["state"].(string)
	if platform == "" || state == "" {
		s.logger.Warn().Msg("social: pending slot missing claims")
		return nil, nil
	}
	pending := &domain.PendingAuthorization{
		Platform: domain.Platform(platform),
		State:    state,
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		pending.CreatedAt = iat.Time
	}
	return pending, nil
}

// Clear empties the slot.
func (s *PendingStore) Clear(ctx context.Context) error {
	return s.slot.Delete(ctx)
}

// fileSlot stores the token as a file under the agent's state directory.
type fileSlot struct {
	files *storage.FileStore
}

func (f fileSlot) Write(ctx context.Context, token string) error {
	return f.files.Write(ctx, pendingSlotKey, []byte(token))
}

func (f fileSlot) Read(ctx context.Context) (string, bool, error) {
	raw, err := f.files.Read(ctx, pendingSlotKey)
	if errors.Is(err, storage.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(raw), true, nil
}

func (f fileSlot) Delete(ctx context.Context) error {
	return f.files.Delete(ctx, pendingSlotKey)
}
