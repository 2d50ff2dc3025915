package social

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"socialflow/internal/backend"
	"socialflow/internal/domain"
	"socialflow/internal/infra"
)

// OAuthBackend is the slice of the backend client the coordinator needs.
type OAuthBackend interface {
	InitiateOAuth(ctx context.Context, platform domain.Platform) (*backend.OAuthInitiation, error)
	ConnectAccount(ctx context.Context, platform domain.Platform, code, state string) (*domain.SocialAccount, error)
	DisconnectAccount(ctx context.Context, accountID string) error
}

var _ OAuthBackend = (*backend.Client)(nil)

// CallbackParams are the query parameters the provider redirect carries back.
type CallbackParams struct {
	Code             string
	State            string
	ErrorCode        string
	ErrorDescription string
}

// Coordinator runs the account-linking flow. One authorization may be in
// flight at a time; starting a new one overwrites the pending slot, so the
// older redirect can no longer be redeemed.
type Coordinator struct {
	backend  OAuthBackend
	pending  domain.PendingStore
	accounts domain.AccountStore
	logger   *infra.Logger
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(b OAuthBackend, pending domain.PendingStore, accounts domain.AccountStore, logger *infra.Logger) *Coordinator {
	return &Coordinator{backend: b, pending: pending, accounts: accounts, logger: logger}
}

// Initiate starts the linking flow for a platform and returns the URL the
// user's browser must visit. The pending slot is written before the URL is
// handed out; if it cannot be persisted the flow does not start.
func (c *Coordinator) Initiate(ctx context.Context, platform domain.Platform) (string, error) {
	if !platform.Linkable() {
		return "", fmt.Errorf("%w: accounts cannot be linked for %s", domain.ErrInitiation, platform)
	}

	init, err := c.backend.InitiateOAuth(ctx, platform)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInitiation, err)
	}

	pending := domain.PendingAuthorization{
		Platform:  platform,
		State:     init.State,
		CreatedAt: time.Now(),
	}
	if err := c.pending.Put(ctx, pending); err != nil {
		return "", fmt.Errorf("%w: persist pending slot: %v", domain.ErrInitiation, err)
	}

	c.logger.Info().Str("platform", string(platform)).Msg("social: authorization initiated")
	return init.AuthorizationURL, nil
}

// Callback settles the flow from the provider redirect. The pending slot is
// consumed before anything else, so a replayed or duplicated redirect can
// trigger at most one code exchange; the slot ends empty on every outcome.
func (c *Coordinator) Callback(ctx context.Context, params CallbackParams) (*domain.SocialAccount, error) {
	pending, err := c.pending.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("social: read pending slot: %w", err)
	}

	if params.ErrorCode != "" {
		c.logger.Info().Str("error", params.ErrorCode).Msg("social: authorization denied by user")
		if params.ErrorDescription != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrDenied, params.ErrorDescription)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrDenied, params.ErrorCode)
	}
	if params.Code == "" || params.State == "" {
		return nil, fmt.Errorf("%w: missing code or state", domain.ErrInvalidCallback)
	}
	if pending == nil {
		// No slot to validate against: the code is never exchanged.
		return nil, domain.ErrSessionLost
	}
	if params.State != pending.State {
		return nil, fmt.Errorf("%w: state mismatch", domain.ErrInvalidCallback)
	}

	account, err := c.backend.ConnectAccount(ctx, pending.Platform, params.Code, params.State)
	if err != nil {
		return nil, classifyExchangeError(err)
	}
	if err := c.accounts.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("social: save account: %w", err)
	}

	c.logger.Info().
		Str("platform", string(account.Platform)).
		Str("account_id", account.ID).
		Msg("social: account linked")
	return account, nil
}

// classifyExchangeError maps a failed code exchange onto the flow's terminal
// outcomes: a provider rejection of the grant is a denial, anything else means
// the callback could not be honored.
func classifyExchangeError(err error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: exchange rejected: %v", domain.ErrDenied, err)
	}
	return fmt.Errorf("%w: exchange failed: %v", domain.ErrInvalidCallback, err)
}

// Disconnect revokes the platform's active account on the backend and
// deactivates the local record. The record survives for history.
func (c *Coordinator) Disconnect(ctx context.Context, platform domain.Platform) error {
	account, err := c.accounts.ActiveAccount(ctx, platform)
	if err != nil {
		return err
	}
	if err := c.backend.DisconnectAccount(ctx, account.ID); err != nil {
		return fmt.Errorf("social: revoke account: %w", err)
	}
	if err := c.accounts.DeactivateAccount(ctx, account.ID); err != nil {
		return fmt.Errorf("social: deactivate account: %w", err)
	}
	c.logger.Info().Str("platform", string(platform)).Msg("social: account disconnected")
	return nil
}

// ActiveAccount returns the platform's active account, or domain.ErrNotFound.
func (c *Coordinator) ActiveAccount(ctx context.Context, platform domain.Platform) (*domain.SocialAccount, error) {
	return c.accounts.ActiveAccount(ctx, platform)
}

// Accounts returns the active account for every linkable platform.
func (c *Coordinator) Accounts(ctx context.Context) ([]domain.SocialAccount, error) {
	var out []domain.SocialAccount
	for _, p := range domain.Platforms() {
		if !p.Linkable() {
			continue
		}
		account, err := c.accounts.ActiveAccount(ctx, p)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *account)
	}
	return out, nil
}
