package domain

import "time"

// SocialAccount is a linked external account. Disconnecting deactivates the
// record rather than deleting it.
type SocialAccount struct {
	ID          string
	Platform    Platform
	DisplayName string
	Handle      string
	IsActive    bool
	ExpiresAt   time.Time
	ConnectedAt time.Time
}

// TokenExpired reports whether the provider credential behind the account has
// lapsed. A zero ExpiresAt means the provider did not report an expiry.
func (a SocialAccount) TokenExpired(now time.Time) bool {
	if a.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(a.ExpiresAt)
}

// PendingAuthorization is the single in-flight record of which platform an
// authorization redirect was issued for. At most one exists at a time; it is
// written once by initiate and read-and-cleared exactly once by the callback
// handler.
type PendingAuthorization struct {
	Platform  Platform
	State     string
	CreatedAt time.Time
}
