package domain

import "time"

const (
	// SessionTTL is how long an idle browser session survives.
	SessionTTL = 90 * 24 * time.Hour
	// RememberTTL is the lifetime of a remember-me token.
	RememberTTL = 90 * 24 * time.Hour
	// MaxRememberTokens is how many remember tokens a user keeps; older ones are pruned.
	MaxRememberTokens = 10
	// UnknownDevice is recorded when the client sends no User-Agent.
	UnknownDevice = "Unknown"
)

// Session is a server-side browser session keyed by the session cookie.
type Session struct {
	ID            string    `json:"id"`
	Authenticated bool      `json:"authenticated"`
	UserID        int64     `json:"user_id,omitempty"`
	CSRFToken     string    `json:"csrf_token"`
	CreatedAt     time.Time `json:"created_at"`
	LoginAt       time.Time `json:"login_at"` // zero until authenticated
}

// RememberToken is a persisted long-lived credential bound to one device.
// Only the SHA-256 hash of the raw token is stored.
type RememberToken struct {
	ID         int64
	UserID     int64
	TokenHash  string
	ExpiresAt  time.Time
	DeviceInfo string
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// Expired reports whether the token is no longer valid at now.
func (t *RememberToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
