package model

import "time"

// Session is the authenticated principal plus the tokens the identity
// provider issued for it.
type Session struct {
	UserID       UserID    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type AuthEventType string

const (
	AuthEventInitialSession = AuthEventType("INITIAL_SESSION")
	AuthEventSignedIn       = AuthEventType("SIGNED_IN")
	AuthEventSignedOut      = AuthEventType("SIGNED_OUT")
	AuthEventTokenRefreshed = AuthEventType("TOKEN_REFRESHED")
)

// AuthEvent is a session change reported by the identity provider.
// Session is nil for AuthEventSignedOut.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}
