package domain

import (
	"time"

	"github.com/rs/zerolog"
)

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) String() string {
	return c.Username + ":[redacted]"
}

// MarshalZerologObject keeps the password out of structured logs.
func (c Credentials) MarshalZerologObject(e *zerolog.Event) {
	e.Str("username", c.Username)
}

// Session is the handle returned by authentication. Only the upstream adapter
// reads its fields.
type Session struct {
	UserID       string    `json:"user_id"`
	SessionToken string    `json:"session_token,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// Authorized reports whether the secondary exchange has completed.
func (s Session) Authorized() bool {
	return s.AccessToken != ""
}

func (s Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}

	return !now.Before(s.ExpiresAt)
}
