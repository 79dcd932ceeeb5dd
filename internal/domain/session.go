package domain

import "time"

// Credentials are the email/password pair submitted by the login view.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is the authenticated identity and credential held for the
// lifetime of the browsing context.
type Session struct {
	Token     string        `json:"-"`
	User      *UserIdentity `json:"user,omitempty"`
	ExpiresAt time.Time     `json:"expires_at,omitempty"`
}
