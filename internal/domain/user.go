package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRoleMissing is returned when the backend user record carries no usable role.
var ErrRoleMissing = errors.New("user record has no valid role")

// Profile is the minimal identity returned by the identity provider. Its
// role, if any, is never used for authorization.
type Profile struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Role             string     `json:"role,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	LastSignInAt     *time.Time `json:"last_sign_in_at,omitempty"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
}

// UserIdentity is the resolved, role-aware user of the current session.
// The same shape is used for entries in the users collection.
type UserIdentity struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Role             Role       `json:"role"`
	CreatedAt        time.Time  `json:"created_at"`
	LastSignInAt     *time.Time `json:"last_sign_in_at,omitempty"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
}

// Confirmation status labels for the users view.
const (
	EmailConfirmed = "Confirmed"
	EmailPending   = "Pending"
)

// IsConfirmed reports whether the user has confirmed their email address.
func (u UserIdentity) IsConfirmed() bool {
	return u.EmailConfirmedAt != nil && !u.EmailConfirmedAt.IsZero()
}

// ConfirmationStatus returns the label shown in the users view.
func (u UserIdentity) ConfirmationStatus() string {
	if u.IsConfirmed() {
		return EmailConfirmed
	}
	return EmailPending
}

// MergeIdentity combines the identity-provider profile with the backend
// user record looked up by email. Backend fields win over profile fields,
// and the role comes from the backend record only.
func MergeIdentity(profile *Profile, record *UserIdentity) (*UserIdentity, error) {
	if profile == nil {
		return nil, errors.New("merge identity: missing profile")
	}
	if record == nil || !record.Role.IsValid() {
		return nil, fmt.Errorf("merge identity for %s: %w", profile.Email, ErrRoleMissing)
	}
	if record.Email != "" && !strings.EqualFold(record.Email, profile.Email) {
		return nil, fmt.Errorf("merge identity: backend record %q does not match %q", record.Email, profile.Email)
	}

	merged := &UserIdentity{
		ID:               profile.ID,
		Email:            profile.Email,
		Role:             record.Role,
		CreatedAt:        profile.CreatedAt,
		LastSignInAt:     profile.LastSignInAt,
		EmailConfirmedAt: profile.EmailConfirmedAt,
	}
	if record.ID != "" {
		merged.ID = record.ID
	}
	if !record.CreatedAt.IsZero() {
		merged.CreatedAt = record.CreatedAt
	}
	if record.LastSignInAt != nil {
		merged.LastSignInAt = record.LastSignInAt
	}
	if record.EmailConfirmedAt != nil {
		merged.EmailConfirmedAt = record.EmailConfirmedAt
	}
	return merged, nil
}
