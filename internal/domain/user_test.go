package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleCustomer.IsValid())
	assert.False(t, Role("authenticated").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestMergeIdentity_RoleFromBackend(t *testing.T) {
	signedIn := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	profile := &Profile{
		ID:           "idp-1",
		Email:        "a@b.com",
		Role:         "authenticated",
		CreatedAt:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		LastSignInAt: &signedIn,
	}
	record := &UserIdentity{ID: "user-1", Email: "a@b.com", Role: RoleAdmin}

	got, err := MergeIdentity(profile, record)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, got.Role)
	assert.Equal(t, "user-1", got.ID)
	assert.Equal(t, "a@b.com", got.Email)
	assert.Equal(t, profile.CreatedAt, got.CreatedAt)
	assert.Equal(t, &signedIn, got.LastSignInAt)
}

func TestMergeIdentity_ProfileRoleNeverTrusted(t *testing.T) {
	profile := &Profile{ID: "idp-1", Email: "a@b.com", Role: "admin"}

	_, err := MergeIdentity(profile, &UserIdentity{Email: "a@b.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRoleMissing))

	_, err = MergeIdentity(profile, nil)
	assert.True(t, errors.Is(err, ErrRoleMissing))
}

func TestMergeIdentity_EmailMismatch(t *testing.T) {
	profile := &Profile{ID: "idp-1", Email: "a@b.com"}
	_, err := MergeIdentity(profile, &UserIdentity{Email: "c@d.com", Role: RoleAdmin})
	require.Error(t, err)
}

func TestMergeIdentity_EmailCaseInsensitive(t *testing.T) {
	profile := &Profile{ID: "idp-1", Email: "A@B.com"}
	got, err := MergeIdentity(profile, &UserIdentity{Email: "a@b.com", Role: RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, "idp-1", got.ID)
	assert.Equal(t, RoleCustomer, got.Role)
}

func TestUserIdentity_ConfirmationStatus(t *testing.T) {
	now := time.Now()
	assert.Equal(t, EmailConfirmed, UserIdentity{EmailConfirmedAt: &now}.ConfirmationStatus())
	assert.Equal(t, EmailPending, UserIdentity{}.ConfirmationStatus())
	assert.Equal(t, EmailPending, UserIdentity{EmailConfirmedAt: &time.Time{}}.ConfirmationStatus())
}
