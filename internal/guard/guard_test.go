package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/session"
)

var (
	resolving = session.ReadModel{State: session.Resolving}
	anonymous = session.ReadModel{State: session.Unauthenticated}
	customer  = session.ReadModel{State: session.Authenticated, IsAuthenticated: true, Role: domain.RoleCustomer}
	admin     = session.ReadModel{State: session.Authenticated, IsAuthenticated: true, Role: domain.RoleAdmin}
)

func TestEvaluate(t *testing.T) {
	adminOnly := Requirement{Authenticated: true, Role: domain.RoleAdmin}
	signedIn := Requirement{Authenticated: true}
	loginForm := Requirement{AnonymousOnly: true, Away: AdminPath}

	tests := []struct {
		name string
		rm   session.ReadModel
		req  Requirement
		want Outcome
	}{
		{"public admits anonymous", anonymous, Requirement{}, Admit},
		{"public admits while resolving", resolving, Requirement{}, Admit},
		{"admin view admits admin", admin, adminOnly, Admit},
		{"admin view refuses customer", customer, adminOnly, InsufficientPrivilege},
		{"admin view redirects anonymous", anonymous, adminOnly, RedirectLogin},
		{"admin view waits while resolving", resolving, adminOnly, Pending},
		{"signed-in view admits customer", customer, signedIn, Admit},
		{"role alone implies authentication", anonymous, Requirement{Role: domain.RoleAdmin}, RedirectLogin},
		{"login form admits anonymous", anonymous, loginForm, Admit},
		{"login form moves admin away", admin, loginForm, RedirectAway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.rm, tt.req).Outcome)
		})
	}
}

func TestEvaluate_InsufficientPrivilegeIsNotARedirect(t *testing.T) {
	d := Evaluate(customer, Requirement{Authenticated: true, Role: domain.RoleAdmin})
	assert.Equal(t, InsufficientPrivilege, d.Outcome)
	assert.Empty(t, d.Location)
	assert.Equal(t, InsufficientPrivilegeNotice, d.Notice)
}

func TestTable_Lookup(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, domain.RoleAdmin, table.Lookup("/admin").Role)
	assert.Equal(t, domain.RoleAdmin, table.Lookup("/admin/products").Role)
	assert.Equal(t, domain.RoleAdmin, table.Lookup("/admin/products/7/image").Role)
	assert.False(t, table.Lookup("/administrators").Protected())
	assert.False(t, table.Lookup("/products").Protected())
	assert.True(t, table.Lookup("/login").AnonymousOnly)
}

func TestTable_LongestPrefixWins(t *testing.T) {
	table := NewTable(
		Rule{Prefix: "/admin", Requirement: Requirement{Authenticated: true, Role: domain.RoleAdmin}},
		Rule{Prefix: "/admin/help", Requirement: Requirement{}},
	)
	assert.Equal(t, Admit, table.Decide(anonymous, "/admin/help").Outcome)
	assert.Equal(t, RedirectLogin, table.Decide(anonymous, "/admin/users").Outcome)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "insufficient_privilege", InsufficientPrivilege.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
