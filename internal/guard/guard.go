// Package guard decides whether a navigation to a protected view may
// proceed given the current session.
package guard

import (
	"strings"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/session"
)

// Well-known locations.
const (
	LoginPath = "/login"
	AdminPath = "/admin"
	HomePath  = "/"
)

// Outcome is the result of a guard evaluation.
type Outcome int

const (
	Admit Outcome = iota
	// RedirectLogin sends an unauthenticated visitor to the login view.
	RedirectLogin
	// InsufficientPrivilege refuses an authenticated visitor whose role
	// does not satisfy the view. It never redirects to login.
	InsufficientPrivilege
	// Pending defers the decision until the session leaves Resolving.
	Pending
	// RedirectAway moves an authenticated visitor off a view meant for
	// anonymous visitors, such as the login form.
	RedirectAway
)

func (o Outcome) String() string {
	switch o {
	case Admit:
		return "admit"
	case RedirectLogin:
		return "redirect_login"
	case InsufficientPrivilege:
		return "insufficient_privilege"
	case Pending:
		return "pending"
	case RedirectAway:
		return "redirect_away"
	default:
		return "unknown"
	}
}

// Requirement is what a view demands of the session. The zero value
// admits everyone.
type Requirement struct {
	Authenticated bool
	// Role, when set, implies Authenticated.
	Role domain.Role
	// AnonymousOnly views send authenticated visitors to Away.
	AnonymousOnly bool
	Away          string
}

// Protected reports whether the requirement needs a session.
func (r Requirement) Protected() bool {
	return r.Authenticated || r.Role != ""
}

// Decision is the outcome of evaluating a requirement.
type Decision struct {
	Outcome  Outcome
	Location string
	Notice   string
}

// InsufficientPrivilegeNotice is shown to authenticated visitors without
// the required role.
const InsufficientPrivilegeNotice = "you do not have permission to view this page"

// Evaluate decides a navigation from the session read model alone.
func Evaluate(rm session.ReadModel, req Requirement) Decision {
	if req.AnonymousOnly {
		switch {
		case rm.State == session.Resolving:
			return Decision{Outcome: Pending}
		case rm.IsAuthenticated:
			return Decision{Outcome: RedirectAway, Location: req.Away}
		default:
			return Decision{Outcome: Admit}
		}
	}

	if !req.Protected() {
		return Decision{Outcome: Admit}
	}

	switch {
	case rm.State == session.Resolving:
		return Decision{Outcome: Pending}
	case !rm.IsAuthenticated:
		return Decision{Outcome: RedirectLogin, Location: LoginPath}
	case req.Role != "" && rm.Role != req.Role:
		return Decision{Outcome: InsufficientPrivilege, Notice: InsufficientPrivilegeNotice}
	default:
		return Decision{Outcome: Admit}
	}
}

// Rule binds a requirement to a path prefix.
type Rule struct {
	Prefix      string
	Requirement Requirement
}

// Table maps locations to requirements by longest matching prefix.
type Table struct {
	rules []Rule
}

// NewTable builds a table from rules.
func NewTable(rules ...Rule) *Table {
	return &Table{rules: append([]Rule(nil), rules...)}
}

// DefaultTable protects the admin subtree for the admin role and keeps
// signed-in visitors off the login form.
func DefaultTable() *Table {
	return NewTable(
		Rule{Prefix: AdminPath, Requirement: Requirement{Authenticated: true, Role: domain.RoleAdmin}},
		Rule{Prefix: LoginPath, Requirement: Requirement{AnonymousOnly: true, Away: AdminPath}},
	)
}

// Lookup returns the requirement for path.
func (t *Table) Lookup(path string) Requirement {
	var (
		best    Requirement
		bestLen = -1
	)
	for _, r := range t.rules {
		if matches(r.Prefix, path) && len(r.Prefix) > bestLen {
			best, bestLen = r.Requirement, len(r.Prefix)
		}
	}
	return best
}

// Decide evaluates the requirement for path.
func (t *Table) Decide(rm session.ReadModel, path string) Decision {
	return Evaluate(rm, t.Lookup(path))
}

// matches reports whether path is prefix or lies below it.
func matches(prefix, path string) bool {
	if prefix == "/" {
		return true
	}
	prefix = strings.TrimRight(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
