package session

import "github.com/utafrali/EcommerceGo/storefront/internal/domain"

// State is the lifecycle state of the session.
type State int

const (
	// Resolving means the persisted token has not been checked yet.
	Resolving State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// ReadModel is the view of the session consumed by the route guard and
// the synchronizer. Generation changes on every transition, so a caller
// holding an old value can tell that the session moved on.
type ReadModel struct {
	State           State
	IsAuthenticated bool
	Role            domain.Role
	Generation      uint64
}

// IsAdmin reports whether the session carries the admin role.
func (rm ReadModel) IsAdmin() bool {
	return rm.IsAuthenticated && rm.Role == domain.RoleAdmin
}
