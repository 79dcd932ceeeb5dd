package domain

// Role is the authorization role resolved from the backend user record.
type Role string

// Role constants define the allowed user roles.
const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// ValidRoles returns the set of valid user roles.
func ValidRoles() []Role {
	return []Role{RoleAdmin, RoleCustomer}
}

// IsValid checks whether r is one of the known roles.
func (r Role) IsValid() bool {
	for _, v := range ValidRoles() {
		if v == r {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
