package domain

// Role enumerates authorization levels carried in tokens.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Authorities returns the granted authority set for the role.
func (r Role) Authorities() []string {
	switch r {
	case RoleAdmin:
		return []string{"ROLE_ADMIN", "ROLE_USER"}
	case RoleUser:
		return []string{"ROLE_USER"}
	}
	return nil
}
