package models

// Role determines which endpoints a user may call.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// In reports whether r is contained in allowed.
func (r Role) In(allowed ...Role) bool {
	for _, candidate := range allowed {
		if candidate == r {
			return true
		}
	}
	return false
}
