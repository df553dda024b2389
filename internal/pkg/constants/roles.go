package constants

const (
	Admin     = "admin"
	Moderator = "moderator"
	Student   = "student"
)

// ValidRoles is the set of allowed DB enum values for user role.
var ValidRoles = []string{Student, Moderator, Admin}

// IsValidRole returns true if role is one of the allowed enum values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
