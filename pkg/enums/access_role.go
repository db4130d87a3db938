package enums

import "fmt"

// AccessRole describes what a caller is allowed to do through the API.
type AccessRole string

const (
	AccessRoleAdmin     AccessRole = "admin"
	AccessRoleRecipient AccessRole = "recipient"
)

var validAccessRoles = []AccessRole{
	AccessRoleAdmin,
	AccessRoleRecipient,
}

// String implements fmt.Stringer.
func (r AccessRole) String() string {
	return string(r)
}

// IsValid reports whether the role is known.
func (r AccessRole) IsValid() bool {
	for _, candidate := range validAccessRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseAccessRole converts raw input into an AccessRole.
func ParseAccessRole(value string) (AccessRole, error) {
	for _, candidate := range validAccessRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid access role %q", value)
}
