package enums

import "fmt"

// RecipientRole identifies the capacity in which a payee appears on a split.
type RecipientRole string

const (
	RecipientRoleArtist     RecipientRole = "artist"
	RecipientRoleProducer   RecipientRole = "producer"
	RecipientRoleSongwriter RecipientRole = "songwriter"
	RecipientRoleLabel      RecipientRole = "label"
	RecipientRolePublisher  RecipientRole = "publisher"
	RecipientRoleOther      RecipientRole = "other"
)

var validRecipientRoles = []RecipientRole{
	RecipientRoleArtist,
	RecipientRoleProducer,
	RecipientRoleSongwriter,
	RecipientRoleLabel,
	RecipientRolePublisher,
	RecipientRoleOther,
}

// String implements fmt.Stringer.
func (r RecipientRole) String() string {
	return string(r)
}

// IsValid reports whether the role is known.
func (r RecipientRole) IsValid() bool {
	for _, candidate := range validRecipientRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecipientRole converts raw input into a RecipientRole.
func ParseRecipientRole(value string) (RecipientRole, error) {
	for _, candidate := range validRecipientRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recipient role %q", value)
}
