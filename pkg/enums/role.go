package enums

import (
	"fmt"
	"strings"
)

// Role is the access profile of a person.
type Role string

const (
	RoleMilitar  Role = "Militar"
	RoleFiscSU   Role = "Fisc SU"
	RoleAdmLocal Role = "ADM Local"
	RoleAdmGeral Role = "ADM Geral"
)

var validRoles = []Role{
	RoleMilitar,
	RoleFiscSU,
	RoleAdmLocal,
	RoleAdmGeral,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role is one of the administrator profiles.
func (r Role) IsAdmin() bool {
	return r == RoleAdmLocal || r == RoleAdmGeral
}

func (r Role) IsSupervisor() bool {
	return r == RoleFiscSU
}

// ParseRole converts raw input into a Role, ignoring case and surrounding spaces.
func ParseRole(value string) (Role, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validRoles {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
