package auth

import (
	"github.com/erancho/erancho-backend/pkg/enums"
)

// Principal is the authenticated person acting on a request.
type Principal struct {
	CPF      string
	Role     enums.Role
	SectorID int64
}

func (p Principal) IsZero() bool {
	return p.CPF == ""
}

func (p Principal) IsAdmin() bool {
	return p.Role.IsAdmin()
}

// CanManageSector reports whether the principal may act on people of the sector.
// Admins manage every sector; a supervisor only its own assigned one.
func (p Principal) CanManageSector(sectorID int64) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Role == enums.RoleFiscSU && p.SectorID != 0 && p.SectorID == sectorID
}

// HasRole reports whether the principal holds any of the roles.
func (p Principal) HasRole(roles ...enums.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// SystemPrincipal identifies maintenance jobs in audit records.
func SystemPrincipal() Principal {
	return Principal{Role: enums.RoleAdmGeral}
}
