package auth

import (
	"github.com/erancho/erancho-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	CPF      string
	Role     enums.Role
	SectorID int64
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients. The CPF is the subject.
type AccessTokenClaims struct {
	Role     enums.Role `json:"role"`
	SectorID int64      `json:"sector_id"`
	jwt.RegisteredClaims
}

// CPF returns the person identifier carried in the subject claim.
func (c AccessTokenClaims) CPF() string {
	return c.Subject
}

// Principal returns the acting identity described by the claims.
func (c AccessTokenClaims) Principal() Principal {
	return Principal{CPF: c.Subject, Role: c.Role, SectorID: c.SectorID}
}
