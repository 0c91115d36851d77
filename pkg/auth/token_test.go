package auth

import (
	"testing"
	"time"

	"github.com/erancho/erancho-backend/pkg/config"
	"github.com/erancho/erancho-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "erancho", ExpirationMinutes: 30}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{
		CPF:      "12345678900",
		Role:     enums.RoleFiscSU,
		SectorID: 3,
		JTI:      "session-1",
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "12345678900", claims.CPF())
	assert.Equal(t, enums.RoleFiscSU, claims.Role)
	assert.Equal(t, int64(3), claims.SectorID)
	assert.Equal(t, "session-1", claims.ID)
	assert.Equal(t, "erancho", claims.Issuer)

	p := claims.Principal()
	assert.True(t, p.CanManageSector(3))
	assert.False(t, p.CanManageSector(4))
}

func TestMintRejectsInvalidPayload(t *testing.T) {
	cfg := testJWTConfig()
	_, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.RoleMilitar})
	require.Error(t, err)
	_, err = MintAccessToken(cfg, time.Now(), AccessTokenPayload{CPF: "1", Role: "General"})
	require.Error(t, err)
	_, err = MintAccessToken(config.JWTConfig{}, time.Now(), AccessTokenPayload{CPF: "1", Role: enums.RoleMilitar})
	require.Error(t, err)
}

func TestParseRejectsWrongSecretAndExpired(t *testing.T) {
	cfg := testJWTConfig()
	past := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, past, AccessTokenPayload{CPF: "1", Role: enums.RoleMilitar})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	require.Error(t, err)

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.CPF())

	other := cfg
	other.Secret = "other"
	_, err = ParseAccessTokenAllowExpired(other, token)
	require.Error(t, err)
}

func TestPrincipalSectorRules(t *testing.T) {
	admin := Principal{CPF: "a", Role: enums.RoleAdmLocal}
	assert.True(t, admin.CanManageSector(0))
	assert.True(t, admin.CanManageSector(9))

	unassigned := Principal{CPF: "f", Role: enums.RoleFiscSU}
	assert.False(t, unassigned.CanManageSector(0))

	soldier := Principal{CPF: "m", Role: enums.RoleMilitar, SectorID: 2}
	assert.False(t, soldier.CanManageSector(2))
	assert.True(t, soldier.HasRole(enums.RoleFiscSU, enums.RoleMilitar))
}
