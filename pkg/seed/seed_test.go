package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/internal/reservations"
	"github.com/erancho/erancho-backend/internal/sectors"
	"github.com/erancho/erancho-backend/internal/testutil"
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/config"
	"github.com/erancho/erancho-backend/pkg/enums"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/erancho/erancho-backend/pkg/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRosterIsValid(t *testing.T) {
	roster, err := seed.Default()
	require.NoError(t, err)
	assert.Len(t, roster.Sectors, 3)
	assert.Len(t, roster.People, 9)
	assert.Len(t, roster.Reservations, 3)
}

func TestParseReportsEveryProblem(t *testing.T) {
	doc := `
sectors: [Alfa, alfa]
people:
  - cpf: "1"
    name: ""
    pin: "1"
    role: General
    sector: Bravo
reservations:
  - cpf: "9"
    days_ahead: -1
`
	_, err := seed.Parse(strings.NewReader(doc))
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"duplicate sector", "name is required", "invalid role", "unknown sector", "unknown person", "days_ahead"} {
		assert.Contains(t, msg, want)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := seed.Parse(strings.NewReader("sectors: []\nsquads: []\n"))
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sectors: [Alfa]\npeople:\n  - cpf: \"1\"\n    name: Um\n    pin: \"9\"\n    sector: alfa\n"), 0o600))
	roster, err := seed.Load(path)
	require.NoError(t, err)
	require.Len(t, roster.People, 1)

	_, err = seed.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestApplyDefaultRosterIsIdempotent(t *testing.T) {
	ctx := context.Background()
	client := testutil.OpenDB(t)
	roster, err := seed.Default()
	require.NoError(t, err)
	today := calendar.MustParse("2024-01-01")
	params := seed.Params{
		DB:       client,
		Roster:   roster,
		Clock:    calendar.FixedClock(today),
		Password: config.PasswordConfig{PinStorage: config.PinStoragePlain},
		Logger:   logger.Discard(),
	}

	result, err := seed.Apply(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Sectors: 3, People: 9, Reservations: 3}, result)

	again, err := seed.Apply(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{}, again)

	comando, err := sectors.NewRepository(client.DB()).FindByName(ctx, "comando")
	require.NoError(t, err)
	admin, err := people.NewRepository(client.DB()).FindByCPF(ctx, "02541082029")
	require.NoError(t, err)
	assert.Equal(t, comando.ID, admin.SectorID)
	assert.Equal(t, enums.RoleAdmLocal, admin.Role)
	assert.Equal(t, enums.AccountStatusApproved, admin.Status)
	assert.Equal(t, "1234", admin.Pin)

	rows, err := reservations.NewRepository(client.DB()).ListByDate(ctx, today.AddDays(8))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
