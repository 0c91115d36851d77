package reports

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/internal/reservations"
	"github.com/erancho/erancho-backend/internal/sectors"
	"github.com/erancho/erancho-backend/internal/testutil"
	"github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/erancho/erancho-backend/pkg/enums"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = calendar.MustParse("2024-01-09")

func newReportService(t *testing.T) (*Service, reservations.Repository, people.Repository) {
	t.Helper()
	client := testutil.OpenDB(t)
	ctx := context.Background()
	sectorRepo := sectors.NewRepository(client.DB())
	peopleRepo := people.NewRepository(client.DB())
	resRepo := reservations.NewRepository(client.DB())

	require.NoError(t, sectorRepo.Create(ctx, &models.Sector{Name: "1ª Cia Fuz"}))
	require.NoError(t, sectorRepo.Create(ctx, &models.Sector{Name: "2ª Cia Fuz"}))
	for _, p := range []models.Person{
		{CPF: "111", Name: "João Silva", WarName: "Sgt Silva", Rank: "3º Sgt", SectorID: 1, Role: enums.RoleFiscSU},
		{CPF: "222", Name: "Carlos Souza", WarName: "Cb Souza", Rank: "Cabo", SectorID: 1, Role: enums.RoleMilitar},
		{CPF: "333", Name: "Ricardo Pereira", WarName: "Sd Pereira", Rank: "Soldado", SectorID: 1, Role: enums.RoleMilitar},
		{CPF: "555", Name: "Mariana Lima", WarName: "Sd Lima", Rank: "Soldado", SectorID: 2, Role: enums.RoleMilitar},
	} {
		p := p
		p.Status = enums.AccountStatusApproved
		p.Pin = "1234"
		require.NoError(t, peopleRepo.Create(ctx, &p))
	}
	require.NoError(t, resRepo.CreateMany(ctx, []models.Reservation{
		{PersonCPF: "333", MealDate: day, AttendanceConfirmed: true},
		{PersonCPF: "222", MealDate: day},
		{PersonCPF: "555", MealDate: day},
		{PersonCPF: "ghost", MealDate: day},
		{PersonCPF: "222", MealDate: day.AddDays(1)},
	}))

	svc, err := NewService(resRepo, peopleRepo, sectorRepo)
	require.NoError(t, err)
	return svc, resRepo, peopleRepo
}

func entryNames(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestDailyPartitionsAndOmitsOrphans(t *testing.T) {
	svc, _, _ := newReportService(t)

	report, err := svc.Daily(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, []string{"Ricardo Pereira"}, entryNames(report.Present))
	assert.Equal(t, []string{"Carlos Souza", "Mariana Lima"}, entryNames(report.Absent))
	assert.Equal(t, "2ª Cia Fuz", report.Absent[1].SectorName)

	empty, err := svc.Daily(context.Background(), day.AddDays(5))
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.NotNil(t, empty.Present)

	_, err = svc.Daily(context.Background(), "")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestSummarizeCountsOrphans(t *testing.T) {
	svc, _, _ := newReportService(t)

	summary, err := svc.Summarize(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Reserved)
	assert.Equal(t, 1, summary.Present)
	assert.Equal(t, 2, summary.Absent)
	assert.Equal(t, 1, summary.Orphaned)
}

func TestSectorDayListsSoldiers(t *testing.T) {
	svc, _, _ := newReportService(t)
	ctx := context.Background()
	fisc := auth.Principal{CPF: "111", Role: enums.RoleFiscSU, SectorID: 1}

	view, err := svc.SectorDay(ctx, fisc, 1, day)
	require.NoError(t, err)
	assert.Equal(t, "1ª Cia Fuz", view.SectorName)
	assert.Equal(t, 2, view.ReservedCount)
	require.Len(t, view.Members, 2)
	assert.Equal(t, "Carlos Souza", view.Members[0].Name)
	assert.True(t, view.Members[0].Reserved)
	assert.True(t, view.Members[1].AttendanceConfirmed)

	next, err := svc.SectorDay(ctx, fisc, 1, day.AddDays(1))
	require.NoError(t, err)
	assert.Equal(t, 1, next.ReservedCount)

	_, err = svc.SectorDay(ctx, fisc, 2, day)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))

	_, err = svc.SectorDay(ctx, auth.Principal{CPF: "a", Role: enums.RoleAdmLocal}, 42, day)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestRenderDaily(t *testing.T) {
	svc, _, _ := newReportService(t)
	report, err := svc.Daily(context.Background(), day)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderDaily(&buf, report))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, "Arranchamento 2024-01-09")
	assert.Contains(t, out, "Sd Pereira")
	assert.Contains(t, out, "2ª Cia Fuz")
	assert.Less(t, strings.Index(out, "Cb Souza"), strings.Index(out, "Sd Lima"))

	buf.Reset()
	require.NoError(t, RenderDaily(&buf, &DailyReport{Date: day}))
	assert.Contains(t, buf.String(), "Nenhum registro")
}
