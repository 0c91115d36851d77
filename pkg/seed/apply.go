package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/internal/reservations"
	"github.com/erancho/erancho-backend/internal/sectors"
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/config"
	"github.com/erancho/erancho-backend/pkg/db"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/erancho/erancho-backend/pkg/security"
	"gorm.io/gorm"
)

// Result counts the rows a seed run inserted.
type Result struct {
	Sectors      int
	People       int
	Reservations int
}

// Params wires a seed run.
type Params struct {
	DB       *db.Client
	Roster   *Roster
	Clock    calendar.Clock
	Password config.PasswordConfig
	Logger   *logger.Logger
}

// Apply inserts the roster in one transaction. Existing sectors, people and
// reservations are left untouched, so running it twice is harmless.
func Apply(ctx context.Context, params Params) (Result, error) {
	var result Result
	if params.DB == nil {
		return result, fmt.Errorf("db client required")
	}
	if params.Roster == nil {
		return result, fmt.Errorf("roster required")
	}
	today := params.Clock.Today()

	err := params.DB.WithTx(ctx, func(tx *gorm.DB) error {
		sectorRepo := sectors.NewRepository(tx)
		peopleRepo := people.NewRepository(tx)
		reservationRepo := reservations.NewRepository(tx)

		sectorIDs := make(map[string]int64, len(params.Roster.Sectors))
		for _, name := range params.Roster.Sectors {
			sector, created, err := sectors.FindOrCreate(ctx, sectorRepo, name)
			if err != nil {
				return fmt.Errorf("seed sector %q: %w", name, err)
			}
			if created {
				result.Sectors++
			}
			sectorIDs[sectors.NameKey(name)] = sector.ID
		}

		for _, entry := range params.Roster.People {
			cpf := strings.TrimSpace(entry.CPF)
			if _, err := peopleRepo.FindByCPF(ctx, cpf); err == nil {
				continue
			} else if !db.IsNotFound(err) {
				return fmt.Errorf("lookup person %s: %w", cpf, err)
			}
			role, err := entry.role()
			if err != nil {
				return err
			}
			status, err := entry.status()
			if err != nil {
				return err
			}
			pin, err := security.StorePin(entry.Pin, params.Password)
			if err != nil {
				return fmt.Errorf("store pin for %s: %w", cpf, err)
			}
			person := &models.Person{
				CPF:      cpf,
				Name:     strings.TrimSpace(entry.Name),
				WarName:  strings.TrimSpace(entry.WarName),
				Rank:     strings.TrimSpace(entry.Rank),
				SectorID: sectorIDs[sectors.NameKey(entry.Sector)],
				Role:     role,
				Status:   status,
				Pin:      pin,
			}
			if err := peopleRepo.Create(ctx, person); err != nil {
				return fmt.Errorf("create person %s: %w", cpf, err)
			}
			result.People++
		}

		for _, entry := range params.Roster.Reservations {
			cpf := strings.TrimSpace(entry.CPF)
			date := today.AddDays(entry.DaysAhead)
			if _, err := reservationRepo.Find(ctx, cpf, date); err == nil {
				continue
			} else if !db.IsNotFound(err) {
				return fmt.Errorf("lookup reservation %s %s: %w", cpf, date, err)
			}
			if err := reservationRepo.Create(ctx, &models.Reservation{PersonCPF: cpf, MealDate: date}); err != nil {
				return fmt.Errorf("create reservation %s %s: %w", cpf, date, err)
			}
			result.Reservations++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if params.Logger != nil {
		logCtx := params.Logger.WithFields(ctx, map[string]any{
			"sectors":      result.Sectors,
			"people":       result.People,
			"reservations": result.Reservations,
		})
		params.Logger.Info(logCtx, "seed.applied")
	}
	return result, nil
}
