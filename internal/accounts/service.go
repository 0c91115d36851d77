package accounts

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/erancho/erancho-backend/internal/audit"
	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/internal/sectors"
	"github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/config"
	"github.com/erancho/erancho-backend/pkg/db"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/erancho/erancho-backend/pkg/enums"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/erancho/erancho-backend/pkg/security"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// ErrDenied is returned when a known CPF presents the wrong PIN.
var ErrDenied = pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error
}

// Service exposes the account lifecycle.
type Service interface {
	RegisterOrAuthenticate(ctx context.Context, cpf, pin string) (*Outcome, error)
	Approve(ctx context.Context, actor auth.Principal, cpf string, input ApproveInput) (*people.PersonDTO, error)
	Deny(ctx context.Context, actor auth.Principal, cpf string) error
	UpdateProfile(ctx context.Context, actor auth.Principal, input ProfileInput) (*people.PersonDTO, error)
}

// ServiceParams wires the account service.
type ServiceParams struct {
	People   people.Repository
	Sectors  sectors.Repository
	Tx       txRunner
	Audit    auditRecorder
	Password config.PasswordConfig
	Logger   *logger.Logger
}

type service struct {
	people   people.Repository
	sectors  sectors.Repository
	tx       txRunner
	audit    auditRecorder
	password config.PasswordConfig
	logg     *logger.Logger
}

// NewService builds the account service.
func NewService(params ServiceParams) (Service, error) {
	if params.People == nil {
		return nil, fmt.Errorf("people repository required")
	}
	if params.Sectors == nil {
		return nil, fmt.Errorf("sector repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Discard()
	}
	return &service{
		people:   params.People,
		sectors:  params.Sectors,
		tx:       params.Tx,
		audit:    params.Audit,
		password: params.Password,
		logg:     logg,
	}, nil
}

// RegisterOrAuthenticate creates a pending account for an unknown CPF and
// otherwise checks the PIN. A mismatch is ErrDenied, never an internal error.
func (s *service) RegisterOrAuthenticate(ctx context.Context, cpf, pin string) (*Outcome, error) {
	cpf = strings.TrimSpace(cpf)
	if cpf == "" || pin == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cpf and pin are required")
	}

	var out *Outcome
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.people.WithTx(tx)
		person, err := repo.FindByCPF(ctx, cpf)
		switch {
		case err == nil:
			ok, err := security.VerifyPin(pin, person.Pin)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify pin")
			}
			if !ok || person.Status == enums.AccountStatusDenied {
				return ErrDenied
			}
			out = &Outcome{Person: people.FromModel(person)}
			return s.audit.Record(ctx, tx, audit.Entry{
				Type:          enums.EventAccountAuthenticated,
				AggregateType: enums.AggregatePerson,
				AggregateID:   cpf,
				ActorCPF:      cpf,
				Data:          map[string]any{"status": person.Status},
			})
		case db.IsNotFound(err):
			stored, err := security.StorePin(pin, s.password)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store pin")
			}
			person = &models.Person{
				CPF:      cpf,
				Name:     NewPersonName,
				WarName:  NewPersonName,
				Rank:     NewPersonRank,
				SectorID: models.UnassignedSectorID,
				Role:     enums.RoleMilitar,
				Status:   enums.AccountStatusPending,
				Pin:      stored,
			}
			if err := repo.Create(ctx, person); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "account registered concurrently")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create person")
			}
			out = &Outcome{Person: people.FromModel(person), Registered: true}
			return s.audit.Record(ctx, tx, audit.Entry{
				Type:          enums.EventAccountRegistered,
				AggregateType: enums.AggregatePerson,
				AggregateID:   cpf,
				ActorCPF:      cpf,
			})
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup person")
		}
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithPersonID(ctx, cpf)
	if out.Registered {
		s.logg.Info(logCtx, "account.registered")
	} else {
		s.logg.Info(logCtx, "account.authenticated")
	}
	return out, nil
}

// Approve fills in a pending account and activates it. The sector is resolved
// case-insensitively and created when missing, in the same transaction.
func (s *service) Approve(ctx context.Context, actor auth.Principal, cpf string, input ApproveInput) (*people.PersonDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.WarName = strings.TrimSpace(input.WarName)
	input.Rank = strings.TrimSpace(input.Rank)
	input.SectorName = strings.TrimSpace(input.SectorName)
	var missing []string
	for field, value := range map[string]string{
		"name":        input.Name,
		"war_name":    input.WarName,
		"rank":        input.Rank,
		"sector_name": input.SectorName,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "all approval fields are required").
			WithDetails(map[string]any{"missing": missing})
	}
	if input.Role != "" && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	var approved *models.Person
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.people.WithTx(tx)
		person, err := s.loadPending(ctx, repo, cpf)
		if err != nil {
			return err
		}

		sector, created, err := sectors.FindOrCreate(ctx, s.sectors.WithTx(tx), input.SectorName)
		if err != nil {
			return err
		}
		if created {
			if err := s.audit.Record(ctx, tx, audit.Entry{
				Type:          enums.EventSectorCreated,
				AggregateType: enums.AggregateSector,
				AggregateID:   strconv.FormatInt(sector.ID, 10),
				ActorCPF:      actor.CPF,
				Data:          map[string]any{"name": sector.Name, "via": "approval"},
			}); err != nil {
				return err
			}
		}

		role := person.Role
		if input.Role != "" {
			role = input.Role
		}
		updates := map[string]any{
			"name":      input.Name,
			"war_name":  input.WarName,
			"rank":      input.Rank,
			"sector_id": sector.ID,
			"role":      role,
			"status":    enums.AccountStatusApproved,
		}
		if err := repo.Update(ctx, cpf, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve person")
		}
		person.Name = input.Name
		person.WarName = input.WarName
		person.Rank = input.Rank
		person.SectorID = sector.ID
		person.Role = role
		person.Status = enums.AccountStatusApproved
		approved = person

		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventAccountApproved,
			AggregateType: enums.AggregatePerson,
			AggregateID:   cpf,
			ActorCPF:      actor.CPF,
			Data: map[string]any{
				"sector_id":   sector.ID,
				"sector_name": sector.Name,
				"role":        role,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithPersonID(ctx, cpf), "account.approved")
	return people.FromModel(approved), nil
}

// Deny removes a pending account. Its reservations stay behind as orphans.
func (s *service) Deny(ctx context.Context, actor auth.Principal, cpf string) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.people.WithTx(tx)
		if _, err := s.loadPending(ctx, repo, cpf); err != nil {
			return err
		}
		if _, err := repo.Delete(ctx, cpf); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete person")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventAccountDenied,
			AggregateType: enums.AggregatePerson,
			AggregateID:   cpf,
			ActorCPF:      actor.CPF,
		})
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithPersonID(ctx, cpf), "account.denied")
	return nil
}

// UpdateProfile lets a person edit their own name and war name.
func (s *service) UpdateProfile(ctx context.Context, actor auth.Principal, input ProfileInput) (*people.PersonDTO, error) {
	if actor.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	name := strings.TrimSpace(input.Name)
	warName := strings.TrimSpace(input.WarName)
	if name == "" || warName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and war name are required")
	}

	var updated *models.Person
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.people.WithTx(tx)
		person, err := repo.FindByCPF(ctx, actor.CPF)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "person not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load person")
		}
		if err := repo.Update(ctx, actor.CPF, map[string]any{"name": name, "war_name": warName}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
		person.Name = name
		person.WarName = warName
		updated = person
		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventProfileUpdated,
			AggregateType: enums.AggregatePerson,
			AggregateID:   actor.CPF,
			ActorCPF:      actor.CPF,
			Data:          map[string]any{"name": name, "war_name": warName},
		})
	})
	if err != nil {
		return nil, err
	}
	return people.FromModel(updated), nil
}

func (s *service) loadPending(ctx context.Context, repo people.Repository, cpf string) (*models.Person, error) {
	person, err := repo.FindByCPF(ctx, cpf)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "person not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load person")
	}
	if person.Status != enums.AccountStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "account is not pending").
			WithDetails(map[string]any{"status": person.Status})
	}
	return person, nil
}
