package sectors

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/erancho/erancho-backend/internal/audit"
	"github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/db"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/erancho/erancho-backend/pkg/enums"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error
}

// MemberStore moves people between sectors.
type MemberStore interface {
	ReassignSector(ctx context.Context, from, to int64) (int64, error)
}

// MemberStoreFactory binds a MemberStore to a transaction.
type MemberStoreFactory func(tx *gorm.DB) MemberStore

// Service exposes sector management.
type Service interface {
	List(ctx context.Context) ([]SectorDTO, error)
	Get(ctx context.Context, id int64) (*SectorDTO, error)
	Create(ctx context.Context, actor auth.Principal, name string) (*SectorDTO, error)
	Rename(ctx context.Context, actor auth.Principal, id int64, name string) (*SectorDTO, error)
	Delete(ctx context.Context, actor auth.Principal, id int64) error
}

// ServiceParams wires the sector service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Audit   auditRecorder
	Members MemberStoreFactory
}

type service struct {
	repo    Repository
	tx      txRunner
	audit   auditRecorder
	members MemberStoreFactory
}

// NewService builds the sector service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("sector repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("member store factory required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		audit:   params.Audit,
		members: params.Members,
	}, nil
}

func (s *service) List(ctx context.Context) ([]SectorDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sectors")
	}
	out := make([]SectorDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*SectorDTO, error) {
	sector, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load sector")
	}
	return FromModel(sector), nil
}

func (s *service) Create(ctx context.Context, actor auth.Principal, name string) (*SectorDTO, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	var created *models.Sector
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByName(ctx, name); err == nil {
			return duplicateNameError(name)
		} else if !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup sector")
		}

		sector := &models.Sector{Name: name}
		if err := repo.Create(ctx, sector); err != nil {
			return mapWriteError(err, name, "create sector")
		}
		created = sector
		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventSectorCreated,
			AggregateType: enums.AggregateSector,
			AggregateID:   strconv.FormatInt(sector.ID, 10),
			ActorCPF:      actor.CPF,
			Data:          map[string]any{"name": name},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) Rename(ctx context.Context, actor auth.Principal, id int64, name string) (*SectorDTO, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	var renamed *models.Sector
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sector, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLookupError(err, "load sector")
		}
		if other, err := repo.FindByName(ctx, name); err == nil && other.ID != id {
			return duplicateNameError(name)
		} else if err != nil && !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup sector")
		}

		previous := sector.Name
		if err := repo.Rename(ctx, id, name); err != nil {
			return mapWriteError(err, name, "rename sector")
		}
		sector.Name = name
		renamed = sector
		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventSectorRenamed,
			AggregateType: enums.AggregateSector,
			AggregateID:   strconv.FormatInt(id, 10),
			ActorCPF:      actor.CPF,
			Data:          map[string]any{"from": previous, "to": name},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(renamed), nil
}

// Delete removes the sector and moves its members to the unassigned sector
// in the same transaction.
func (s *service) Delete(ctx context.Context, actor auth.Principal, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sector, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLookupError(err, "load sector")
		}
		moved, err := s.members(tx).ReassignSector(ctx, id, models.UnassignedSectorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reassign sector members")
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete sector")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventSectorDeleted,
			AggregateType: enums.AggregateSector,
			AggregateID:   strconv.FormatInt(id, 10),
			ActorCPF:      actor.CPF,
			Data:          map[string]any{"name": sector.Name, "members_reassigned": moved},
		})
	})
}

// FindOrCreate resolves name case-insensitively and creates the sector when
// missing. repo must already be bound to the caller's transaction.
func FindOrCreate(ctx context.Context, repo Repository, name string) (*models.Sector, bool, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, false, err
	}
	existing, err := repo.FindByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !db.IsNotFound(err) {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup sector")
	}
	sector := &models.Sector{Name: name}
	if err := repo.Create(ctx, sector); err != nil {
		return nil, false, mapWriteError(err, name, "create sector")
	}
	return sector, true, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "sector name is required")
	}
	return name, nil
}

func duplicateNameError(name string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "sector already exists").
		WithDetails(map[string]any{"name": name})
}

func mapLookupError(err error, msg string) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "sector not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func mapWriteError(err error, name, msg string) error {
	if db.IsUniqueViolation(err, NameIndex, NameColumn) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sector already exists").
			WithDetails(map[string]any{"name": name})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
