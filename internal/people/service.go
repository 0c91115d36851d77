package people

import (
	"context"
	"fmt"

	"github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/db"
	"github.com/erancho/erancho-backend/pkg/enums"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
)

// Service exposes directory queries over people.
type Service interface {
	Get(ctx context.Context, cpf string) (*PersonDTO, error)
	List(ctx context.Context, actor auth.Principal, filter Filter) ([]PersonDTO, error)
	Pending(ctx context.Context) ([]PersonDTO, error)
}

type service struct {
	repo Repository
}

// NewService builds the directory service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("people repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, cpf string) (*PersonDTO, error) {
	person, err := s.repo.FindByCPF(ctx, cpf)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "person not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load person")
	}
	return FromModel(person), nil
}

// List applies filter for admins. Supervisors are confined to their own
// sector; an unset sector filter defaults to it.
func (s *service) List(ctx context.Context, actor auth.Principal, filter Filter) ([]PersonDTO, error) {
	if !actor.IsAdmin() {
		if actor.Role != enums.RoleFiscSU {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
		}
		if filter.SectorID == nil {
			own := actor.SectorID
			filter.SectorID = &own
		}
		if !actor.CanManageSector(*filter.SectorID) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sector is outside your scope")
		}
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list people")
	}
	return FromModels(rows), nil
}

func (s *service) Pending(ctx context.Context) ([]PersonDTO, error) {
	status := enums.AccountStatusPending
	rows, err := s.repo.List(ctx, Filter{Status: &status})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending people")
	}
	return FromModels(rows), nil
}
