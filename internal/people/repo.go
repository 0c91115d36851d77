package people

import (
	"context"

	"github.com/erancho/erancho-backend/internal/repo"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/erancho/erancho-backend/pkg/enums"
	"gorm.io/gorm"
)

// Filter narrows a directory query. Nil fields match everything.
type Filter struct {
	SectorID *int64
	Status   *enums.AccountStatus
	Role     *enums.Role
}

// Repository defines persistence operations for people.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, person *models.Person) error
	FindByCPF(ctx context.Context, cpf string) (*models.Person, error)
	FindByCPFs(ctx context.Context, cpfs []string) ([]models.Person, error)
	Update(ctx context.Context, cpf string, updates map[string]any) error
	Delete(ctx context.Context, cpf string) (int64, error)
	List(ctx context.Context, filter Filter) ([]models.Person, error)
	ReassignSector(ctx context.Context, from, to int64) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a people repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, person *models.Person) error {
	return r.DB(ctx).Create(person).Error
}

func (r *repository) FindByCPF(ctx context.Context, cpf string) (*models.Person, error) {
	var person models.Person
	if err := r.DB(ctx).First(&person, "cpf = ?", cpf).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *repository) FindByCPFs(ctx context.Context, cpfs []string) ([]models.Person, error) {
	if len(cpfs) == 0 {
		return []models.Person{}, nil
	}
	var rows []models.Person
	if err := r.DB(ctx).Where("cpf IN ?", cpfs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, cpf string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.DB(ctx).
		Model(&models.Person{}).
		Where("cpf = ?", cpf).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, cpf string) (int64, error) {
	res := r.DB(ctx).Where("cpf = ?", cpf).Delete(&models.Person{})
	return res.RowsAffected, res.Error
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.Person, error) {
	query := r.DB(ctx).Model(&models.Person{})
	if filter.SectorID != nil {
		query = query.Where("sector_id = ?", *filter.SectorID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	var rows []models.Person
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	SortByName(rows)
	return rows, nil
}

// ReassignSector moves every member of from into to and reports how many moved.
func (r *repository) ReassignSector(ctx context.Context, from, to int64) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Person{}).
		Where("sector_id = ?", from).
		Update("sector_id", to)
	return res.RowsAffected, res.Error
}
