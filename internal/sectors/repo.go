package sectors

import (
	"context"
	"strings"

	"github.com/erancho/erancho-backend/internal/repo"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

const (
	// NameIndex is the unique index enforcing case-insensitive sector names.
	NameIndex = "sectors_name_key_idx"
	// NameColumn is how SQLite names the same index in its errors.
	NameColumn = "sectors.name_key"
)

// NameKey folds name for case-insensitive comparison, accents included
// ("COMUNICAÇÕES" and "Comunicações" share a key).
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Repository defines persistence operations for sectors.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Sector, error)
	FindByID(ctx context.Context, id int64) (*models.Sector, error)
	FindByName(ctx context.Context, name string) (*models.Sector, error)
	Create(ctx context.Context, sector *models.Sector) error
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a sectors repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) List(ctx context.Context) ([]models.Sector, error) {
	var rows []models.Sector
	if err := r.DB(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Sector, error) {
	var sector models.Sector
	if err := r.DB(ctx).First(&sector, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sector, nil
}

// FindByName matches names by NameKey, the same way the unique index does.
func (r *repository) FindByName(ctx context.Context, name string) (*models.Sector, error) {
	var sector models.Sector
	if err := r.DB(ctx).
		Where("name_key = ?", NameKey(name)).
		First(&sector).Error; err != nil {
		return nil, err
	}
	return &sector, nil
}

func (r *repository) Create(ctx context.Context, sector *models.Sector) error {
	sector.NameKey = NameKey(sector.Name)
	return r.DB(ctx).Create(sector).Error
}

func (r *repository) Rename(ctx context.Context, id int64, name string) error {
	return r.DB(ctx).
		Model(&models.Sector{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"name": name, "name_key": NameKey(name)}).Error
}

func (r *repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Sector{})
	return res.RowsAffected, res.Error
}
