package reservations

import (
	"context"

	"github.com/erancho/erancho-backend/internal/repo"
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// PersonDateIndex enforces one reservation per person and date.
	PersonDateIndex = "reservations_person_date_idx"
	// PersonDateColumns is how SQLite names the same index in its errors.
	PersonDateColumns = "reservations.person_cpf, reservations.meal_date"
)

// Repository defines persistence operations for reservations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByPerson(ctx context.Context, cpf string) ([]models.Reservation, error)
	ListByPeople(ctx context.Context, cpfs []string, date *calendar.Date) ([]models.Reservation, error)
	ListByDate(ctx context.Context, date calendar.Date) ([]models.Reservation, error)
	ListAll(ctx context.Context) ([]models.Reservation, error)
	Find(ctx context.Context, cpf string, date calendar.Date) (*models.Reservation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	Create(ctx context.Context, reservation *models.Reservation) error
	CreateMany(ctx context.Context, rows []models.Reservation) error
	DeleteByPerson(ctx context.Context, cpf string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	SetAttendance(ctx context.Context, id uuid.UUID, confirmed bool) error
	DeleteOrphans(ctx context.Context) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a reservations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) ListByPerson(ctx context.Context, cpf string) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.DB(ctx).
		Where("person_cpf = ?", cpf).
		Order("meal_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByPeople(ctx context.Context, cpfs []string, date *calendar.Date) ([]models.Reservation, error) {
	if len(cpfs) == 0 {
		return []models.Reservation{}, nil
	}
	query := r.DB(ctx).Where("person_cpf IN ?", cpfs)
	if date != nil {
		query = query.Where("meal_date = ?", *date)
	}
	var rows []models.Reservation
	err := query.
		Order("meal_date ASC").
		Order("person_cpf ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByDate(ctx context.Context, date calendar.Date) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.DB(ctx).
		Where("meal_date = ?", date).
		Order("person_cpf ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListAll(ctx context.Context) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.DB(ctx).
		Order("meal_date ASC").
		Order("person_cpf ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Find(ctx context.Context, cpf string, date calendar.Date) (*models.Reservation, error) {
	var row models.Reservation
	if err := r.DB(ctx).
		Where("person_cpf = ? AND meal_date = ?", cpf, date).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var row models.Reservation
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Create(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	return r.DB(ctx).Create(reservation).Error
}

func (r *repository) CreateMany(ctx context.Context, rows []models.Reservation) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	return r.DB(ctx).Create(&rows).Error
}

func (r *repository) DeleteByPerson(ctx context.Context, cpf string) (int64, error) {
	res := r.DB(ctx).Where("person_cpf = ?", cpf).Delete(&models.Reservation{})
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Reservation{})
	return res.RowsAffected, res.Error
}

func (r *repository) SetAttendance(ctx context.Context, id uuid.UUID, confirmed bool) error {
	res := r.DB(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		UpdateColumn("attendance_confirmed", confirmed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteOrphans removes reservations whose person no longer exists.
func (r *repository) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.DB(ctx).
		Where("NOT EXISTS (SELECT 1 FROM people WHERE people.cpf = reservations.person_cpf)").
		Delete(&models.Reservation{})
	return res.RowsAffected, res.Error
}
