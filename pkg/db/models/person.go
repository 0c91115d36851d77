package models

import (
	"time"

	"github.com/erancho/erancho-backend/pkg/enums"
)

// UnassignedSectorID marks a person without a sector. No sector row carries it.
const UnassignedSectorID int64 = 0

// Person is a member of the organization, keyed by CPF.
type Person struct {
	CPF       string              `gorm:"column:cpf;primaryKey"`
	Name      string              `gorm:"column:name;not null"`
	WarName   string              `gorm:"column:war_name;not null"`
	Rank      string              `gorm:"column:rank;not null"`
	SectorID  int64               `gorm:"column:sector_id;not null"`
	Role      enums.Role          `gorm:"column:role;not null"`
	Status    enums.AccountStatus `gorm:"column:status;not null"`
	Pin       string              `gorm:"column:pin;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Person) TableName() string { return "people" }
