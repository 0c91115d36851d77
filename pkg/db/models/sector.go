package models

import "time"

// Sector groups people under one supervisor.
type Sector struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	NameKey   string    `gorm:"column:name_key;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Sector) TableName() string { return "sectors" }
