package models

import "time"

// StoreSchema records the schema version applied to a named collection.
type StoreSchema struct {
	Name      string `gorm:"primaryKey;type:varchar(64)"`
	Version   int    `gorm:"not null"`
	UpdatedAt time.Time
}
