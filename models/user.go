package models

import (
	"time"
)

// User owns zero or more statements. Rows are created at registration and are
// never updated by the web handlers.
type User struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Email        string `gorm:"size:120;not null;uniqueIndex"`
	PasswordHash []byte `gorm:"not null"`
}
