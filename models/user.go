package models

import "time"

// User represents a registered account. Records are immutable after creation.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	FullName     string `gorm:"size:100"`
	Email        string `gorm:"unique;not null;size:255"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}
