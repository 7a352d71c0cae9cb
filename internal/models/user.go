package models

import "time"

// User is a technician or back-office user referenced by prestations.
// Authentication lives outside this service; Password only stores the hash.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"size:180;uniqueIndex;not null"`
	Password  string `gorm:"size:255"`
	Prenom    string `gorm:"size:100"`
	Nom       string `gorm:"size:100"`
	Role      string `gorm:"size:50;not null;default:'technicien'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
