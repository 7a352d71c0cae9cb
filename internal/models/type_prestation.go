package models

import "time"

// TypePrestation is reference data: a service classification and the number
// of prestations it takes to complete a bon of that type.
type TypePrestation struct {
	ID                           uint   `gorm:"primaryKey"`
	Nom                          string `gorm:"size:100;uniqueIndex;not null"`
	NombrePrestationsNecessaires int    `gorm:"not null;default:1"`
	CreatedAt                    time.Time
	UpdatedAt                    time.Time
}
