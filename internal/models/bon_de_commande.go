package models

import "time"

// BonDeCommande is a client work order: a bundle of prestations to deliver.
type BonDeCommande struct {
	ID             uint   `gorm:"primaryKey"`
	NumeroCommande string `gorm:"size:50;index"` // numéro client, généré si absent

	ClientNom               string `gorm:"size:100;not null;index"`
	ClientAdresse           string `gorm:"size:255"`
	ClientComplementAdresse string `gorm:"size:255"`
	ClientTelephone         string `gorm:"size:50"`
	ClientEmail             string `gorm:"size:180"`

	DateCommande        time.Time
	DateLimiteExecution *time.Time

	Statut StatutBon `gorm:"size:50;not null;default:'à programmer';index"`

	// NombrePrestations counts prestations terminées only. Recomputed by the
	// aggregator, never edited directly.
	NombrePrestations int `gorm:"not null;default:0"`
	// NombrePrestationsNecessaires is the quota to consider the bon terminé.
	// Refreshed from the TypePrestation when one is attached; a direct value
	// only applies without one.
	NombrePrestationsNecessaires int `gorm:"not null;default:0"`

	TypePrestationID uint            `gorm:"index"`
	TypePrestation   *TypePrestation `gorm:"foreignKey:TypePrestationID"`

	// The bon owns its prestations; deletion cascades at the application
	// level (a detached prestation keeps bon_de_commande_id = 0, which rules
	// out a database-level constraint).
	Prestations []Prestation `gorm:"foreignKey:BonDeCommandeID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
