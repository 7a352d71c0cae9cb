package models

import "time"

// Prestation is one unit of field work scheduled against a bon de commande.
type Prestation struct {
	ID             uint       `gorm:"primaryKey"`
	DatePrestation *time.Time // nil = pas encore programmée
	Description    string     `gorm:"type:text"`

	// Statut is derived by the resolver from DatePrestation; the only direct
	// writes are the terminate action and admin overrides.
	Statut StatutPrestation `gorm:"size:50;not null;default:'à programmer';index"`

	BonDeCommandeID uint `gorm:"index"` // 0 = pas encore rattachée à un bon

	EmployeID uint  `gorm:"index"`
	Employe   *User `gorm:"foreignKey:EmployeID"`

	TypePrestationID uint            `gorm:"index"`
	TypePrestation   *TypePrestation `gorm:"foreignKey:TypePrestationID"`

	CompteRendu string `gorm:"type:text"` // rapport du technicien à la clôture
	Signature   string `gorm:"type:text"` // signature client (data URL)

	CreatedAt time.Time
	UpdatedAt time.Time
}
