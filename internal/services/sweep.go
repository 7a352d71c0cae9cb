package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/DreamoreWM/365d/internal/models"
)

// PrestationManager owns the persistence side of the status engine: it runs
// the pure resolver/aggregator and saves what changed. The decision logic
// itself stays in ResolveStatut/AggregateBon so it remains testable without
// a database.
type PrestationManager struct {
	DB *gorm.DB
}

func NewPrestationManager(db *gorm.DB) *PrestationManager {
	return &PrestationManager{DB: db}
}

// UpdatePrestationStatut resolves one prestation's statut for the given day
// and persists it when it changed.
func (m *PrestationManager) UpdatePrestationStatut(p *models.Prestation, today time.Time) error {
	statut := ResolveStatut(p.DatePrestation, p.Statut, today)
	if statut == p.Statut {
		return nil
	}
	p.Statut = statut
	if err := m.DB.Model(p).Update("statut", statut).Error; err != nil {
		return fmt.Errorf("save prestation %d: %w", p.ID, err)
	}
	return nil
}

// RecomputeBon re-aggregates one bon from its current prestation statuts and
// persists the derived fields. Prestations and TypePrestation must already
// be loaded on the struct.
func (m *PrestationManager) RecomputeBon(bon *models.BonDeCommande) error {
	if bon == nil {
		return fmt.Errorf("recompute: bon nil")
	}
	AggregateBon(bon)
	updates := map[string]any{
		"statut":                         bon.Statut,
		"nombre_prestations":             bon.NombrePrestations,
		"nombre_prestations_necessaires": bon.NombrePrestationsNecessaires,
	}
	if err := m.DB.Model(bon).Updates(updates).Error; err != nil {
		return fmt.Errorf("save bon %d: %w", bon.ID, err)
	}
	return nil
}

// RecomputeBonByID loads the bon with its prestations and type, then
// recomputes it. A zero id is a no-op (prestation détachée). Called after
// every create/update/delete of a prestation.
func (m *PrestationManager) RecomputeBonByID(id uint) error {
	if id == 0 {
		return nil
	}
	var bon models.BonDeCommande
	if err := m.DB.Preload("Prestations").Preload("TypePrestation").First(&bon, id).Error; err != nil {
		return fmt.Errorf("load bon %d: %w", id, err)
	}
	return m.RecomputeBon(&bon)
}

// SweepResult counts what one sweep pass touched.
type SweepResult struct {
	Bons        int `json:"bons"`
	Prestations int `json:"prestations"`
	Updated     int `json:"updated"`
	Failed      int `json:"failed"`
}

// SweepAll resolves every prestation for the given day, including the ones
// not yet attached to a bon, then re-aggregates every bon. Running it twice
// with the same today leaves the data untouched the second time.
//
// One failing row does not stop the pass: the error is logged, counted, and
// the sweep moves on. The returned error, if any, summarises the failures.
func (m *PrestationManager) SweepAll(today time.Time) (SweepResult, error) {
	var res SweepResult

	// 1) Toutes les prestations d'abord, pour que l'agrégation des bons ne
	// voie jamais un mélange de statuts résolus et non résolus.
	var prestations []models.Prestation
	if err := m.DB.Find(&prestations).Error; err != nil {
		return res, fmt.Errorf("load prestations: %w", err)
	}
	res.Prestations = len(prestations)
	for i := range prestations {
		p := &prestations[i]
		statut := ResolveStatut(p.DatePrestation, p.Statut, today)
		if statut == p.Statut {
			continue
		}
		if err := m.DB.Model(p).Update("statut", statut).Error; err != nil {
			log.Printf("sweep: prestation %d: %v", p.ID, err)
			res.Failed++
			continue
		}
		p.Statut = statut
		res.Updated++
	}

	// 2) Puis chaque bon, sur les statuts fraîchement persistés.
	var bons []models.BonDeCommande
	if err := m.DB.Preload("Prestations").Preload("TypePrestation").Find(&bons).Error; err != nil {
		return res, fmt.Errorf("load bons: %w", err)
	}
	res.Bons = len(bons)
	for i := range bons {
		if err := m.RecomputeBon(&bons[i]); err != nil {
			log.Printf("sweep: bon %d: %v", bons[i].ID, err)
			res.Failed++
		}
	}

	if res.Failed > 0 {
		return res, fmt.Errorf("sweep: %d élément(s) en échec", res.Failed)
	}
	return res, nil
}
