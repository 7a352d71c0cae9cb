package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/DreamoreWM/365d/internal/models"
)

func TestSeedIdempotent(t *testing.T) {
	d, err := gorm.Open(sqlite.Open("file:seed_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.AutoMigrate(&models.TypePrestation{}); err != nil {
		t.Fatal(err)
	}
	seed(d)
	seed(d)
	var count int64
	d.Model(&models.TypePrestation{}).Count(&count)
	if count < 3 {
		t.Fatalf("expected at least 3 types got %d", count)
	}
	// Ensure baseline entries exist exactly once (idempotency)
	var c1, c2 int64
	d.Model(&models.TypePrestation{}).Where("nom = ?", "Entretien chaudière").Count(&c1)
	d.Model(&models.TypePrestation{}).Where("nom = ?", "Contrat maintenance annuel").Count(&c2)
	if c1 != 1 || c2 != 1 {
		t.Fatalf("baseline types duplicated or missing: chaudière=%d contrat=%d", c1, c2)
	}
}
