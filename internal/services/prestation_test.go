package services

import (
	"testing"
	"time"

	"github.com/DreamoreWM/365d/internal/models"
)

var today = time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

func datePtr(t time.Time) *time.Time { return &t }

func TestResolveStatutSansDate(t *testing.T) {
	got := ResolveStatut(nil, models.PrestationProgrammee, today)
	if got != models.PrestationAProgrammer {
		t.Fatalf("expected à programmer got %s", got)
	}
}

func TestResolveStatutParDate(t *testing.T) {
	cases := []struct {
		name    string
		date    time.Time
		current models.StatutPrestation
		want    models.StatutPrestation
	}{
		{"demain", today.AddDate(0, 0, 1), "", models.PrestationProgrammee},
		{"dans deux jours", today.AddDate(0, 0, 2), models.PrestationAProgrammer, models.PrestationProgrammee},
		{"aujourd'hui", today, models.PrestationProgrammee, models.PrestationEnCours},
		{"aujourd'hui à minuit", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), "", models.PrestationEnCours},
		{"hier, était programmée", today.AddDate(0, 0, -1), models.PrestationProgrammee, models.PrestationNonEffectuee},
		{"hier, était en cours", today.AddDate(0, 0, -1), models.PrestationEnCours, models.PrestationNonEffectuee},
		{"hier, sans statut", today.AddDate(0, 0, -1), "", models.PrestationNonEffectuee},
		{"il y a trois jours, à programmer", today.AddDate(0, 0, -3), models.PrestationAProgrammer, models.PrestationNonEffectuee},
	}
	for _, tc := range cases {
		if got := ResolveStatut(datePtr(tc.date), tc.current, today); got != tc.want {
			t.Errorf("%s: expected %s got %s", tc.name, tc.want, got)
		}
	}
}

// terminé and non effectué must survive any number of re-resolutions over a
// past date: the nightly sweep reruns this on every row.
func TestResolveStatutStable(t *testing.T) {
	past := datePtr(today.AddDate(0, 0, -3))
	for _, statut := range []models.StatutPrestation{models.PrestationTerminee, models.PrestationNonEffectuee} {
		got := statut
		for i := 0; i < 3; i++ {
			got = ResolveStatut(past, got, today)
			if got != statut {
				t.Fatalf("pass %d: %s flipped to %s", i+1, statut, got)
			}
		}
	}
}

// Rescheduling a terminé or non effectué prestation to a future date puts it
// back into programmé: stickiness only protects against the past-date arm.
func TestResolveStatutReprogrammation(t *testing.T) {
	future := datePtr(today.AddDate(0, 0, 5))
	for _, statut := range []models.StatutPrestation{models.PrestationTerminee, models.PrestationNonEffectuee} {
		if got := ResolveStatut(future, statut, today); got != models.PrestationProgrammee {
			t.Fatalf("%s rescheduled: expected programmé got %s", statut, got)
		}
	}
}

func bonWith(necessaires int, statuts ...models.StatutPrestation) *models.BonDeCommande {
	bon := &models.BonDeCommande{NombrePrestationsNecessaires: necessaires}
	for _, s := range statuts {
		bon.Prestations = append(bon.Prestations, models.Prestation{Statut: s})
	}
	return bon
}

func TestAggregateBonVide(t *testing.T) {
	for _, quota := range []int{0, 1, 5} {
		bon := bonWith(quota)
		AggregateBon(bon)
		if bon.Statut != models.BonAProgrammer {
			t.Fatalf("quota=%d: expected à programmer got %s", quota, bon.Statut)
		}
		if bon.NombrePrestations != 0 {
			t.Fatalf("quota=%d: expected compteur 0 got %d", quota, bon.NombrePrestations)
		}
	}
}

// The quota check wins over the presence of non effectuées: two terminées
// close a quota of 2 even with a third prestation missed.
func TestAggregateBonQuotaAvantNonEffectuees(t *testing.T) {
	bon := bonWith(2, models.PrestationTerminee, models.PrestationTerminee, models.PrestationNonEffectuee)
	AggregateBon(bon)
	if bon.Statut != models.BonTermine {
		t.Fatalf("expected terminé got %s", bon.Statut)
	}
	if bon.NombrePrestations != 2 {
		t.Fatalf("expected compteur 2 got %d", bon.NombrePrestations)
	}

	// Same prestations, quota not met: the non effectuée has no live work
	// behind it, so the bon needs attention again.
	bon = bonWith(3, models.PrestationTerminee, models.PrestationTerminee, models.PrestationNonEffectuee)
	AggregateBon(bon)
	if bon.Statut != models.BonAProgrammer {
		t.Fatalf("expected à programmer got %s", bon.Statut)
	}
	if bon.NombrePrestations != 2 {
		t.Fatalf("expected compteur 2 got %d", bon.NombrePrestations)
	}
}

func TestAggregateBonPriorites(t *testing.T) {
	cases := []struct {
		name    string
		quota   int
		statuts []models.StatutPrestation
		want    models.StatutBon
	}{
		{"en cours bat programmé", 5, []models.StatutPrestation{models.PrestationEnCours, models.PrestationProgrammee}, models.BonEnCours},
		{"en cours bat non effectué", 5, []models.StatutPrestation{models.PrestationEnCours, models.PrestationNonEffectuee}, models.BonEnCours},
		{"programmé bat non effectué", 5, []models.StatutPrestation{models.PrestationProgrammee, models.PrestationNonEffectuee}, models.BonProgramme},
		{"que des non effectuées", 5, []models.StatutPrestation{models.PrestationNonEffectuee, models.PrestationNonEffectuee}, models.BonAProgrammer},
		{"que des à programmer", 5, []models.StatutPrestation{models.PrestationAProgrammer}, models.BonAProgrammer},
		{"quota atteint malgré en cours", 1, []models.StatutPrestation{models.PrestationTerminee, models.PrestationEnCours}, models.BonTermine},
	}
	for _, tc := range cases {
		bon := bonWith(tc.quota, tc.statuts...)
		AggregateBon(bon)
		if bon.Statut != tc.want {
			t.Errorf("%s: expected %s got %s", tc.name, tc.want, bon.Statut)
		}
	}
}

// Without a type and with a zero quota the bon never auto-completes, even
// with every prestation terminée.
func TestAggregateBonQuotaNul(t *testing.T) {
	bon := bonWith(0, models.PrestationTerminee, models.PrestationTerminee)
	AggregateBon(bon)
	if bon.Statut != models.BonAProgrammer {
		t.Fatalf("expected à programmer got %s", bon.Statut)
	}
	if bon.NombrePrestations != 2 {
		t.Fatalf("expected compteur 2 got %d", bon.NombrePrestations)
	}
}

// The attached TypePrestation is the source of truth for the quota; a stale
// order-level value is overwritten.
func TestAggregateBonQuotaDepuisType(t *testing.T) {
	bon := bonWith(7, models.PrestationTerminee, models.PrestationTerminee)
	bon.TypePrestation = &models.TypePrestation{Nom: "Entretien pompe à chaleur", NombrePrestationsNecessaires: 2}
	AggregateBon(bon)
	if bon.NombrePrestationsNecessaires != 2 {
		t.Fatalf("expected quota rafraîchi à 2 got %d", bon.NombrePrestationsNecessaires)
	}
	if bon.Statut != models.BonTermine {
		t.Fatalf("expected terminé got %s", bon.Statut)
	}
}

func TestAggregateBonCompteur(t *testing.T) {
	cases := []struct {
		statuts []models.StatutPrestation
		want    int
	}{
		{nil, 0},
		{[]models.StatutPrestation{models.PrestationTerminee}, 1},
		{[]models.StatutPrestation{models.PrestationTerminee, models.PrestationNonEffectuee, models.PrestationTerminee, models.PrestationEnCours}, 2},
		{[]models.StatutPrestation{models.PrestationProgrammee, models.PrestationAProgrammer}, 0},
	}
	for i, tc := range cases {
		bon := bonWith(10, tc.statuts...)
		AggregateBon(bon)
		if bon.NombrePrestations != tc.want {
			t.Errorf("case %d: expected compteur %d got %d", i, tc.want, bon.NombrePrestations)
		}
	}
}

// Aggregation over fixed prestation statuts is idempotent.
func TestAggregateBonIdempotent(t *testing.T) {
	bon := bonWith(2, models.PrestationTerminee, models.PrestationProgrammee, models.PrestationNonEffectuee)
	AggregateBon(bon)
	statut, compteur := bon.Statut, bon.NombrePrestations
	AggregateBon(bon)
	if bon.Statut != statut || bon.NombrePrestations != compteur {
		t.Fatalf("second pass changed the result: %s/%d -> %s/%d", statut, compteur, bon.Statut, bon.NombrePrestations)
	}
}

func TestAggregateBonNil(t *testing.T) {
	AggregateBon(nil) // must not panic
}
