package services

import (
	"time"

	"github.com/DreamoreWM/365d/internal/models"
)

const dayFormat = "2006-01-02"

// ResolveStatut computes the statut a prestation should carry on the given
// day. Pure: today is always threaded in by the caller, never read from the
// clock, so the nightly sweep, the handlers and the tests share one code
// path.
//
// Comparison is day-granular; time of day is ignored. Rules:
//   - pas de date         -> à programmer
//   - date == aujourd'hui -> en cours
//   - date future         -> programmé
//   - date passée         -> non effectué, sauf pour les statuts terminé et
//     non effectué qui sont conservés tels quels.
//
// terminé and non effectué survive re-resolution: a rerun of the sweep must
// never undo the work a technician marked complete, nor resurrect a missed
// prestation into programmé. terminé is never produced here; only the
// explicit terminate action sets it.
func ResolveStatut(date *time.Time, current models.StatutPrestation, today time.Time) models.StatutPrestation {
	if date == nil {
		return models.PrestationAProgrammer
	}
	d := date.Format(dayFormat)
	t := today.Format(dayFormat)
	if d == t {
		return models.PrestationEnCours
	}
	if d > t {
		return models.PrestationProgrammee
	}
	// Date passée.
	if current.Sticky() {
		return current
	}
	return models.PrestationNonEffectuee
}

// bonRollup is the tally of one bon's prestations.
type bonRollup struct {
	terminees       int
	hasNonEffectuee bool
	hasEnCours      bool
	hasProgrammee   bool
}

func tally(prestations []models.Prestation) bonRollup {
	var r bonRollup
	for i := range prestations {
		switch prestations[i].Statut {
		case models.PrestationTerminee:
			r.terminees++
		case models.PrestationNonEffectuee:
			r.hasNonEffectuee = true
		case models.PrestationEnCours:
			r.hasEnCours = true
		case models.PrestationProgrammee:
			r.hasProgrammee = true
		}
	}
	return r
}

// AggregateBon recomputes the derived fields of a bon from its loaded
// prestations: the terminé counter, the quota (taken from the attached
// TypePrestation when there is one) and the statut. In-memory only; callers
// persist the result.
//
// Status rules, first match wins. The quota check comes before the
// non-effectué check: a quota of 2 met by 2 prestations terminées closes the
// bon even if a third one was missed. A bon whose remaining prestations are
// all non effectuées goes back to à programmer, not to a missed state of its
// own.
func AggregateBon(bon *models.BonDeCommande) {
	if bon == nil {
		return
	}
	r := tally(bon.Prestations)
	bon.NombrePrestations = r.terminees
	if bon.TypePrestation != nil {
		bon.NombrePrestationsNecessaires = bon.TypePrestation.NombrePrestationsNecessaires
	}
	switch {
	case len(bon.Prestations) == 0:
		bon.Statut = models.BonAProgrammer
	case r.terminees >= bon.NombrePrestationsNecessaires && bon.NombrePrestationsNecessaires > 0:
		bon.Statut = models.BonTermine
	case r.hasEnCours:
		bon.Statut = models.BonEnCours
	case r.hasProgrammee:
		bon.Statut = models.BonProgramme
	default:
		// Que des non effectuées, ou des terminées sous quota (quota nul
		// inclus) : le bon repasse à programmer.
		bon.Statut = models.BonAProgrammer
	}
}
