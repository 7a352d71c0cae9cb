package models

// StatutPrestation is the status of a single prestation. Persisted as the
// French labels the legacy data already carries (accents included) so
// existing rows keep their meaning.
type StatutPrestation string

const (
	PrestationAProgrammer  StatutPrestation = "à programmer"
	PrestationProgrammee   StatutPrestation = "programmé"
	PrestationEnCours      StatutPrestation = "en cours"
	PrestationTerminee     StatutPrestation = "terminé"
	PrestationNonEffectuee StatutPrestation = "non effectué"
)

// Sticky reports whether the automatic resolver must leave the statut
// untouched once the date has passed. Completed work is never un-done by a
// date comparison, and a missed prestation does not flip back on rerun.
func (s StatutPrestation) Sticky() bool {
	return s == PrestationTerminee || s == PrestationNonEffectuee
}

// Valid reports whether s is one of the five known statuts.
func (s StatutPrestation) Valid() bool {
	switch s {
	case PrestationAProgrammer, PrestationProgrammee, PrestationEnCours, PrestationTerminee, PrestationNonEffectuee:
		return true
	}
	return false
}

// StatutBon is the status of a bon de commande. There is no "non effectué"
// at this level: missed prestations with no remaining live work send the bon
// back to à programmer.
type StatutBon string

const (
	BonAProgrammer StatutBon = "à programmer"
	BonProgramme   StatutBon = "programmé"
	BonEnCours     StatutBon = "en cours"
	BonTermine     StatutBon = "terminé"
)
