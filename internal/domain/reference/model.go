// Package reference serves the read-only catalogues the wizard's select
// inputs are built from: courts, probation teams and the hearing and meeting
// types. All of it is owned by the booking API; this side only lists it.
package reference

// Item is one catalogue entry.
type Item struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// Catalogue names.
const (
	CatalogueCourts         = "courts"
	CatalogueProbationTeams = "probation-teams"
	CatalogueHearingTypes   = "court-hearing-types"
	CatalogueMeetingTypes   = "probation-meeting-types"
)
