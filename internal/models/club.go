package models

// ClubCategory classifies a club.
type ClubCategory string

const (
	ClubDriver ClubCategory = "driver"
	ClubWood   ClubCategory = "wood"
	ClubHybrid ClubCategory = "hybrid"
	ClubIron   ClubCategory = "iron"
	ClubWedge  ClubCategory = "wedge"
	ClubPutter ClubCategory = "putter"
)

// Club is a single piece of equipment. The full set of a player's clubs is
// "the bag"; the bag is replaced wholesale when it changes, not synced
// club by club.
type Club struct {
	ID       int64
	ServerID *int64
	Name     string
	Category ClubCategory
	Status   SyncStatus
}

// ClubDefinition is a catalog entry backing the add-club flow: a known club
// model with its category and loft. Definitions are seeded by migration and
// never synced.
type ClubDefinition struct {
	ID       int64
	Name     string
	Category ClubCategory
	Loft     float64
}
