package models

// FairwayOutcome records where the tee shot finished relative to the
// fairway. Only meaningful for holes with par above 3.
type FairwayOutcome string

const (
	FairwayHit   FairwayOutcome = "hit"
	FairwayLeft  FairwayOutcome = "left"
	FairwayRight FairwayOutcome = "right"
)

// GIROutcome records the green-in-regulation result of the approach shot.
type GIROutcome string

const (
	GIRHit   GIROutcome = "hit"
	GIRLong  GIROutcome = "long"
	GIRShort GIROutcome = "short"
	GIRLeft  GIROutcome = "left"
	GIRRight GIROutcome = "right"
)

// Hole is one hole's result within a round. Its true identity is the
// compound key (RoundID, Number); the local ID is an implementation detail
// of the store, which is what makes re-saving a hole during live play an
// upsert rather than a duplicate.
type Hole struct {
	ID      int64
	RoundID int64

	// Number is the hole number, unique within the round.
	Number int

	Par   int
	Score int
	Putts int

	// Fairway is empty for par-3 holes.
	Fairway FairwayOutcome

	GIR GIROutcome

	// WaterHazard and Bunker flag penalty situations on the hole.
	WaterHazard bool
	Bunker      bool

	// Proximity is the distance to the pin after the approach, in meters.
	// Meaningful only when GIR is hit.
	Proximity float64

	// Clubs is the ordered sequence of local club ids used on the hole.
	Clubs []int64
}
