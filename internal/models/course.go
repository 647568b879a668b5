package models

import "encoding/json"

// CourseStage is the publication stage of a course definition.
//
// A draft course is editable locally and never partially synced. Publishing
// is a one-way promotion: the canonical definition moves to the server, the
// local draft (with its hole definitions) is deleted, and a freshly pulled
// published copy takes its place.
type CourseStage string

const (
	StageDraft     CourseStage = "draft"
	StagePublished CourseStage = "published"
)

// Course is a physical golf course. It owns its HoleDefinitions by local
// foreign key.
type Course struct {
	ID       int64
	ServerID *int64
	Name     string
	City     string
	State    string
	Lat      float64
	Lng      float64
	Stage    CourseStage
	Status   SyncStatus

	// Holes is the hydrated collection of hole definitions, ordered by
	// number.
	Holes []HoleDefinition
}

// LatLng is a coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HoleDefinition is the static description of one hole on a course,
// compound-unique by (CourseID, Number).
type HoleDefinition struct {
	ID       int64
	ServerID *int64
	CourseID int64
	Number   int
	Par      int

	// Handicap is the hole's difficulty rank on the course, 1..18.
	Handicap int

	// Pin positions on the green.
	Front  LatLng
	Middle LatLng
	Back   LatLng

	// Geometry is an opaque feature payload (polygons and lines for
	// hazards, fairway, green, tee boxes) passed through to the backend
	// untouched.
	Geometry json.RawMessage

	// TeeBoxes is an optional list of tee-box descriptors, also opaque.
	TeeBoxes json.RawMessage
}
