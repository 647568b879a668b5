// Package models defines the client-side domain records persisted in the
// local store and synchronized with the backend.
package models

import "time"

// Round is one played round of golf. It owns its Holes by local foreign key.
//
// CourseName and TotalScore are denormalized: the name so the round renders
// offline without a course lookup, the score so lists stay cheap. TotalScore
// is recomputed from the holes on every hole save.
type Round struct {
	// ID is the local store identifier, assigned at creation.
	ID int64

	// ServerID is the backend identifier; nil until the first create sync
	// succeeds.
	ServerID *int64

	// CourseID references a locally stored course, when one exists.
	CourseID *int64

	// CourseServerID references the backend course, when known.
	CourseServerID *int64

	// CourseName is the denormalized course name for offline display.
	CourseName string

	// Date is the calendar day the round was played (YYYY-MM-DD).
	Date string

	// TotalScore is the sum of the hole scores, derived.
	TotalScore int

	CreatedAt time.Time
	EndedAt   *time.Time

	Status SyncStatus

	// Holes is the hydrated collection of hole results, ordered by number.
	Holes []Hole
}
