// Package courses is the local-store access layer for courses and their
// static hole definitions.
package courses

import (
	"context"

	"github.com/fairwaylabs/scorecard/internal/models"
)

// Repository persists course rows. Hole-definition hydration belongs to the
// service layer.
type Repository interface {
	Insert(ctx context.Context, c *models.Course) (int64, error)

	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetByServerID(ctx context.Context, serverID int64) (*models.Course, error)

	// GetAll returns every course ordered by name.
	GetAll(ctx context.Context) ([]models.Course, error)

	// ListByStatus returns courses in the given sync state, ordered by name.
	ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.Course, error)

	// ListByStage returns draft or published courses, ordered by name.
	ListByStage(ctx context.Context, stage models.CourseStage) ([]models.Course, error)

	Update(ctx context.Context, c *models.Course) error

	SetSyncState(ctx context.Context, id int64, status models.SyncStatus, serverID *int64) error

	// Delete physically removes a course row (hole definitions cascade).
	Delete(ctx context.Context, id int64) error
}

// HoleDefinitionRepository persists the static hole descriptions of a
// course, compound-unique by (course id, hole number).
type HoleDefinitionRepository interface {
	// Upsert keys on (hd.CourseID, hd.Number); the stored row's id is
	// written back to hd.ID.
	Upsert(ctx context.Context, hd *models.HoleDefinition) error

	GetByID(ctx context.Context, id int64) (*models.HoleDefinition, error)

	// GetByNumber looks a hole up by its compound identity.
	GetByNumber(ctx context.Context, courseID int64, number int) (*models.HoleDefinition, error)

	// ListByCourse returns the course's hole definitions ordered by number.
	ListByCourse(ctx context.Context, courseID int64) ([]models.HoleDefinition, error)

	// DeleteByCourse removes all hole definitions belonging to the course.
	DeleteByCourse(ctx context.Context, courseID int64) error
}
