// Package rounds is the local-store access layer for played rounds.
package rounds

import (
	"context"

	"github.com/fairwaylabs/scorecard/internal/models"
)

// Repository persists rounds. Hole hydration is the service layer's job;
// the repository deals in bare round rows.
type Repository interface {
	Insert(ctx context.Context, rd *models.Round) (int64, error)

	GetByID(ctx context.Context, id int64) (*models.Round, error)
	GetByServerID(ctx context.Context, serverID int64) (*models.Round, error)

	// GetAll returns every round row ordered by creation time descending.
	GetAll(ctx context.Context) ([]models.Round, error)

	// ListByStatus returns rounds in the given sync state. Pending rounds
	// sort by creation time descending, synced ones by date descending.
	ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.Round, error)

	// Update fully replaces the stored fields of the round with id rd.ID.
	Update(ctx context.Context, rd *models.Round) error

	// SetSyncState updates sync bookkeeping in one step.
	SetSyncState(ctx context.Context, id int64, status models.SyncStatus, serverID *int64) error

	// SetTotalScore stores the derived score for a round.
	SetTotalScore(ctx context.Context, id int64, total int) error

	// Delete physically removes a round row (holes cascade).
	Delete(ctx context.Context, id int64) error
}
