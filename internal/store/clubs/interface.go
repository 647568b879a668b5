// Package clubs persists the bag (the player's clubs) and the static club
// definition catalog.
package clubs

import (
	"context"

	"github.com/fairwaylabs/scorecard/internal/models"
)

// Repository is the local-store access layer for clubs.
type Repository interface {
	Insert(ctx context.Context, c *models.Club) (int64, error)

	GetByID(ctx context.Context, id int64) (*models.Club, error)
	GetByServerID(ctx context.Context, serverID int64) (*models.Club, error)

	// GetAll returns every club row, soft-deleted ones included, ordered
	// by category then name.
	GetAll(ctx context.Context) ([]models.Club, error)

	// ListByStatus returns clubs in the given sync state, ordered by
	// category then name.
	ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.Club, error)

	// Update fully replaces the stored fields of the club with id c.ID.
	Update(ctx context.Context, c *models.Club) error

	// SetSyncState updates sync bookkeeping in one step.
	SetSyncState(ctx context.Context, id int64, status models.SyncStatus, serverID *int64) error

	// Delete physically removes a club row.
	Delete(ctx context.Context, id int64) error

	// DeleteAll empties the bag. Used by the wholesale bag replacement.
	DeleteAll(ctx context.Context) error

	// ListDefinitions returns the seeded club catalog.
	ListDefinitions(ctx context.Context) ([]models.ClubDefinition, error)
}
