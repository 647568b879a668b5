// Package users persists the single locally-authenticated identity.
package users

import (
	"context"

	"github.com/fairwaylabs/scorecard/internal/models"
)

// Repository stores at most one user row.
type Repository interface {
	// Get returns the stored user, or common.ErrNotFound when none exists.
	Get(ctx context.Context) (*models.User, error)

	// Save replaces the stored user with u and fills in u.ID.
	Save(ctx context.Context, u *models.User) error

	// Clear removes the stored user.
	Clear(ctx context.Context) error
}
