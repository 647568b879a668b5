// Package holes is the local-store access layer for per-round hole results.
//
// The true identity of a hole is the compound key (round id, hole number),
// not the local auto-id: Upsert keys on the pair, which is what makes
// re-entering a hole's data during live play idempotent.
package holes

import (
	"context"

	"github.com/fairwaylabs/scorecard/internal/models"
)

// Repository persists hole results.
type Repository interface {
	// Upsert inserts the hole or, when a row for (h.RoundID, h.Number)
	// already exists, replaces its fields. The stored row's id is written
	// back to h.ID.
	//
	// Callers racing on the same hole must run Upsert inside one
	// dbx.WithTx scope; the repository itself does not serialize.
	Upsert(ctx context.Context, h *models.Hole) error

	GetByRoundAndNumber(ctx context.Context, roundID int64, number int) (*models.Hole, error)

	// ListByRound returns the round's holes ordered by number.
	ListByRound(ctx context.Context, roundID int64) ([]models.Hole, error)

	// SumScores returns the sum of the score fields for the round.
	SumScores(ctx context.Context, roundID int64) (int, error)

	// DeleteByRound removes all holes belonging to the round.
	DeleteByRound(ctx context.Context, roundID int64) error
}
