// Package syncqueue persists the durable FIFO of not-yet-confirmed
// mutations awaiting a network round-trip.
package syncqueue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fairwaylabs/scorecard/internal/models"
)

// Repository stores queue items. Items are drained in enqueue order and
// survive process restarts.
type Repository interface {
	// Enqueue appends the item.
	Enqueue(ctx context.Context, item *models.QueueItem) error

	// Due returns live (non-dead) items whose backoff window has elapsed
	// at now, in enqueue order.
	Due(ctx context.Context, now time.Time) ([]models.QueueItem, error)

	// All returns every item, dead ones included, in enqueue order.
	All(ctx context.Context) ([]models.QueueItem, error)

	// CountLive returns the number of non-dead items.
	CountLive(ctx context.Context) (int, error)

	// HasLive reports whether a live item targeting (entity, entityID)
	// exists.
	HasLive(ctx context.Context, entity models.EntityKind, entityID int64) (bool, error)

	// Remove deletes an item after successful delivery.
	Remove(ctx context.Context, id string) error

	// RecordFailure increments the attempt counter, stores the error
	// message, and schedules the next attempt.
	RecordFailure(ctx context.Context, id string, lastError string, nextAttempt time.Time) error

	// MarkDead quarantines an item: it stays visible but is never
	// retried automatically.
	MarkDead(ctx context.Context, id string, lastError string) error

	// RefreshPayload replaces the payload of the live item targeting
	// (entity, entityID), if one exists, and reports whether it did.
	// Used when a pending record is edited again before its queued
	// operation has shipped.
	RefreshPayload(ctx context.Context, entity models.EntityKind, entityID int64, payload json.RawMessage) (bool, error)

	// DeleteForEntity removes any queued items targeting (entity,
	// entityID). Used when a never-synced record is deleted locally.
	DeleteForEntity(ctx context.Context, entity models.EntityKind, entityID int64) error
}
