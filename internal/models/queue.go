package models

import (
	"encoding/json"
	"time"
)

// EntityKind names the entity type a queue item targets.
type EntityKind string

const (
	EntityRound   EntityKind = "round"
	EntityClub    EntityKind = "club"
	EntityCourse  EntityKind = "course"
	EntityHoleDef EntityKind = "hole_definition"
)

// BagEntityID is the EntityID used by whole-bag queue items: the bag syncs
// wholesale, so its queue items target no single club row.
const BagEntityID int64 = 0

// Operation is the kind of mutation a queue item replays against the server.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// QueueItem is one pending sync operation. Items survive restarts and are
// drained in enqueue order. Delivery is at-least-once: an item stays queued
// until it succeeds or is quarantined.
type QueueItem struct {
	// ID is a uuid assigned at enqueue time.
	ID string

	Entity   EntityKind
	Op       Operation
	EntityID int64

	// Payload is an opaque snapshot of the local record at enqueue (or
	// last refresh) time.
	Payload json.RawMessage

	// Attempts counts failed delivery attempts.
	Attempts int

	// LastError holds the message of the most recent failure.
	LastError string

	EnqueuedAt time.Time

	// NextAttemptAt delays retries: the processor skips items whose
	// backoff window has not elapsed.
	NextAttemptAt time.Time

	// Dead marks a quarantined item: the server rejected the payload or
	// the attempt budget ran out. Dead items are never retried
	// automatically.
	Dead bool
}
