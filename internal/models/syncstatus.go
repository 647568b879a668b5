package models

import (
	"fmt"

	"github.com/fairwaylabs/scorecard/internal/common"
)

// SyncStatus is the sync lifecycle state carried by every syncable record.
//
// The four states are mutually exclusive:
//
//	pending  — created locally, never sent to the server
//	synced   — local copy matches the last known server copy
//	modified — was synced, then changed locally; the server copy is stale
//	deleted  — marked for server-side deletion; soft-deleted locally until
//	           the deletion round-trips
//
// A record's ServerID is non-nil if and only if it has ever reached synced.
type SyncStatus string

const (
	StatusPending  SyncStatus = "pending"
	StatusSynced   SyncStatus = "synced"
	StatusModified SyncStatus = "modified"
	StatusDeleted  SyncStatus = "deleted"
)

// Valid reports whether s is one of the four known states.
func (s SyncStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSynced, StatusModified, StatusDeleted:
		return true
	}
	return false
}

// Transition validates the move from s to next and returns next on success.
// Illegal moves (e.g. deleted → modified) fail with common.ErrIllegalTransition.
//
// Legal moves:
//
//	pending  → pending  (local edit before first sync)
//	pending  → synced   (first create round-trips)
//	synced   → modified (local edit)
//	synced   → synced   (server pull overwrite)
//	synced   → deleted  (local delete of a synced record)
//	modified → synced   (update round-trips)
//	modified → modified (further local edits)
//	modified → deleted  (delete before the update round-trips)
//	deleted  → deleted  (idempotent re-delete)
func (s SyncStatus) Transition(next SyncStatus) (SyncStatus, error) {
	if !s.Valid() || !next.Valid() {
		return s, fmt.Errorf("%w: %q -> %q", common.ErrIllegalTransition, s, next)
	}

	ok := false
	switch s {
	case StatusPending:
		ok = next == StatusPending || next == StatusSynced
	case StatusSynced:
		ok = next == StatusModified || next == StatusSynced || next == StatusDeleted
	case StatusModified:
		ok = next == StatusSynced || next == StatusModified || next == StatusDeleted
	case StatusDeleted:
		ok = next == StatusDeleted
	}

	if !ok {
		return s, fmt.Errorf("%w: %q -> %q", common.ErrIllegalTransition, s, next)
	}
	return next, nil
}
