// Package common defines shared constants and sentinel errors used across
// the scorecard client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Remote gateway errors. ErrNetwork and ErrServer are transient and
	// retried through the sync queue; ErrValidation means the server
	// rejected the payload and retrying without correction is pointless.
	ErrNetwork    = errors.New("network error")
	ErrServer     = errors.New("server error")
	ErrValidation = errors.New("validation error")

	// ErrConflictNotResolved marks a locally modified record whose server
	// counterpart changed concurrently. Policy is "local wins on next
	// push"; the error exists so callers can observe the condition.
	ErrConflictNotResolved = errors.New("conflict not resolved")

	// Sync lifecycle errors.
	ErrIllegalTransition = errors.New("illegal sync status transition")
	ErrOffline           = errors.New("client is offline")
)
