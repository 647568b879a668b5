// Package logging is the structured-logging seam of the scorecard client.
//
// Components never log through a global: each receives a Logger and derives
// a child with its identifying attributes, so every line carries its origin.
// The conventions used across the repo:
//
//	services attach  "service", <name>    (rounds, clubs, courses)
//	the processor attaches "component", "syncer"
//	sync traffic logs "entity", "op", and the queue item id
//
// The CLI binary wires a text slog handler on stderr; tests pass io.Discard.
package logging

import "context"

// Logger is the context-aware logger the rest of the repo depends on.
// Variadic args are alternating key-value pairs:
//
//	log.Warn(ctx, "queue item failed, rescheduled", "item", id, "attempts", n)
type Logger interface {
	// Debug logs fine-grained diagnostic detail.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs normal operational events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but recoverable conditions, e.g. a failed
	// immediate flush that falls back to the queue.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures that need operator attention.
	Error(ctx context.Context, msg string, args ...any)

	// With derives a child logger carrying the given key-value pairs on
	// every line.
	With(args ...any) Logger
}
