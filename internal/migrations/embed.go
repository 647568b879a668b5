// Package migrations embeds the goose SQL migrations that version the local
// store schema. Migrations are append-only and additive so an upgrade never
// destroys locally stored unsynced data.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
