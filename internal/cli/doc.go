// Package cli provides the interactive scorecard command-line client.
//
// It wires configuration, local storage, the backend gateway, and an
// interactive REPL that supports online/offline operation. Typical flow:
// prompt for a username on first run, start a background connectivity
// watcher, and execute user commands against the local store; a background
// loop drains the sync queue whenever connectivity allows.
//
// Key features:
//   - Record rounds hole by hole during live play, entirely offline
//   - Manage the club bag and draft/publish courses
//   - Explicit "sync" command plus automatic queue draining on reconnect
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
