// Package cli provides the interactive NewsMarks command-line client.
//
// It wires configuration, local storage, API services, and an interactive
// REPL that supports online/offline operation. Highlights are always written
// locally first; a background connectivity watcher flips the client between
// online and offline mode, and "sync" reconciles the local set with the
// server when a connection is available.
//
// Key features:
//   - Register / Login / Logout against the remote service
//   - Open an article (plain text or HTML) to work on
//   - Add / annotate / recolor / delete highlights
//   - Render the article with highlights in the terminal
//   - Export / import per-article snapshots
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
