// Package main hosts the texgallery CLI entrypoint and command graph.
//
// Every command builds a studio from the resolved configuration, restores
// the on-disk session document when one exists, and drives the same core the
// browser API uses: listing, edits, group records, archives, and session
// save/restore. The serve command runs the HTTP API for the browser UI.
//
// Keep this package declarative: new behaviour belongs in the internal
// packages first and is surfaced here as flags and commands.
package main
