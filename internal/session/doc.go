// Package session saves and restores the modification state of a registry.
//
// A Document lists only modified or replaced assets with their content
// base64-encoded, so it can be stored client-side and re-applied to a fresh
// registry later. Applying goes through the assets state machine; entries
// that match no live asset are reported as warnings and otherwise ignored.
package session
