// Package services defines shared utilities consumed by the editor, packager,
// and session layers.
//
// Key responsibilities:
//   - Context helpers that stamp asset IDs, operation names, and correlation
//     identifiers for logging.
//   - Structured failure markers plus the Wrap helper that classify per-asset
//     failures (fetch, decode, encode, validation, identity mismatch) so batch
//     code can isolate them and the API can map them to status codes.
package services
