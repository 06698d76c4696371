// Package studio owns one editing session: the asset registry and its state
// machine, the edit coordinator, the mod builder, the media fetcher, and the
// archive packager.
//
// Every exported method takes the studio mutex, so edits, exports, and session
// restores run one at a time even when the HTTP server handles requests
// concurrently. Asset state changes and batch progress are pushed to an
// injected Listener; Listener callbacks run while the mutex is held and must
// not call back into the Studio.
package studio
