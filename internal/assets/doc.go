// Package assets holds the catalog of known media assets and the state
// machine that governs how each asset's content evolves during a session.
//
// An Asset moves between Pristine, HasOriginal, Modified, and Replaced. The
// Machine is the only writer of modification state: it keeps IsModified and
// IsNew mutually exclusive, retains and releases Content handles through a
// Tracker, and notifies an injected Observer after every commit. The Registry
// owns the ordered asset list, identity lookups, the selection flags, and
// effective-content resolution with fallback fetching.
package assets
