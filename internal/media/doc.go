// Package media fetches the declared raw bytes of catalog assets.
//
// The media root is either a local directory or an http(s) base URL; in both
// cases an asset's bytes live at "<root>/<type>/<filename>". Fetch failures
// are reported with the services.ErrFetch marker so callers can isolate them
// per asset. An optional SQLite cache (internal/mediacache) sits in front of
// either fetcher.
package media
