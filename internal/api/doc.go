// Package api serves the browser-facing HTTP API over a studio session.
//
// Routes are registered on a gin engine with CORS for the configured
// origins. Every request gets a correlation id (X-Request-ID, generated when
// absent) that flows into the request context and structured logs.
//
// # Error mapping
//
// Handlers translate services markers into HTTP status codes: validation
// failures are 400, unknown assets, groups, and identity mismatches are 404,
// fetch, decode, and encode failures are 422, and everything else is 500.
// Error bodies use the ErrorEnvelope shape with the marker kind as the code.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript consumers. Archives are built
// into memory before the response starts, so a failed build still returns a
// proper error status instead of a truncated download.
package api
