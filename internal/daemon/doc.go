// Package daemon runs the long-lived "serve" process: one studio session
// behind the HTTP API.
//
// It wires configuration, the studio, and the gin router into a single
// lifecycle with flock-based locking so two servers never edit the same
// output directory. Run blocks until the context is cancelled or the server
// fails, then shuts the listener down gracefully.
//
// Keep orchestration logic here: request handling lives in internal/api and
// session state in internal/studio.
package daemon
