// Package logging assembles structured slog loggers and formatting helpers used
// across texgallery.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so editor and packager code can
// tag log lines with the asset, operation, and correlation ID in flight. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
