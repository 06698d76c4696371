// Package archive packages resolved asset content into zip archives.
//
// Two layouts exist. Download-all mirrors the catalog as
// "<type>-assets/<folder>/<filename>"; the mod pack nests files as
// "<product>/<subsystem>/files/assets/<folder>/1/<filename>" under a fixed
// set of top-level directories. Every path segment is sanitized and
// duplicate paths receive a deterministic " (n)" suffix.
//
// Build runs in two phases. Collect resolves each entry one at a time and
// skips entries whose content is unavailable, recording a warning. Compress
// writes the zip and reports progress by bytes. Only a failure writing the
// archive itself aborts a build.
package archive
