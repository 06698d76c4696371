// Package textutil sanitizes names before they become archive or filesystem
// path segments.
//
// Catalog entries come from hand-edited list files, so folder and filename
// tokens may carry characters that are unsafe inside zip entry names or on
// common filesystems. The helpers here never return an empty segment or a
// segment that could escape its parent directory.
package textutil
