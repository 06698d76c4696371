// Package modbuilder manages per-texture-group customization and plans the
// mod pack archive.
//
// Texture groups are static bundles of files declared in configuration and
// are independent of the asset registry. Each (group, filename) pair holds
// at most one modification record: a colour, a saturation percentage, a
// drawing, a tiled pattern or a grey placeholder. Setting any record
// replaces whatever was there before, so the kinds never compose.
package modbuilder
