// Package editor applies edit operations to one asset or to a set of assets.
//
// Every operation runs in two steps. Prepare validates parameters and
// computes anything shared across targets; a validation failure aborts the
// whole run before a single commit. Apply then runs once per asset,
// sequentially, and its result is committed through the assets state
// machine. Failures on one asset are recorded in the Report and the batch
// moves on.
//
// CreateNew and GreyPlaceholder compute one Content in Prepare and assign
// that same handle to every target. Content is immutable, so later edits to
// one target produce new handles and never affect the others.
package editor
