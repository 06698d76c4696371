// Package preflight provides readiness checks for the filesystem paths and
// media endpoints texgallery depends on.
//
// These checks run in two contexts:
//   - "texgallery serve" calls RunAll before binding the API and refuses to
//     start when a required check fails.
//   - The CLI "texgallery status" command renders every result, including
//     the optional media cache summary.
//
// Checks for disabled features are skipped.
package preflight
