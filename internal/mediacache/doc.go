// Package mediacache persists fetched original media bytes in a local SQLite
// database so repeated sessions against a slow or remote media root do not
// refetch every texture.
//
// The cache only ever holds declared originals keyed by media location; it
// never stores edits, which stay in memory for the lifetime of a session.
package mediacache
