// Package insurance is an in-memory view of the companies stored in a
// flatdb database.
//
// Model loads all records once and keeps them in sync with its own
// mutations. It tells registered observers (e.g. a UI) when the set of
// companies or the current selection changes, and when an operation
// fails. Watch keeps the model fresh when another process rewrites
// the database file.
package insurance
