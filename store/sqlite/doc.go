// Package sqlite implements workflow.Store on an embedded SQLite
// database via the Bun ORM. Workflow definitions are stored as JSON
// blobs alongside indexed columns; run history lives in its own table.
//
// Usage:
//
//	s, err := sqlite.Open("obscopilot.db")
//	if err != nil { ... }
//	cp, err := obscopilot.New(obscopilot.WithStore(s))
//
// Open owns the database handle and closes it on Close. To share a
// handle, build the *bun.DB yourself and pass it to New; the Store then
// never closes it.
package sqlite
