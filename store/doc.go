// Package store defines the aggregate persistence interface. The
// workflow package owns the contract (workflow.Store); backends live in
// subpackages: memory (tests and development), sqlite (embedded,
// persistent), and redis (shared external storage).
package store
