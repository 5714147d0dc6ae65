package store

import (
	"github.com/justedave0/obscopilot/workflow"
)

// Store is the full persistence contract a backend implements: workflow
// definitions, run history, and lifecycle (Migrate/Ping/Close).
type Store interface {
	workflow.Store
}
