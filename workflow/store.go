package workflow

import (
	"context"

	"github.com/justedave0/obscopilot/id"
)

// ListRunOpts controls filtering and pagination for run list queries.
type ListRunOpts struct {
	// Limit is the maximum number of runs to return. Zero means no limit.
	Limit int
	// Offset is the number of runs to skip.
	Offset int
	// Status filters by run status. Empty means all statuses.
	Status RunStatus
	// WorkflowID filters to runs of one workflow. Nil ID means all.
	WorkflowID id.WorkflowID
}

// Store defines the persistence contract for workflows and their run
// history. Implementations must be safe for concurrent use and must
// return copies, never internal references.
type Store interface {
	// Migrate prepares the backing schema. Idempotent.
	Migrate(ctx context.Context) error

	// Ping verifies connectivity to the backing storage.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error

	// SaveWorkflow inserts or replaces a workflow definition by ID,
	// including all nested trigger/condition/action configuration.
	SaveWorkflow(ctx context.Context, wf *Workflow) error

	// GetWorkflow retrieves a workflow by ID.
	GetWorkflow(ctx context.Context, wfID id.WorkflowID) (*Workflow, error)

	// ListWorkflows returns every stored workflow.
	ListWorkflows(ctx context.Context) ([]*Workflow, error)

	// DeleteWorkflow removes a workflow definition.
	DeleteWorkflow(ctx context.Context, wfID id.WorkflowID) error

	// CreateRun persists a new run record.
	CreateRun(ctx context.Context, run *Run) error

	// UpdateRun persists changes to an existing run record.
	UpdateRun(ctx context.Context, run *Run) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, runID id.RunID) (*Run, error)

	// ListRuns returns run records matching the given options, newest
	// first.
	ListRuns(ctx context.Context, opts ListRunOpts) ([]*Run, error)
}
