// Package ext defines the extension system for OBSCopilot.
// Extensions are notified of lifecycle events (workflow registered, run
// started, action failed, etc.) and can react to them — logging, metrics,
// overlay updates, etc.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext

import (
	"context"
	"time"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/id"
	"github.com/justedave0/obscopilot/workflow"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Workflow lifecycle hooks
// ──────────────────────────────────────────────────

// WorkflowRegistered is called after a workflow is registered with the engine.
type WorkflowRegistered interface {
	OnWorkflowRegistered(ctx context.Context, wf *workflow.Workflow) error
}

// WorkflowRemoved is called after a workflow is unregistered or deleted.
type WorkflowRemoved interface {
	OnWorkflowRemoved(ctx context.Context, wfID id.WorkflowID) error
}

// TriggerFired is called when an event matches a workflow trigger and a
// run is about to start.
type TriggerFired interface {
	OnTriggerFired(ctx context.Context, wf *workflow.Workflow, triggerIndex int, ev event.Event) error
}

// ──────────────────────────────────────────────────
// Run lifecycle hooks
// ──────────────────────────────────────────────────

// RunStarted is called when a workflow run begins executing.
type RunStarted interface {
	OnRunStarted(ctx context.Context, run *workflow.Run) error
}

// RunSkipped is called when a run's conditions evaluate false and the run
// ends without executing any actions.
type RunSkipped interface {
	OnRunSkipped(ctx context.Context, run *workflow.Run) error
}

// ActionCompleted is called after an action finishes successfully.
type ActionCompleted interface {
	OnActionCompleted(ctx context.Context, run *workflow.Run, actionName string, elapsed time.Duration) error
}

// ActionFailed is called when an action fails terminally (no more retries).
type ActionFailed interface {
	OnActionFailed(ctx context.Context, run *workflow.Run, actionName string, err error) error
}

// RunCompleted is called after a run finishes with every action succeeded.
type RunCompleted interface {
	OnRunCompleted(ctx context.Context, run *workflow.Run, elapsed time.Duration) error
}

// RunFailed is called when a run fails or is aborted.
type RunFailed interface {
	OnRunFailed(ctx context.Context, run *workflow.Run, err error) error
}

// ──────────────────────────────────────────────────
// Other lifecycle hooks
// ──────────────────────────────────────────────────

// EventPublished is called for every event the engine observes on the bus.
type EventPublished interface {
	OnEventPublished(ctx context.Context, ev event.Event) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
