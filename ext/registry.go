package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/id"
	"github.com/justedave0/obscopilot/workflow"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type workflowRegisteredEntry struct {
	name string
	hook WorkflowRegistered
}

type workflowRemovedEntry struct {
	name string
	hook WorkflowRemoved
}

type triggerFiredEntry struct {
	name string
	hook TriggerFired
}

type runStartedEntry struct {
	name string
	hook RunStarted
}

type runSkippedEntry struct {
	name string
	hook RunSkipped
}

type actionCompletedEntry struct {
	name string
	hook ActionCompleted
}

type actionFailedEntry struct {
	name string
	hook ActionFailed
}

type runCompletedEntry struct {
	name string
	hook RunCompleted
}

type runFailedEntry struct {
	name string
	hook RunFailed
}

type eventPublishedEntry struct {
	name string
	hook EventPublished
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	workflowRegistered []workflowRegisteredEntry
	workflowRemoved    []workflowRemovedEntry
	triggerFired       []triggerFiredEntry
	runStarted         []runStartedEntry
	runSkipped         []runSkippedEntry
	actionCompleted    []actionCompletedEntry
	actionFailed       []actionFailedEntry
	runCompleted       []runCompletedEntry
	runFailed          []runFailedEntry
	eventPublished     []eventPublishedEntry
	shutdown           []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(WorkflowRegistered); ok {
		r.workflowRegistered = append(r.workflowRegistered, workflowRegisteredEntry{name, h})
	}
	if h, ok := e.(WorkflowRemoved); ok {
		r.workflowRemoved = append(r.workflowRemoved, workflowRemovedEntry{name, h})
	}
	if h, ok := e.(TriggerFired); ok {
		r.triggerFired = append(r.triggerFired, triggerFiredEntry{name, h})
	}
	if h, ok := e.(RunStarted); ok {
		r.runStarted = append(r.runStarted, runStartedEntry{name, h})
	}
	if h, ok := e.(RunSkipped); ok {
		r.runSkipped = append(r.runSkipped, runSkippedEntry{name, h})
	}
	if h, ok := e.(ActionCompleted); ok {
		r.actionCompleted = append(r.actionCompleted, actionCompletedEntry{name, h})
	}
	if h, ok := e.(ActionFailed); ok {
		r.actionFailed = append(r.actionFailed, actionFailedEntry{name, h})
	}
	if h, ok := e.(RunCompleted); ok {
		r.runCompleted = append(r.runCompleted, runCompletedEntry{name, h})
	}
	if h, ok := e.(RunFailed); ok {
		r.runFailed = append(r.runFailed, runFailedEntry{name, h})
	}
	if h, ok := e.(EventPublished); ok {
		r.eventPublished = append(r.eventPublished, eventPublishedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Workflow event emitters
// ──────────────────────────────────────────────────

// EmitWorkflowRegistered notifies all extensions that implement WorkflowRegistered.
func (r *Registry) EmitWorkflowRegistered(ctx context.Context, wf *workflow.Workflow) {
	for _, e := range r.workflowRegistered {
		if err := e.hook.OnWorkflowRegistered(ctx, wf); err != nil {
			r.logHookError("OnWorkflowRegistered", e.name, err)
		}
	}
}

// EmitWorkflowRemoved notifies all extensions that implement WorkflowRemoved.
func (r *Registry) EmitWorkflowRemoved(ctx context.Context, wfID id.WorkflowID) {
	for _, e := range r.workflowRemoved {
		if err := e.hook.OnWorkflowRemoved(ctx, wfID); err != nil {
			r.logHookError("OnWorkflowRemoved", e.name, err)
		}
	}
}

// EmitTriggerFired notifies all extensions that implement TriggerFired.
func (r *Registry) EmitTriggerFired(ctx context.Context, wf *workflow.Workflow, triggerIndex int, ev event.Event) {
	for _, e := range r.triggerFired {
		if err := e.hook.OnTriggerFired(ctx, wf, triggerIndex, ev); err != nil {
			r.logHookError("OnTriggerFired", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Run event emitters
// ──────────────────────────────────────────────────

// EmitRunStarted notifies all extensions that implement RunStarted.
func (r *Registry) EmitRunStarted(ctx context.Context, run *workflow.Run) {
	for _, e := range r.runStarted {
		if err := e.hook.OnRunStarted(ctx, run); err != nil {
			r.logHookError("OnRunStarted", e.name, err)
		}
	}
}

// EmitRunSkipped notifies all extensions that implement RunSkipped.
func (r *Registry) EmitRunSkipped(ctx context.Context, run *workflow.Run) {
	for _, e := range r.runSkipped {
		if err := e.hook.OnRunSkipped(ctx, run); err != nil {
			r.logHookError("OnRunSkipped", e.name, err)
		}
	}
}

// EmitActionCompleted notifies all extensions that implement ActionCompleted.
func (r *Registry) EmitActionCompleted(ctx context.Context, run *workflow.Run, actionName string, elapsed time.Duration) {
	for _, e := range r.actionCompleted {
		if err := e.hook.OnActionCompleted(ctx, run, actionName, elapsed); err != nil {
			r.logHookError("OnActionCompleted", e.name, err)
		}
	}
}

// EmitActionFailed notifies all extensions that implement ActionFailed.
func (r *Registry) EmitActionFailed(ctx context.Context, run *workflow.Run, actionName string, actionErr error) {
	for _, e := range r.actionFailed {
		if err := e.hook.OnActionFailed(ctx, run, actionName, actionErr); err != nil {
			r.logHookError("OnActionFailed", e.name, err)
		}
	}
}

// EmitRunCompleted notifies all extensions that implement RunCompleted.
func (r *Registry) EmitRunCompleted(ctx context.Context, run *workflow.Run, elapsed time.Duration) {
	for _, e := range r.runCompleted {
		if err := e.hook.OnRunCompleted(ctx, run, elapsed); err != nil {
			r.logHookError("OnRunCompleted", e.name, err)
		}
	}
}

// EmitRunFailed notifies all extensions that implement RunFailed.
func (r *Registry) EmitRunFailed(ctx context.Context, run *workflow.Run, runErr error) {
	for _, e := range r.runFailed {
		if err := e.hook.OnRunFailed(ctx, run, runErr); err != nil {
			r.logHookError("OnRunFailed", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Other event emitters
// ──────────────────────────────────────────────────

// EmitEventPublished notifies all extensions that implement EventPublished.
func (r *Registry) EmitEventPublished(ctx context.Context, ev event.Event) {
	for _, e := range r.eventPublished {
		if err := e.hook.OnEventPublished(ctx, ev); err != nil {
			r.logHookError("OnEventPublished", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
