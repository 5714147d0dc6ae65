// Package ext defines the extension system for OBSCopilot.
//
// Extensions are notified of lifecycle events and can react to them —
// recording metrics, updating overlays, writing audit logs, etc.
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnRunCompleted(ctx context.Context, run *workflow.Run, elapsed time.Duration) error {
//	    log.Printf("run %s completed in %s", run.ID, elapsed)
//	    return nil
//	}
//
// # Workflow Lifecycle Hooks
//
//   - [WorkflowRegistered] — a workflow was registered with the engine
//   - [WorkflowRemoved] — a workflow was unregistered or deleted
//   - [TriggerFired] — an event matched a workflow trigger
//
// # Run Lifecycle Hooks
//
//   - [RunStarted] — a workflow run began executing
//   - [RunSkipped] — a run ended because its conditions evaluated false
//   - [ActionCompleted] — an action finished successfully
//   - [ActionFailed] — an action failed with no retries remaining
//   - [RunCompleted] — a run finished with every action succeeded
//   - [RunFailed] — a run failed or was aborted
//
// # Other Hooks
//
//   - [EventPublished] — the engine observed an event on the bus
//   - [Shutdown] — the copilot is shutting down gracefully
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface.
package ext
