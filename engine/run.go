package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/justedave0/obscopilot/event"
	mw "github.com/justedave0/obscopilot/middleware"
	"github.com/justedave0/obscopilot/workflow"
)

// executeRun is the body of one isolated workflow run: conditions in
// order, then actions in order, halting on the first failure. Each run
// owns its Context exclusively; nothing here is shared with concurrent
// runs of the same or other workflows.
func (eng *Engine) executeRun(e *entry, triggerIndex int, ev event.Event, seed map[string]any) {
	wf := e.wf
	run := workflow.NewRun(wf, triggerIndex, ev.ID, string(ev.Kind))

	// Runs are detached from the intake path; the umbrella timeout is
	// the only deadline, when configured.
	ctx := context.Background()
	timeout := wf.RunTimeout
	if timeout == 0 {
		timeout = eng.config.RunTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := eng.store.CreateRun(ctx, run); err != nil {
		eng.logger.Error("failed to persist run",
			slog.String("run_id", run.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	eng.extensions.EmitRunStarted(ctx, run)
	eng.publishRunEvent(event.WorkflowStarted, run)

	eng.logger.Info("run started",
		slog.String("run_id", run.ID.String()),
		slog.String("workflow", run.WorkflowName),
		slog.String("event_kind", run.EventKind),
		slog.Int("trigger_index", triggerIndex),
	)

	rc := workflow.NewContext(run.ID, wf.ID, ev, seed)

	// Conditions gate the whole chain; a false guard is a normal skip,
	// not an error. Later conditions are never evaluated.
	for i, c := range e.conds {
		if !c.Evaluate(ev.Payload, rc.Vars()) {
			run.Finish(workflow.RunStatusSkipped)
			eng.persistRun(ctx, run)
			eng.extensions.EmitRunSkipped(ctx, run)
			eng.publishRunEvent(event.WorkflowCompleted, run)

			eng.logger.Info("run skipped",
				slog.String("run_id", run.ID.String()),
				slog.String("workflow", run.WorkflowName),
				slog.Int("condition_index", i),
			)
			return
		}
	}

	for i, spec := range wf.Actions {
		if spec.Disabled {
			eng.logger.Debug("action disabled, skipping",
				slog.String("run_id", run.ID.String()),
				slog.Int("index", i),
				slog.String("action_kind", spec.Kind),
			)
			continue
		}

		if err := eng.executeAction(ctx, run, rc, spec, i); err != nil {
			run.FailedActionIndex = i
			run.Error = err.Error()

			status := workflow.RunStatusFailed
			if ctx.Err() != nil {
				status = workflow.RunStatusAborted
			}
			run.Finish(status)
			eng.persistRun(ctx, run)
			eng.extensions.EmitRunFailed(ctx, run, err)
			eng.publishRunEvent(event.WorkflowFailed, run)

			eng.logger.Warn("run failed",
				slog.String("run_id", run.ID.String()),
				slog.String("workflow", run.WorkflowName),
				slog.String("status", string(status)),
				slog.Int("failed_action_index", i),
				slog.String("error", err.Error()),
			)
			return
		}
	}

	run.Finish(workflow.RunStatusSucceeded)
	eng.persistRun(ctx, run)
	eng.extensions.EmitRunCompleted(ctx, run, run.Duration)
	eng.publishRunEvent(event.WorkflowCompleted, run)

	eng.logger.Info("run completed",
		slog.String("run_id", run.ID.String()),
		slog.String("workflow", run.WorkflowName),
		slog.Duration("duration", run.Duration),
	)
}

// executeAction runs one action through the middleware chain, retrying
// failed attempts with backoff up to the spec's MaxRetries. An expired
// umbrella timeout stops retrying immediately.
func (eng *Engine) executeAction(ctx context.Context, run *workflow.Run, rc *workflow.Context, spec workflow.ActionSpec, index int) error {
	attempts := spec.MaxRetries + 1

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		step := &mw.Step{
			RunID:        run.ID,
			WorkflowID:   run.WorkflowID,
			WorkflowName: run.WorkflowName,
			Spec:         spec,
			Index:        index,
			Attempt:      attempt,
		}

		start := time.Now()
		err = eng.chain(ctx, step, func(ctx context.Context) error {
			return eng.actions.Execute(ctx, rc, spec)
		})
		elapsed := time.Since(start)

		if err == nil {
			rc.RecordResult(workflow.ActionResult{
				Index:    index,
				Kind:     spec.Kind,
				OK:       true,
				Duration: elapsed,
			})
			eng.extensions.EmitActionCompleted(ctx, run, actionName(spec), elapsed)
			return nil
		}

		if ctx.Err() != nil {
			break
		}

		if attempt < attempts {
			delay := eng.bo.Delay(attempt)
			eng.logger.Info("action retry scheduled",
				slog.String("run_id", run.ID.String()),
				slog.String("action", actionName(spec)),
				slog.Int("attempt", attempt),
				slog.Int("max_retries", spec.MaxRetries),
				slog.Duration("delay", delay),
			)
			if sleepErr := sleepCtx(ctx, delay); sleepErr != nil {
				break
			}
		}
	}

	rc.RecordResult(workflow.ActionResult{
		Index: index,
		Kind:  spec.Kind,
		OK:    false,
		Error: err.Error(),
	})
	eng.extensions.EmitActionFailed(ctx, run, actionName(spec), err)

	return err
}

// persistRun updates the stored run record, logging (not propagating)
// store failures so outcome events still flow.
func (eng *Engine) persistRun(ctx context.Context, run *workflow.Run) {
	// Use a fresh context so a run aborted by its umbrella timeout can
	// still record its outcome.
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	if err := eng.store.UpdateRun(ctx, run); err != nil {
		eng.logger.Error("failed to update run",
			slog.String("run_id", run.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// publishRunEvent emits a run lifecycle event back onto the bus for
// external observers.
func (eng *Engine) publishRunEvent(kind event.Kind, run *workflow.Run) {
	payload := map[string]any{
		"run_id":        run.ID.String(),
		"workflow_id":   run.WorkflowID.String(),
		"workflow_name": run.WorkflowName,
		"status":        string(run.Status),
	}
	if run.FailedActionIndex >= 0 {
		payload["failed_action_index"] = run.FailedActionIndex
	}
	if run.Error != "" {
		payload["error"] = run.Error
	}

	if err := eng.bus.Publish(event.New(kind, payload)); err != nil {
		// Bus already closed during shutdown; the run record still holds
		// the outcome.
		eng.logger.Debug("run event not published",
			slog.String("run_id", run.ID.String()),
			slog.String("kind", string(kind)),
		)
	}
}
