package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/trigger"
)

// handleEvent is the bus handler for every subscribed event kind. It
// evaluates the event against each armed workflow in parallel; the
// per-workflow evalMu keeps each workflow's trigger-state updates
// strictly ordered by event arrival.
func (eng *Engine) handleEvent(ctx context.Context, ev event.Event) error {
	eng.extensions.EmitEventPublished(ctx, ev)

	var g errgroup.Group
	for _, e := range eng.snapshot() {
		g.Go(func() error {
			eng.evaluate(ctx, e, ev)
			return nil
		})
	}

	return g.Wait()
}

// evaluate matches one event against one workflow's triggers, in
// declared order, first match wins. On a match it spawns an isolated
// run, subject to the workflow's cooldown.
func (eng *Engine) evaluate(ctx context.Context, e *entry, ev event.Event) {
	if _, listens := e.kinds[ev.Kind]; !listens {
		return
	}

	// Manual fires carrying a workflow_id target only that workflow.
	if ev.Kind == event.ManualTrigger {
		if target, _ := ev.Field("workflow_id").(string); target != "" && target != e.wf.ID.String() {
			return
		}
	}

	e.evalMu.Lock()
	matched := -1
	var seed map[string]any

	if e.wf.Enabled {
		for i, m := range e.matchers {
			ok, err := m.Match(ev)
			if err != nil {
				// Fail-safe: a misbehaving matcher is a non-match.
				eng.logger.Warn("trigger match error",
					slog.String("workflow_id", e.wf.ID.String()),
					slog.Int("trigger_index", i),
					slog.String("error", err.Error()),
				)
				continue
			}
			if ok {
				matched = i
				if ve, extracts := m.(trigger.VarExtractor); extracts {
					seed = ve.ExtractVars(ev)
				}
				break
			}
		}
	}
	e.evalMu.Unlock()

	if matched < 0 {
		return
	}

	if e.limiter != nil && !e.limiter.Allow() {
		eng.logger.Debug("run suppressed by cooldown",
			slog.String("workflow_id", e.wf.ID.String()),
			slog.String("workflow", e.wf.Name),
		)
		return
	}

	eng.mu.Lock()
	if eng.closed {
		eng.mu.Unlock()
		return
	}
	eng.runWG.Add(1)
	eng.mu.Unlock()

	eng.extensions.EmitTriggerFired(ctx, e.wf, matched, ev)

	go func() {
		defer eng.runWG.Done()
		eng.executeRun(e, matched, ev, seed)
	}()
}
