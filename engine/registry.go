package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	obscopilot "github.com/justedave0/obscopilot"
	"github.com/justedave0/obscopilot/condition"
	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/id"
	"github.com/justedave0/obscopilot/trigger"
	"github.com/justedave0/obscopilot/workflow"
)

// entry is one armed workflow: the definition plus the live matcher and
// evaluator instances built at registration time. Matcher state (interval
// baselines, schedule anchors) lives here and dies at unregistration.
type entry struct {
	wf       *workflow.Workflow
	matchers []trigger.Matcher
	conds    []condition.Evaluator

	// kinds is the union of event kinds the triggers listen for.
	kinds map[event.Kind]struct{}

	// evalMu serializes trigger evaluation for this workflow so matcher
	// state updates are strictly ordered by event arrival.
	evalMu sync.Mutex

	// limiter throttles run spawning when the workflow has a cooldown.
	limiter *rate.Limiter
}

// buildEntry validates the workflow's kind-specific configuration and
// constructs the live matcher and evaluator instances. Any invalid spec
// aborts with a ConfigError naming the offending component and index.
func (eng *Engine) buildEntry(wf *workflow.Workflow) (*entry, error) {
	e := &entry{
		wf:    wf,
		kinds: make(map[event.Kind]struct{}),
	}

	for i, spec := range wf.Triggers {
		m, err := trigger.New(spec)
		if err != nil {
			return nil, &obscopilot.ConfigError{
				Component: "trigger",
				Kind:      spec.Kind,
				Index:     i,
				Reason:    err.Error(),
			}
		}
		e.matchers = append(e.matchers, m)
		for _, k := range trigger.Kinds(spec) {
			e.kinds[k] = struct{}{}
		}
	}

	for i, spec := range wf.Conditions {
		c, err := condition.New(spec)
		if err != nil {
			return nil, &obscopilot.ConfigError{
				Component: "condition",
				Kind:      spec.Kind,
				Index:     i,
				Reason:    err.Error(),
			}
		}
		e.conds = append(e.conds, c)
	}

	for i, spec := range wf.Actions {
		if err := eng.actions.Validate(spec); err != nil {
			return nil, &obscopilot.ConfigError{
				Component: "action",
				Kind:      spec.Kind,
				Index:     i,
				Reason:    err.Error(),
			}
		}
	}

	if wf.Cooldown > 0 {
		e.limiter = rate.NewLimiter(rate.Every(wf.Cooldown), 1)
	}

	return e, nil
}

// Register validates, persists, and arms a workflow. Registering an ID
// that is already armed replaces its definition; the old matcher state
// is dropped and in-flight runs of the old version complete untouched.
func (eng *Engine) Register(ctx context.Context, wf *workflow.Workflow) error {
	if err := wf.Validate(); err != nil {
		return err
	}

	// Build the entry before persisting so an invalid config never
	// reaches the store.
	e, err := eng.buildEntry(wf.Clone())
	if err != nil {
		return err
	}

	if err := eng.store.SaveWorkflow(ctx, wf); err != nil {
		return err
	}

	if err := eng.insert(wf.ID, e); err != nil {
		return err
	}

	eng.extensions.EmitWorkflowRegistered(ctx, wf)

	eng.logger.Info("workflow registered",
		slog.String("workflow_id", wf.ID.String()),
		slog.String("workflow", wf.Name),
		slog.Int("version", wf.Version),
		slog.Bool("enabled", wf.Enabled),
	)

	return nil
}

// arm builds the entry and inserts it into the live registry, taking
// effect for the next published event.
func (eng *Engine) arm(wf *workflow.Workflow) error {
	e, err := eng.buildEntry(wf.Clone())
	if err != nil {
		return err
	}

	return eng.insert(wf.ID, e)
}

// kindSub is one bus subscription shared by every armed workflow
// listening on that event kind.
type kindSub struct {
	token id.SubscriptionID
	refs  int
}

// insert adds an armed entry to the live registry, subscribing to any
// event kinds not yet covered. Replacing an armed workflow releases the
// kinds only the old version listened on.
func (eng *Engine) insert(wfID id.WorkflowID, e *entry) error {
	eng.mu.Lock()
	defer eng.mu.Unlock()

	if eng.closed {
		return obscopilot.ErrEngineClosed
	}

	for k := range e.kinds {
		if s, subscribed := eng.subs[k]; subscribed {
			s.refs++
			continue
		}
		token, subErr := eng.bus.Subscribe(k, eng.handleEvent)
		if subErr != nil {
			return subErr
		}
		eng.subs[k] = &kindSub{token: token, refs: 1}
	}

	if old, armed := eng.workflows[wfID]; armed {
		eng.releaseKinds(old.kinds)
	}
	eng.workflows[wfID] = e

	return nil
}

// releaseKinds drops one reference per kind, unsubscribing from the bus
// when the last workflow listening on a kind goes away. Callers hold
// eng.mu.
func (eng *Engine) releaseKinds(kinds map[event.Kind]struct{}) {
	for k := range kinds {
		s, ok := eng.subs[k]
		if !ok {
			continue
		}
		s.refs--
		if s.refs > 0 {
			continue
		}
		delete(eng.subs, k)
		eng.bus.Unsubscribe(s.token)
	}
}

// Unregister disarms a workflow. In-flight runs complete, but no new
// runs start. The persisted definition is untouched; use Delete to
// remove it from the store as well.
func (eng *Engine) Unregister(ctx context.Context, wfID id.WorkflowID) error {
	eng.mu.Lock()
	e, ok := eng.workflows[wfID]
	if ok {
		delete(eng.workflows, wfID)
		eng.releaseKinds(e.kinds)
	}
	eng.mu.Unlock()

	if !ok {
		return obscopilot.ErrNotRegistered
	}

	eng.extensions.EmitWorkflowRemoved(ctx, wfID)

	eng.logger.Info("workflow unregistered", slog.String("workflow_id", wfID.String()))

	return nil
}

// Delete disarms a workflow and removes its persisted definition. Run
// history is retained.
func (eng *Engine) Delete(ctx context.Context, wfID id.WorkflowID) error {
	if err := eng.Unregister(ctx, wfID); err != nil && !errors.Is(err, obscopilot.ErrNotRegistered) {
		return err
	}

	return eng.store.DeleteWorkflow(ctx, wfID)
}

// Workflows returns copies of every armed workflow.
func (eng *Engine) Workflows() []*workflow.Workflow {
	eng.mu.RLock()
	defer eng.mu.RUnlock()

	wfs := make([]*workflow.Workflow, 0, len(eng.workflows))
	for _, e := range eng.workflows {
		wfs = append(wfs, e.wf.Clone())
	}

	return wfs
}

// snapshot returns the armed entries as of one moment, so a single
// event's evaluation pass sees a consistent registry.
func (eng *Engine) snapshot() []*entry {
	eng.mu.RLock()
	defer eng.mu.RUnlock()

	entries := make([]*entry, 0, len(eng.workflows))
	for _, e := range eng.workflows {
		entries = append(entries, e)
	}

	return entries
}
