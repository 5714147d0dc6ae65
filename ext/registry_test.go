package ext_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/ext"
	"github.com/justedave0/obscopilot/id"
	"github.com/justedave0/obscopilot/workflow"
)

// ──────────────────────────────────────────────────
// Test extensions
// ──────────────────────────────────────────────────

// allHooksExt implements every lifecycle hook for testing.
type allHooksExt struct {
	calls []string
}

func (e *allHooksExt) Name() string { return "all-hooks" }

func (e *allHooksExt) OnWorkflowRegistered(_ context.Context, _ *workflow.Workflow) error {
	e.calls = append(e.calls, "OnWorkflowRegistered")
	return nil
}

func (e *allHooksExt) OnWorkflowRemoved(_ context.Context, _ id.WorkflowID) error {
	e.calls = append(e.calls, "OnWorkflowRemoved")
	return nil
}

func (e *allHooksExt) OnTriggerFired(_ context.Context, _ *workflow.Workflow, _ int, _ event.Event) error {
	e.calls = append(e.calls, "OnTriggerFired")
	return nil
}

func (e *allHooksExt) OnRunStarted(_ context.Context, _ *workflow.Run) error {
	e.calls = append(e.calls, "OnRunStarted")
	return nil
}

func (e *allHooksExt) OnRunSkipped(_ context.Context, _ *workflow.Run) error {
	e.calls = append(e.calls, "OnRunSkipped")
	return nil
}

func (e *allHooksExt) OnActionCompleted(_ context.Context, _ *workflow.Run, _ string, _ time.Duration) error {
	e.calls = append(e.calls, "OnActionCompleted")
	return nil
}

func (e *allHooksExt) OnActionFailed(_ context.Context, _ *workflow.Run, _ string, _ error) error {
	e.calls = append(e.calls, "OnActionFailed")
	return nil
}

func (e *allHooksExt) OnRunCompleted(_ context.Context, _ *workflow.Run, _ time.Duration) error {
	e.calls = append(e.calls, "OnRunCompleted")
	return nil
}

func (e *allHooksExt) OnRunFailed(_ context.Context, _ *workflow.Run, _ error) error {
	e.calls = append(e.calls, "OnRunFailed")
	return nil
}

func (e *allHooksExt) OnEventPublished(_ context.Context, _ event.Event) error {
	e.calls = append(e.calls, "OnEventPublished")
	return nil
}

func (e *allHooksExt) OnShutdown(_ context.Context) error {
	e.calls = append(e.calls, "OnShutdown")
	return nil
}

// runOnlyExt only implements run-related hooks.
type runOnlyExt struct {
	calls []string
}

func (e *runOnlyExt) Name() string { return "run-only" }

func (e *runOnlyExt) OnRunStarted(_ context.Context, _ *workflow.Run) error {
	e.calls = append(e.calls, "OnRunStarted")
	return nil
}

func (e *runOnlyExt) OnRunCompleted(_ context.Context, _ *workflow.Run, _ time.Duration) error {
	e.calls = append(e.calls, "OnRunCompleted")
	return nil
}

// failingExt returns errors from hooks.
type failingExt struct{}

func (e *failingExt) Name() string { return "failing" }

func (e *failingExt) OnRunStarted(_ context.Context, _ *workflow.Run) error {
	return errors.New("boom")
}

func (e *failingExt) OnShutdown(_ context.Context) error {
	return errors.New("shutdown boom")
}

// ──────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────

func TestRegistry_RegisterDiscoversInterfaces(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}
	r.Register(all)

	if got := len(r.Extensions()); got != 1 {
		t.Fatalf("expected 1 extension, got %d", got)
	}
	if got := r.Extensions()[0].Name(); got != "all-hooks" {
		t.Fatalf("expected name 'all-hooks', got %q", got)
	}
}

func TestRegistry_EmitFiresOnlyImplementors(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}
	ro := &runOnlyExt{}
	r.Register(all)
	r.Register(ro)

	ctx := context.Background()
	run := &workflow.Run{WorkflowName: "test-wf"}

	// Both implement OnRunStarted → both called.
	r.EmitRunStarted(ctx, run)
	if len(all.calls) != 1 || all.calls[0] != "OnRunStarted" {
		t.Fatalf("all: expected [OnRunStarted], got %v", all.calls)
	}
	if len(ro.calls) != 1 || ro.calls[0] != "OnRunStarted" {
		t.Fatalf("ro: expected [OnRunStarted], got %v", ro.calls)
	}

	// Only all implements OnRunSkipped → ro not called.
	r.EmitRunSkipped(ctx, run)
	if len(all.calls) != 2 || all.calls[1] != "OnRunSkipped" {
		t.Fatalf("all: expected OnRunSkipped as 2nd, got %v", all.calls)
	}
	if len(ro.calls) != 1 {
		t.Fatalf("ro: should still have 1 call, got %v", ro.calls)
	}
}

func TestRegistry_AllRunHooksFire(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}
	r.Register(all)

	ctx := context.Background()
	run := &workflow.Run{WorkflowName: "test-wf"}

	r.EmitRunStarted(ctx, run)
	r.EmitRunSkipped(ctx, run)
	r.EmitActionCompleted(ctx, run, "send-chat", time.Second)
	r.EmitActionFailed(ctx, run, "webhook", errors.New("fail"))
	r.EmitRunCompleted(ctx, run, 2*time.Second)
	r.EmitRunFailed(ctx, run, errors.New("run fail"))

	expected := []string{
		"OnRunStarted", "OnRunSkipped", "OnActionCompleted",
		"OnActionFailed", "OnRunCompleted", "OnRunFailed",
	}
	if len(all.calls) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(all.calls), all.calls)
	}
	for i, want := range expected {
		if all.calls[i] != want {
			t.Errorf("call[%d] = %q, want %q", i, all.calls[i], want)
		}
	}
}

func TestRegistry_AllWorkflowHooksFire(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}
	r.Register(all)

	ctx := context.Background()
	wf := workflow.New("test-wf")

	r.EmitWorkflowRegistered(ctx, wf)
	r.EmitTriggerFired(ctx, wf, 0, event.New(event.TwitchRaid, nil))
	r.EmitWorkflowRemoved(ctx, wf.ID)

	expected := []string{"OnWorkflowRegistered", "OnTriggerFired", "OnWorkflowRemoved"}
	if len(all.calls) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(all.calls), all.calls)
	}
	for i, want := range expected {
		if all.calls[i] != want {
			t.Errorf("call[%d] = %q, want %q", i, all.calls[i], want)
		}
	}
}

func TestRegistry_EventAndShutdownHooksFire(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}
	r.Register(all)

	ctx := context.Background()
	r.EmitEventPublished(ctx, event.New(event.TwitchFollow, nil))
	r.EmitShutdown(ctx)

	if len(all.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d: %v", len(all.calls), all.calls)
	}
	if all.calls[0] != "OnEventPublished" {
		t.Errorf("call[0] = %q, want OnEventPublished", all.calls[0])
	}
	if all.calls[1] != "OnShutdown" {
		t.Errorf("call[1] = %q, want OnShutdown", all.calls[1])
	}
}

func TestRegistry_HookErrorsLoggedNotPropagated(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	failing := &failingExt{}
	all := &allHooksExt{}

	// Register failing first, then all-hooks. Both should be called.
	r.Register(failing)
	r.Register(all)

	ctx := context.Background()
	run := &workflow.Run{WorkflowName: "test-wf"}

	// No panic, no error propagation. allHooksExt should still fire.
	r.EmitRunStarted(ctx, run)

	if len(all.calls) != 1 || all.calls[0] != "OnRunStarted" {
		t.Fatalf("all: expected [OnRunStarted] despite failing ext, got %v", all.calls)
	}
}

func TestRegistry_EmptyRegistryNoOp(_ *testing.T) {
	r := ext.NewRegistry(slog.Default())
	ctx := context.Background()

	// None of these should panic or error.
	r.EmitWorkflowRegistered(ctx, workflow.New("x"))
	r.EmitWorkflowRemoved(ctx, id.NewWorkflowID())
	r.EmitTriggerFired(ctx, workflow.New("x"), 0, event.New(event.TwitchFollow, nil))
	r.EmitRunStarted(ctx, &workflow.Run{})
	r.EmitRunSkipped(ctx, &workflow.Run{})
	r.EmitActionCompleted(ctx, &workflow.Run{}, "a", time.Second)
	r.EmitActionFailed(ctx, &workflow.Run{}, "a", errors.New("x"))
	r.EmitRunCompleted(ctx, &workflow.Run{}, time.Second)
	r.EmitRunFailed(ctx, &workflow.Run{}, errors.New("x"))
	r.EmitEventPublished(ctx, event.New(event.TwitchFollow, nil))
	r.EmitShutdown(ctx)
}

func TestRegistry_MultipleExtensionsOrderPreserved(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	ext1 := &allHooksExt{}
	ext2 := &allHooksExt{}
	r.Register(ext1)
	r.Register(ext2)

	ctx := context.Background()
	r.EmitRunStarted(ctx, &workflow.Run{})

	// Both should be called.
	if len(ext1.calls) != 1 {
		t.Errorf("ext1: expected 1 call, got %d", len(ext1.calls))
	}
	if len(ext2.calls) != 1 {
		t.Errorf("ext2: expected 1 call, got %d", len(ext2.calls))
	}
}
