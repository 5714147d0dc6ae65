package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	obscopilot "github.com/justedave0/obscopilot"
	"github.com/justedave0/obscopilot/id"
	"github.com/justedave0/obscopilot/workflow"
)

func testWorkflow(name string) *workflow.Workflow {
	wf := workflow.New(name)
	wf.Triggers = []workflow.TriggerSpec{
		{Kind: "twitch_raid"},
		{Kind: "manual", Config: map[string]any{"id": "backup"}},
	}
	wf.Conditions = []workflow.ConditionSpec{
		{Kind: "greater_or_equal", Field: "viewers", Value: float64(10)},
	}
	wf.Actions = []workflow.ActionSpec{
		{Kind: "twitch_send_chat_message", Name: "thank"},
		{Kind: "obs_switch_scene", Name: "switch"},
	}
	return wf
}

func testRun(wf *workflow.Workflow) *workflow.Run {
	return workflow.NewRun(wf, 0, id.NewEventID(), "twitch.raid")
}

// ──────────────────────────────────────────────────
// Workflows
// ──────────────────────────────────────────────────

func TestSaveGetWorkflow(t *testing.T) {
	ctx := context.Background()
	s := New()

	wf := testWorkflow("shoutout-on-raid")
	if err := s.SaveWorkflow(ctx, wf); err != nil {
		t.Fatalf("SaveWorkflow: %v", err)
	}

	got, err := s.GetWorkflow(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflow: %v", err)
	}
	if got.Name != wf.Name {
		t.Errorf("name = %q, want %q", got.Name, wf.Name)
	}
	if len(got.Triggers) != 2 || got.Triggers[0].Kind != "twitch_raid" || got.Triggers[1].Kind != "manual" {
		t.Errorf("trigger order not preserved: %+v", got.Triggers)
	}
	if len(got.Actions) != 2 || got.Actions[0].Name != "thank" || got.Actions[1].Name != "switch" {
		t.Errorf("action order not preserved: %+v", got.Actions)
	}
	if len(got.Conditions) != 1 || got.Conditions[0].Field != "viewers" {
		t.Errorf("conditions not preserved: %+v", got.Conditions)
	}
}

func TestGetWorkflowNotFound(t *testing.T) {
	s := New()

	_, err := s.GetWorkflow(context.Background(), id.NewWorkflowID())
	if !errors.Is(err, obscopilot.ErrWorkflowNotFound) {
		t.Fatalf("err = %v, want ErrWorkflowNotFound", err)
	}
}

func TestSaveWorkflowReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()

	wf := testWorkflow("before")
	if err := s.SaveWorkflow(ctx, wf); err != nil {
		t.Fatalf("SaveWorkflow: %v", err)
	}

	wf.Name = "after"
	wf.Version = 2
	if err := s.SaveWorkflow(ctx, wf); err != nil {
		t.Fatalf("SaveWorkflow (update): %v", err)
	}

	got, err := s.GetWorkflow(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflow: %v", err)
	}
	if got.Name != "after" || got.Version != 2 {
		t.Errorf("got name=%q version=%d, want after/2", got.Name, got.Version)
	}

	all, err := s.ListWorkflows(ctx)
	if err != nil {
		t.Fatalf("ListWorkflows: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(workflows) = %d, want 1", len(all))
	}
}

func TestGetWorkflowReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	wf := testWorkflow("isolated")
	if err := s.SaveWorkflow(ctx, wf); err != nil {
		t.Fatalf("SaveWorkflow: %v", err)
	}

	first, err := s.GetWorkflow(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflow: %v", err)
	}
	first.Name = "mutated"
	first.Actions[0].Name = "mutated"

	second, err := s.GetWorkflow(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflow: %v", err)
	}
	if second.Name != "isolated" || second.Actions[0].Name != "thank" {
		t.Errorf("stored workflow mutated through returned copy: %+v", second)
	}
}

func TestListWorkflowsOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()

	older := testWorkflow("older")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := testWorkflow("newer")

	if err := s.SaveWorkflow(ctx, newer); err != nil {
		t.Fatalf("SaveWorkflow: %v", err)
	}
	if err := s.SaveWorkflow(ctx, older); err != nil {
		t.Fatalf("SaveWorkflow: %v", err)
	}

	all, err := s.ListWorkflows(ctx)
	if err != nil {
		t.Fatalf("ListWorkflows: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(workflows) = %d, want 2", len(all))
	}
	if all[0].Name != "older" || all[1].Name != "newer" {
		t.Errorf("order = [%s, %s], want [older, newer]", all[0].Name, all[1].Name)
	}
}

func TestDeleteWorkflow(t *testing.T) {
	ctx := context.Background()
	s := New()

	wf := testWorkflow("doomed")
	if err := s.SaveWorkflow(ctx, wf); err != nil {
		t.Fatalf("SaveWorkflow: %v", err)
	}

	if err := s.DeleteWorkflow(ctx, wf.ID); err != nil {
		t.Fatalf("DeleteWorkflow: %v", err)
	}
	if _, err := s.GetWorkflow(ctx, wf.ID); !errors.Is(err, obscopilot.ErrWorkflowNotFound) {
		t.Errorf("get after delete: err = %v, want ErrWorkflowNotFound", err)
	}
	if err := s.DeleteWorkflow(ctx, wf.ID); !errors.Is(err, obscopilot.ErrWorkflowNotFound) {
		t.Errorf("second delete: err = %v, want ErrWorkflowNotFound", err)
	}
}

func TestWorkflowJSONRoundTrip(t *testing.T) {
	wf := testWorkflow("round-trip")
	wf.Cooldown = 30 * time.Second

	data, err := wf.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := workflow.FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if got.ID != wf.ID || got.Name != wf.Name || got.Cooldown != wf.Cooldown {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.Triggers) != len(wf.Triggers) || got.Triggers[1].Config["id"] != "backup" {
		t.Errorf("trigger config lost: %+v", got.Triggers)
	}
	if got.Conditions[0].Value != wf.Conditions[0].Value {
		t.Errorf("condition value = %v, want %v", got.Conditions[0].Value, wf.Conditions[0].Value)
	}
}

// ──────────────────────────────────────────────────
// Runs
// ──────────────────────────────────────────────────

func TestRunCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	wf := testWorkflow("run-owner")
	run := testRun(wf)

	if err := s.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != workflow.RunStatusRunning {
		t.Errorf("status = %q, want running", got.Status)
	}
	if got.FailedActionIndex != -1 {
		t.Errorf("FailedActionIndex = %d, want -1", got.FailedActionIndex)
	}

	run.FailedActionIndex = 1
	run.Error = "chat send failed"
	run.Finish(workflow.RunStatusFailed)
	if err := s.UpdateRun(ctx, run); err != nil {
		t.Fatalf("UpdateRun: %v", err)
	}

	got, err = s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun after update: %v", err)
	}
	if got.Status != workflow.RunStatusFailed || got.FailedActionIndex != 1 || got.Error != "chat send failed" {
		t.Errorf("update not persisted: %+v", got)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt not persisted")
	}
}

func TestUpdateRunNotFound(t *testing.T) {
	s := New()

	run := testRun(testWorkflow("ghost"))
	if err := s.UpdateRun(context.Background(), run); !errors.Is(err, obscopilot.ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
}

func TestGetRunReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	run := testRun(testWorkflow("isolated"))
	run.Finish(workflow.RunStatusSucceeded)
	if err := s.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	first, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	first.Status = workflow.RunStatusFailed
	*first.CompletedAt = time.Time{}

	second, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if second.Status != workflow.RunStatusSucceeded {
		t.Errorf("stored run mutated through returned copy: %+v", second)
	}
	if second.CompletedAt == nil || second.CompletedAt.IsZero() {
		t.Error("CompletedAt shared with returned copy")
	}
}

func TestListRunsFiltersAndOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()

	wfA := testWorkflow("alpha")
	wfB := testWorkflow("beta")

	base := time.Now().UTC().Add(-time.Minute)

	mk := func(wf *workflow.Workflow, status workflow.RunStatus, offset time.Duration) *workflow.Run {
		run := testRun(wf)
		run.StartedAt = base.Add(offset)
		run.Status = status
		if err := s.CreateRun(ctx, run); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
		return run
	}

	mk(wfA, workflow.RunStatusSucceeded, 0)
	second := mk(wfA, workflow.RunStatusFailed, 10*time.Second)
	third := mk(wfB, workflow.RunStatusSucceeded, 20*time.Second)

	all, err := s.ListRuns(ctx, workflow.ListRunOpts{})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(runs) = %d, want 3", len(all))
	}
	if all[0].ID != third.ID {
		t.Errorf("runs not newest first: first = %s, want %s", all[0].ID, third.ID)
	}

	byWorkflow, err := s.ListRuns(ctx, workflow.ListRunOpts{WorkflowID: wfA.ID})
	if err != nil {
		t.Fatalf("ListRuns by workflow: %v", err)
	}
	if len(byWorkflow) != 2 {
		t.Errorf("len(runs for alpha) = %d, want 2", len(byWorkflow))
	}

	byStatus, err := s.ListRuns(ctx, workflow.ListRunOpts{Status: workflow.RunStatusFailed})
	if err != nil {
		t.Fatalf("ListRuns by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != second.ID {
		t.Errorf("failed-run filter = %+v, want just %s", byStatus, second.ID)
	}

	paged, err := s.ListRuns(ctx, workflow.ListRunOpts{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("ListRuns paged: %v", err)
	}
	if len(paged) != 1 || paged[0].ID != second.ID {
		t.Errorf("page = %+v, want just %s", paged, second.ID)
	}

	beyond, err := s.ListRuns(ctx, workflow.ListRunOpts{Offset: 10})
	if err != nil {
		t.Fatalf("ListRuns beyond end: %v", err)
	}
	if len(beyond) != 0 {
		t.Errorf("len(beyond) = %d, want 0", len(beyond))
	}
}

func TestLifecycleNoOps(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Errorf("Migrate: %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
