// Package workflow defines the workflow model (triggers, conditions,
// actions), run records, the per-run execution Context, and the Store
// persistence contract.
package workflow

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/justedave0/obscopilot/id"
)

// TriggerSpec describes one trigger of a workflow: the kind selects the
// matcher variant, Config parameterizes it, and Filters are optional
// payload predicates that must all pass for the trigger to match.
type TriggerSpec struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Kind        string          `json:"kind"`
	Filters     []ConditionSpec `json:"filters,omitempty"`
	Config      map[string]any  `json:"config,omitempty"`
}

// ConditionSpec describes one guard: a comparison of a field (dotted
// path into the event payload, or "vars."-prefixed into run variables)
// against a configured value.
type ConditionSpec struct {
	Kind  string `json:"kind"`
	Field string `json:"field"`
	Value any    `json:"value,omitempty"`
}

// ActionSpec describes one step of a workflow's action chain.
type ActionSpec struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Kind        string         `json:"kind"`
	Config      map[string]any `json:"config,omitempty"`

	// Disabled marks an action to be skipped without failing the
	// chain. The zero value runs, so a definition that never mentions
	// the flag executes as written.
	Disabled bool `json:"-"`

	// Timeout bounds one attempt of this action. Zero means no limit.
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxRetries is the number of additional attempts after a failure.
	MaxRetries int `json:"max_retries,omitempty"`
}

// actionSpecJSON is the stored form of ActionSpec. The encoding keeps
// the "enabled" key so existing definitions round-trip; a definition
// that omits the key decodes as enabled.
type actionSpecJSON struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Kind        string         `json:"kind"`
	Config      map[string]any `json:"config,omitempty"`
	Enabled     *bool          `json:"enabled,omitempty"`
	Timeout     time.Duration  `json:"timeout,omitempty"`
	MaxRetries  int            `json:"max_retries,omitempty"`
}

// MarshalJSON encodes the action with an explicit "enabled" key.
func (a ActionSpec) MarshalJSON() ([]byte, error) {
	enabled := !a.Disabled
	return json.Marshal(actionSpecJSON{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Kind:        a.Kind,
		Config:      a.Config,
		Enabled:     &enabled,
		Timeout:     a.Timeout,
		MaxRetries:  a.MaxRetries,
	})
}

// UnmarshalJSON decodes the action, treating an absent "enabled" key
// as enabled.
func (a *ActionSpec) UnmarshalJSON(data []byte) error {
	var raw actionSpecJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = ActionSpec{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Kind:        raw.Kind,
		Config:      raw.Config,
		Disabled:    raw.Enabled != nil && !*raw.Enabled,
		Timeout:     raw.Timeout,
		MaxRetries:  raw.MaxRetries,
	}
	return nil
}

// Workflow is one user-defined automation: ordered triggers, guard
// conditions, and an ordered action chain. Instances are treated as
// immutable once registered; edits produce a new Version.
type Workflow struct {
	ID          id.WorkflowID `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Version     int           `json:"version"`
	Enabled     bool          `json:"enabled"`

	Triggers   []TriggerSpec   `json:"triggers,omitempty"`
	Conditions []ConditionSpec `json:"conditions,omitempty"`
	Actions    []ActionSpec    `json:"actions,omitempty"`

	// Cooldown is the minimum time between runs of this workflow.
	// Zero means no throttling.
	Cooldown time.Duration `json:"cooldown,omitempty"`

	// RunTimeout is an umbrella limit on one run, overriding the
	// engine default. Zero means use the engine default.
	RunTimeout time.Duration `json:"run_timeout,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an enabled workflow with a fresh ID at version 1.
func New(name string) *Workflow {
	now := time.Now().UTC()

	return &Workflow{
		ID:        id.NewWorkflowID(),
		Name:      name,
		Version:   1,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the workflow's structural integrity. Kind-specific
// config validation happens at registration, where the matcher and
// executor factories can inspect the config maps.
func (w *Workflow) Validate() error {
	if w.ID.IsNil() {
		return fmt.Errorf("workflow: missing id")
	}
	if w.Name == "" {
		return fmt.Errorf("workflow %s: missing name", w.ID)
	}

	for i, t := range w.Triggers {
		if t.Kind == "" {
			return fmt.Errorf("workflow %s: trigger %d: missing kind", w.ID, i)
		}
		for j, f := range t.Filters {
			if f.Kind == "" || f.Field == "" {
				return fmt.Errorf("workflow %s: trigger %d: filter %d: missing kind or field", w.ID, i, j)
			}
		}
	}
	for i, c := range w.Conditions {
		if c.Kind == "" || c.Field == "" {
			return fmt.Errorf("workflow %s: condition %d: missing kind or field", w.ID, i)
		}
	}
	for i, a := range w.Actions {
		if a.Kind == "" {
			return fmt.Errorf("workflow %s: action %d: missing kind", w.ID, i)
		}
	}

	return nil
}

// Clone returns a deep copy. Spec slices and config maps are copied;
// config values are shared (treated as immutable).
func (w *Workflow) Clone() *Workflow {
	cp := *w
	cp.Triggers = make([]TriggerSpec, len(w.Triggers))
	for i, t := range w.Triggers {
		t.Filters = append([]ConditionSpec(nil), t.Filters...)
		t.Config = cloneMap(t.Config)
		cp.Triggers[i] = t
	}
	cp.Conditions = append([]ConditionSpec(nil), w.Conditions...)
	cp.Actions = make([]ActionSpec, len(w.Actions))
	for i, a := range w.Actions {
		a.Config = cloneMap(a.Config)
		cp.Actions[i] = a
	}

	return &cp
}

// ToJSON is the storage encoding of the workflow, including all nested
// trigger/condition/action configuration.
func (w *Workflow) ToJSON() ([]byte, error) {
	return json.MarshalIndent(w, "", "  ")
}

// UnmarshalJSON decodes a workflow, treating an absent top-level
// "enabled" key as enabled so minimally specified definitions stay
// runnable.
func (w *Workflow) UnmarshalJSON(data []byte) error {
	type plain Workflow
	raw := struct {
		*plain
		Enabled *bool `json:"enabled"`
	}{plain: (*plain)(w)}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.Enabled = raw.Enabled == nil || *raw.Enabled
	return nil
}

// FromJSON decodes a workflow previously encoded with ToJSON.
func FromJSON(data []byte) (*Workflow, error) {
	var w Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("workflow: decode: %w", err)
	}

	return &w, nil
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}

	return cp
}
