package workflow

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/id"
)

// placeholderRe matches {name} template placeholders. Names may be
// dotted paths into the event payload.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_.]*)\}`)

// ActionResult records the outcome of one action attempt within a run.
type ActionResult struct {
	Index    int           `json:"index"`
	Kind     string        `json:"kind"`
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Context is the mutable state scoped to exactly one run: the triggering
// event, a variable map actions use to pass values forward, and the
// accumulated action results.
//
// A Context is owned by its run for its entire lifetime and is never
// shared across runs. Condition and action evaluation within a run is
// strictly sequential, so no locking is needed.
type Context struct {
	RunID      id.RunID
	WorkflowID id.WorkflowID
	Event      event.Event

	vars    map[string]any
	results []ActionResult
}

// NewContext creates the execution context for one run. Trigger matchers
// may have pre-populated seed variables (e.g. extracted chat-command
// arguments); pass them as seed, which is retained.
func NewContext(runID id.RunID, workflowID id.WorkflowID, ev event.Event, seed map[string]any) *Context {
	if seed == nil {
		seed = make(map[string]any)
	}

	return &Context{
		RunID:      runID,
		WorkflowID: workflowID,
		Event:      ev,
		vars:       seed,
	}
}

// Var returns the named run variable.
func (c *Context) Var(name string) (any, bool) {
	v, ok := c.vars[name]

	return v, ok
}

// SetVar sets a run variable for later actions to reference.
func (c *Context) SetVar(name string, value any) {
	c.vars[name] = value
}

// Vars returns a copy of the variable map.
func (c *Context) Vars() map[string]any {
	cp := make(map[string]any, len(c.vars))
	for k, v := range c.vars {
		cp[k] = v
	}

	return cp
}

// RecordResult appends one action result to the run's history.
func (c *Context) RecordResult(res ActionResult) {
	c.results = append(c.results, res)
}

// Results returns a copy of the accumulated action results.
func (c *Context) Results() []ActionResult {
	return append([]ActionResult(nil), c.results...)
}

// Render substitutes {name} placeholders in template. Run variables are
// consulted first, then the event payload (dotted paths descend into
// nested maps). Unresolved placeholders are left intact so a literal
// brace sequence degrades gracefully instead of erroring a run.
func (c *Context) Render(template string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]

		if v, ok := c.vars[name]; ok {
			return stringify(v)
		}
		if v, ok := Lookup(c.Event.Payload, name); ok {
			return stringify(v)
		}

		return m
	})
}

// Lookup walks a dotted path through nested string-keyed maps. It is
// shared by template rendering, trigger filters, and condition guards.
func Lookup(m map[string]any, path string) (any, bool) {
	if m == nil {
		return nil, false
	}

	var current any = m
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
