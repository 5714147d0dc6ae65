// Package condition implements the guard evaluators workflows use to
// filter events and gate runs. Evaluators are stateless and pure:
// construction validates the config, evaluation only reads.
package condition

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/justedave0/obscopilot/workflow"
)

// Condition kinds. A closed set; unknown kinds fail at construction.
const (
	KindEquals      = "equals"
	KindNotEquals   = "not_equals"
	KindContains    = "contains"
	KindNotContains = "not_contains"
	KindStartsWith  = "starts_with"
	KindEndsWith    = "ends_with"
	KindGreaterThan = "greater_than"
	KindGreaterOrEq = "greater_or_equal"
	KindLessThan    = "less_than"
	KindLessOrEq    = "less_or_equal"
	KindRegexMatch  = "regex_match"
	KindAnyOf       = "any_of"
)

// varsPrefix routes a field path to run variables instead of the event
// payload.
const varsPrefix = "vars."

// Evaluator evaluates one guard against an event payload and the run's
// variables. Implementations are immutable after construction.
type Evaluator interface {
	Evaluate(payload, vars map[string]any) bool
}

// New builds an Evaluator from spec, validating kind and config.
// A condition list is AND-ed by callers; disjunction is expressed with
// the any_of kind.
func New(spec workflow.ConditionSpec) (Evaluator, error) {
	if spec.Field == "" {
		return nil, fmt.Errorf("condition %q: missing field", spec.Kind)
	}

	switch spec.Kind {
	case KindEquals, KindNotEquals, KindContains, KindNotContains,
		KindStartsWith, KindEndsWith,
		KindGreaterThan, KindGreaterOrEq, KindLessThan, KindLessOrEq:
		return &comparison{kind: spec.Kind, field: spec.Field, value: spec.Value}, nil

	case KindRegexMatch:
		pattern, ok := spec.Value.(string)
		if !ok {
			return nil, fmt.Errorf("condition regex_match on %q: value must be a pattern string", spec.Field)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("condition regex_match on %q: %w", spec.Field, err)
		}

		return &regexMatch{field: spec.Field, re: re}, nil

	case KindAnyOf:
		options, ok := spec.Value.([]any)
		if !ok || len(options) == 0 {
			return nil, fmt.Errorf("condition any_of on %q: value must be a non-empty list", spec.Field)
		}

		return &anyOf{field: spec.Field, options: options}, nil

	default:
		return nil, fmt.Errorf("condition: unknown kind %q", spec.Kind)
	}
}

// NewAll builds evaluators for every spec, failing on the first invalid
// one with its index reported.
func NewAll(specs []workflow.ConditionSpec) ([]Evaluator, error) {
	evals := make([]Evaluator, 0, len(specs))
	for i, spec := range specs {
		ev, err := New(spec)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		evals = append(evals, ev)
	}

	return evals, nil
}

// resolve extracts the field value, routing "vars."-prefixed paths to
// the run variables.
func resolve(field string, payload, vars map[string]any) (any, bool) {
	if name, ok := strings.CutPrefix(field, varsPrefix); ok {
		return workflow.Lookup(vars, name)
	}

	return workflow.Lookup(payload, field)
}

// ──────────────────────────────────────────────────
// Variants
// ──────────────────────────────────────────────────

type comparison struct {
	kind  string
	field string
	value any
}

func (c *comparison) Evaluate(payload, vars map[string]any) bool {
	got, ok := resolve(c.field, payload, vars)
	if !ok {
		// Absent field fails every positive test; not_equals and
		// not_contains hold vacuously, matching the fail-safe rule
		// that a missing field never asserts a positive property.
		return c.kind == KindNotEquals || c.kind == KindNotContains
	}

	switch c.kind {
	case KindEquals:
		return looseEqual(got, c.value)
	case KindNotEquals:
		return !looseEqual(got, c.value)
	case KindContains:
		return containsValue(got, c.value)
	case KindNotContains:
		return !containsValue(got, c.value)
	case KindStartsWith:
		s, ok1 := got.(string)
		p, ok2 := c.value.(string)

		return ok1 && ok2 && strings.HasPrefix(s, p)
	case KindEndsWith:
		s, ok1 := got.(string)
		p, ok2 := c.value.(string)

		return ok1 && ok2 && strings.HasSuffix(s, p)
	case KindGreaterThan, KindGreaterOrEq, KindLessThan, KindLessOrEq:
		a, ok1 := toFloat(got)
		b, ok2 := toFloat(c.value)
		if !ok1 || !ok2 {
			return false
		}

		switch c.kind {
		case KindGreaterThan:
			return a > b
		case KindGreaterOrEq:
			return a >= b
		case KindLessThan:
			return a < b
		default:
			return a <= b
		}
	default:
		return false
	}
}

type regexMatch struct {
	field string
	re    *regexp.Regexp
}

func (r *regexMatch) Evaluate(payload, vars map[string]any) bool {
	got, ok := resolve(r.field, payload, vars)
	if !ok {
		return false
	}

	return r.re.MatchString(fmt.Sprintf("%v", got))
}

type anyOf struct {
	field   string
	options []any
}

func (a *anyOf) Evaluate(payload, vars map[string]any) bool {
	got, ok := resolve(a.field, payload, vars)
	if !ok {
		return false
	}

	for _, opt := range a.options {
		if looseEqual(got, opt) {
			return true
		}
	}

	return false
}

// ──────────────────────────────────────────────────
// Value coercion
// ──────────────────────────────────────────────────

// looseEqual compares with numeric coercion, so a payload int 5 equals
// a JSON-decoded config value 5.0.
func looseEqual(a, b any) bool {
	if a == b {
		return true
	}

	fa, ok1 := toFloat(a)
	fb, ok2 := toFloat(b)

	return ok1 && ok2 && fa == fb
}

func containsValue(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		n, ok := needle.(string)

		return ok && strings.Contains(h, n)
	case []any:
		for _, item := range h {
			if looseEqual(item, needle) {
				return true
			}
		}

		return false
	case map[string]any:
		key, ok := needle.(string)
		if !ok {
			return false
		}
		_, present := h[key]

		return present
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
