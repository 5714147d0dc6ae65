// Package trigger implements the matcher variants that decide whether an
// incoming event fires a workflow. Matchers are built per registered
// workflow, own any internal state (last-fired timestamps, compiled
// patterns), and are destroyed when the workflow is unregistered.
package trigger

import (
	"fmt"

	"github.com/justedave0/obscopilot/condition"
	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/workflow"
)

// Trigger kinds beyond the plain platform-event kinds.
const (
	KindChatCommand = "chat_command"
	KindInterval    = "interval"
	KindSchedule    = "schedule"
	KindManual      = "manual"
	KindHotkey      = "hotkey"
)

// Matcher decides whether an event fires one trigger. Match must not
// mutate the event. Matchers may carry internal state; the engine
// guarantees calls for one workflow are never interleaved, so no
// internal locking is required.
type Matcher interface {
	Match(ev event.Event) (bool, error)
}

// VarExtractor is implemented by matchers that seed run variables from
// the matching event (e.g. chat-command argument capture). ExtractVars
// is called only after Match returned true for the same event.
type VarExtractor interface {
	ExtractVars(ev event.Event) map[string]any
}

// Factory builds a Matcher from a trigger spec, validating its config.
type Factory func(spec workflow.TriggerSpec) (Matcher, error)

// factories is the closed dispatch table, populated at init.
var factories = map[string]Factory{
	KindChatCommand: newChatCommand,
	KindInterval:    newInterval,
	KindSchedule:    newSchedule,
	KindManual:      newManual,
	KindHotkey:      newHotkey,
}

// platformKinds are the event kinds a trigger may listen for directly,
// with optional payload filters.
var platformKinds = map[event.Kind]struct{}{
	event.TwitchChatMessage:         {},
	event.TwitchFollow:              {},
	event.TwitchSubscription:        {},
	event.TwitchSubscriptionGift:    {},
	event.TwitchBits:                {},
	event.TwitchRaid:                {},
	event.TwitchChannelPointsRedeem: {},
	event.TwitchStreamOnline:        {},
	event.TwitchStreamOffline:       {},
	event.TwitchPollBegin:           {},
	event.TwitchPollEnd:             {},
	event.TwitchPredictionBegin:     {},
	event.TwitchPredictionEnd:       {},
	event.TwitchHypeTrainBegin:      {},
	event.TwitchHypeTrainEnd:        {},
	event.TwitchCharityDonation:     {},
	event.OBSSceneChanged:           {},
	event.OBSSourceVisibilityChanged: {},
	event.OBSStreamingStarted:       {},
	event.OBSStreamingStopped:       {},
	event.OBSRecordingStarted:       {},
	event.OBSRecordingStopped:       {},
}

// New builds a matcher for spec. Kinds are dispatched through the closed
// factory table; any platform event kind is also accepted directly and
// matched by kind plus the spec's filters. Config validation errors are
// returned here so registration can fail before the workflow is armed.
func New(spec workflow.TriggerSpec) (Matcher, error) {
	if f, ok := factories[spec.Kind]; ok {
		return f(spec)
	}

	if _, ok := platformKinds[event.Kind(spec.Kind)]; ok {
		return newPlatformEvent(spec)
	}

	return nil, fmt.Errorf("trigger: unknown kind %q", spec.Kind)
}

// Kinds returns which event kinds the matcher for spec needs delivered.
// Time-based matchers listen for clock ticks rather than their own kind.
func Kinds(spec workflow.TriggerSpec) []event.Kind {
	switch spec.Kind {
	case KindInterval, KindSchedule:
		return []event.Kind{event.ClockTick}
	case KindChatCommand:
		return []event.Kind{event.TwitchChatMessage}
	case KindManual:
		return []event.Kind{event.ManualTrigger}
	case KindHotkey:
		return []event.Kind{event.HotkeyPressed}
	default:
		return []event.Kind{event.Kind(spec.Kind)}
	}
}

// platformEvent matches one event kind, gated by optional payload
// filters that must all pass.
type platformEvent struct {
	kind    event.Kind
	filters []condition.Evaluator
}

func newPlatformEvent(spec workflow.TriggerSpec) (Matcher, error) {
	filters, err := condition.NewAll(spec.Filters)
	if err != nil {
		return nil, fmt.Errorf("trigger %q: %w", spec.Kind, err)
	}

	return &platformEvent{kind: event.Kind(spec.Kind), filters: filters}, nil
}

func (p *platformEvent) Match(ev event.Event) (bool, error) {
	if ev.Kind != p.kind {
		return false, nil
	}

	for _, f := range p.filters {
		if !f.Evaluate(ev.Payload, nil) {
			return false, nil
		}
	}

	return true, nil
}

// ──────────────────────────────────────────────────
// Config helpers
// ──────────────────────────────────────────────────

func configString(config map[string]any, key string) (string, bool) {
	v, ok := config[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)

	return s, ok
}

func configBool(config map[string]any, key string) bool {
	v, ok := config[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)

	return b
}

func configFloat(config map[string]any, key string) (float64, bool) {
	switch n := config[key].(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
