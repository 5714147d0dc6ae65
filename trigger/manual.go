package trigger

import (
	"fmt"
	"strings"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/workflow"
)

// manual matches user-initiated fire events. With an "id" config it
// matches only events carrying the same trigger_id; without one it
// matches any manual fire aimed at its workflow.
type manual struct {
	id string
}

var _ Matcher = (*manual)(nil)

func newManual(spec workflow.TriggerSpec) (Matcher, error) {
	m := &manual{}
	if v, ok := spec.Config["id"]; ok {
		s, isString := v.(string)
		if !isString || s == "" {
			return nil, fmt.Errorf("trigger manual: id must be a non-empty string")
		}
		m.id = s
	}

	return m, nil
}

func (m *manual) Match(ev event.Event) (bool, error) {
	if ev.Kind != event.ManualTrigger {
		return false, nil
	}

	if m.id != "" {
		triggerID, _ := ev.Field("trigger_id").(string)

		return triggerID == m.id, nil
	}

	return true, nil
}

// hotkey matches key-combination events from the desktop shell.
//
// Config:
//
//	key               required, compared case-insensitively
//	modifiers         optional list; every listed modifier must be held
//	strict_modifiers  optional, default false; when true no extra
//	                  modifiers may be held
type hotkey struct {
	key       string
	modifiers []string
	strict    bool
}

var _ Matcher = (*hotkey)(nil)

func newHotkey(spec workflow.TriggerSpec) (Matcher, error) {
	key, ok := configString(spec.Config, "key")
	if !ok || key == "" {
		return nil, fmt.Errorf("trigger hotkey: missing key")
	}

	h := &hotkey{
		key:    strings.ToLower(key),
		strict: configBool(spec.Config, "strict_modifiers"),
	}

	if v, exists := spec.Config["modifiers"]; exists {
		list, isList := v.([]any)
		if !isList {
			return nil, fmt.Errorf("trigger hotkey: modifiers must be a list of strings")
		}
		for _, item := range list {
			s, isString := item.(string)
			if !isString {
				return nil, fmt.Errorf("trigger hotkey: modifiers must be a list of strings")
			}
			h.modifiers = append(h.modifiers, strings.ToLower(s))
		}
	}

	return h, nil
}

func (h *hotkey) Match(ev event.Event) (bool, error) {
	if ev.Kind != event.HotkeyPressed {
		return false, nil
	}

	key, _ := ev.Field("key").(string)
	if strings.ToLower(key) != h.key {
		return false, nil
	}

	held := heldModifiers(ev)
	for _, required := range h.modifiers {
		if _, ok := held[required]; !ok {
			return false, nil
		}
	}

	if h.strict {
		allowed := make(map[string]struct{}, len(h.modifiers))
		for _, m := range h.modifiers {
			allowed[m] = struct{}{}
		}
		for m := range held {
			if _, ok := allowed[m]; !ok {
				return false, nil
			}
		}
	}

	return true, nil
}

func heldModifiers(ev event.Event) map[string]struct{} {
	held := make(map[string]struct{})
	list, _ := ev.Field("modifiers").([]any)
	for _, item := range list {
		if s, ok := item.(string); ok {
			held[strings.ToLower(s)] = struct{}{}
		}
	}

	return held
}
