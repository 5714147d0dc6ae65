package trigger_test

import (
	"testing"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/trigger"
	"github.com/justedave0/obscopilot/workflow"
)

func chatEvent(payload map[string]any) event.Event {
	return event.New(event.TwitchChatMessage, payload)
}

func TestChatCommandRequiresName(t *testing.T) {
	if _, err := trigger.New(workflow.TriggerSpec{Kind: "chat_command"}); err == nil {
		t.Error("expected error for missing command_name")
	}
}

func TestChatCommandRejectsBadPattern(t *testing.T) {
	_, err := trigger.New(workflow.TriggerSpec{
		Kind:   "chat_command",
		Config: map[string]any{"command_name": "so", "arg_pattern": "("},
	})
	if err == nil {
		t.Error("expected error for invalid arg_pattern")
	}
}

func TestChatCommandRejectsUnknownPermission(t *testing.T) {
	_, err := trigger.New(workflow.TriggerSpec{
		Kind:   "chat_command",
		Config: map[string]any{"command_name": "so", "required_permission": "wizard"},
	})
	if err == nil {
		t.Error("expected error for unknown permission")
	}
}

func TestChatCommandMatch(t *testing.T) {
	m := mustNew(t, workflow.TriggerSpec{
		Kind:   "chat_command",
		Config: map[string]any{"command_name": "Shoutout"},
	})

	tests := []struct {
		name    string
		payload map[string]any
		want    bool
	}{
		{"exact", map[string]any{"is_command": true, "command": "shoutout"}, true},
		{"case insensitive", map[string]any{"is_command": true, "command": "SHOUTOUT"}, true},
		{"not a command", map[string]any{"is_command": false, "command": "shoutout"}, false},
		{"different command", map[string]any{"is_command": true, "command": "hug"}, false},
		{"missing command field", map[string]any{"is_command": true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := m.Match(chatEvent(tt.payload))
			if err != nil {
				t.Fatalf("match error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("Match() = %v, want %v", ok, tt.want)
			}
		})
	}

	if ok, _ := m.Match(event.New(event.TwitchFollow, nil)); ok {
		t.Error("chat command must ignore non-chat events")
	}
}

func TestChatCommandArgPattern(t *testing.T) {
	m := mustNew(t, workflow.TriggerSpec{
		Kind: "chat_command",
		Config: map[string]any{
			"command_name": "so",
			"arg_pattern":  `^@?(?P<target>\w+)$`,
		},
	})

	ok, _ := m.Match(chatEvent(map[string]any{
		"is_command": true, "command": "so", "command_args": "@viewer1",
	}))
	if !ok {
		t.Fatal("expected args to match pattern")
	}

	ok, _ = m.Match(chatEvent(map[string]any{
		"is_command": true, "command": "so", "command_args": "not a name",
	}))
	if ok {
		t.Error("expected pattern mismatch")
	}

	// No args at all fails when a pattern is configured.
	ok, _ = m.Match(chatEvent(map[string]any{"is_command": true, "command": "so"}))
	if ok {
		t.Error("expected missing args to fail pattern")
	}
}

func TestChatCommandExtractVars(t *testing.T) {
	m := mustNew(t, workflow.TriggerSpec{
		Kind: "chat_command",
		Config: map[string]any{
			"command_name": "so",
			"arg_pattern":  `^@?(?P<target>\w+)(\s+(?P<reason>.+))?$`,
		},
	})

	extractor, ok := m.(trigger.VarExtractor)
	if !ok {
		t.Fatal("chat command matcher must implement VarExtractor")
	}

	vars := extractor.ExtractVars(chatEvent(map[string]any{
		"is_command": true, "command": "so", "command_args": "@viewer1 great streams",
	}))

	if vars["command"] != "so" {
		t.Errorf("command = %v", vars["command"])
	}
	if vars["args"] != "@viewer1 great streams" {
		t.Errorf("args = %v", vars["args"])
	}
	if vars["target"] != "viewer1" {
		t.Errorf("target = %v", vars["target"])
	}
	if vars["reason"] != "great streams" {
		t.Errorf("reason = %v", vars["reason"])
	}
}

func TestChatCommandPermissions(t *testing.T) {
	tests := []struct {
		required string
		payload  map[string]any
		want     bool
	}{
		{"broadcaster", map[string]any{"is_broadcaster": true}, true},
		{"broadcaster", map[string]any{"is_mod": true}, false},
		{"mod", map[string]any{"is_mod": true}, true},
		{"mod", map[string]any{"is_broadcaster": true}, true},
		{"mod", map[string]any{"is_vip": true}, false},
		{"vip", map[string]any{"is_vip": true}, true},
		{"vip", map[string]any{"is_mod": true}, true},
		{"vip", map[string]any{"is_sub": true}, false},
		{"sub", map[string]any{"is_sub": true}, true},
		{"sub", map[string]any{"is_broadcaster": true}, true},
		{"sub", map[string]any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.required, func(t *testing.T) {
			m := mustNew(t, workflow.TriggerSpec{
				Kind:   "chat_command",
				Config: map[string]any{"command_name": "so", "required_permission": tt.required},
			})

			payload := map[string]any{"is_command": true, "command": "so"}
			for k, v := range tt.payload {
				payload[k] = v
			}

			ok, _ := m.Match(chatEvent(payload))
			if ok != tt.want {
				t.Errorf("required=%s payload=%v: Match() = %v, want %v", tt.required, tt.payload, ok, tt.want)
			}
		})
	}
}
