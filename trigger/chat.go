package trigger

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/workflow"
)

// chatCommand matches chat messages that invoke a named command, with
// optional argument-pattern and role gating.
//
// Config:
//
//	command_name        required, compared case-insensitively against
//	                    the payload "command" field
//	arg_pattern         optional regex the "command_args" field must
//	                    match; named groups become run variables
//	required_permission optional, one of broadcaster|mod|vip|sub; higher
//	                    roles satisfy lower requirements
type chatCommand struct {
	command    string
	argPattern *regexp.Regexp
	permission string
}

// Compile-time checks.
var (
	_ Matcher      = (*chatCommand)(nil)
	_ VarExtractor = (*chatCommand)(nil)
)

func newChatCommand(spec workflow.TriggerSpec) (Matcher, error) {
	name, ok := configString(spec.Config, "command_name")
	if !ok || name == "" {
		return nil, fmt.Errorf("trigger chat_command: missing command_name")
	}

	m := &chatCommand{command: strings.ToLower(name)}

	if pattern, ok := configString(spec.Config, "arg_pattern"); ok && pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("trigger chat_command: arg_pattern: %w", err)
		}
		m.argPattern = re
	}

	if perm, ok := configString(spec.Config, "required_permission"); ok && perm != "" {
		switch perm {
		case "broadcaster", "mod", "vip", "sub":
			m.permission = perm
		default:
			return nil, fmt.Errorf("trigger chat_command: unknown required_permission %q", perm)
		}
	}

	return m, nil
}

func (c *chatCommand) Match(ev event.Event) (bool, error) {
	if ev.Kind != event.TwitchChatMessage {
		return false, nil
	}
	if !payloadBool(ev, "is_command") {
		return false, nil
	}

	command, _ := ev.Field("command").(string)
	if command == "" || strings.ToLower(command) != c.command {
		return false, nil
	}

	if c.argPattern != nil {
		args, _ := ev.Field("command_args").(string)
		if args == "" || !c.argPattern.MatchString(args) {
			return false, nil
		}
	}

	if c.permission != "" && !hasPermission(ev, c.permission) {
		return false, nil
	}

	return true, nil
}

// ExtractVars seeds the run with the command, its raw argument string,
// and any named groups captured by arg_pattern.
func (c *chatCommand) ExtractVars(ev event.Event) map[string]any {
	command, _ := ev.Field("command").(string)
	args, _ := ev.Field("command_args").(string)

	vars := map[string]any{
		"command": command,
		"args":    args,
	}

	if c.argPattern != nil && args != "" {
		match := c.argPattern.FindStringSubmatch(args)
		if match != nil {
			for i, name := range c.argPattern.SubexpNames() {
				if i > 0 && name != "" {
					vars[name] = match[i]
				}
			}
		}
	}

	return vars
}

// hasPermission applies the role hierarchy: broadcaster satisfies
// everything, mod satisfies mod and below, vip and sub each require
// that badge or a moderator role.
func hasPermission(ev event.Event, required string) bool {
	broadcaster := payloadBool(ev, "is_broadcaster")
	mod := payloadBool(ev, "is_mod")

	switch required {
	case "broadcaster":
		return broadcaster
	case "mod":
		return mod || broadcaster
	case "vip":
		return payloadBool(ev, "is_vip") || mod || broadcaster
	case "sub":
		return payloadBool(ev, "is_sub") || mod || broadcaster
	default:
		return false
	}
}

func payloadBool(ev event.Event, key string) bool {
	b, _ := ev.Field(key).(bool)

	return b
}
