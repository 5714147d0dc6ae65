// Package action implements the executor variants for workflow action
// chains. External capabilities (chat client, broadcast control, text
// generation) are injected into the Registry at construction; handlers
// never discover them mid-run.
package action

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/workflow"
)

// Action kinds. A closed set; unknown kinds fail at registration.
const (
	KindSendChatMessage = "twitch_send_chat_message"
	KindTimeoutUser     = "twitch_timeout_user"
	KindBanUser         = "twitch_ban_user"

	KindSwitchScene         = "obs_switch_scene"
	KindSetSourceVisibility = "obs_set_source_visibility"
	KindStartStreaming      = "obs_start_streaming"
	KindStopStreaming       = "obs_stop_streaming"
	KindStartRecording      = "obs_start_recording"
	KindStopRecording       = "obs_stop_recording"

	KindGenerateResponse = "ai_generate_response"

	KindDelay       = "delay"
	KindWebhook     = "webhook"
	KindSetVariable = "set_variable"
)

// Handler executes one action kind against a run's context. A nil
// return means success; an error stops the run's action chain.
type Handler func(ctx context.Context, rc *workflow.Context, spec workflow.ActionSpec) error

// Registry holds the action handlers and their injected capability
// handles. Build one per engine with NewRegistry.
type Registry struct {
	logger *slog.Logger
	chat   ChatSender
	obs    Broadcaster
	ai     Generator
	http   *http.Client
	bus    *event.Bus

	handlers map[string]Handler
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithChatSender injects the chat capability.
func WithChatSender(c ChatSender) Option {
	return func(r *Registry) { r.chat = c }
}

// WithBroadcaster injects the broadcast-control capability.
func WithBroadcaster(b Broadcaster) Option {
	return func(r *Registry) { r.obs = b }
}

// WithGenerator injects the text-generation capability.
func WithGenerator(g Generator) Option {
	return func(r *Registry) { r.ai = g }
}

// WithHTTPClient sets the client used by webhook actions. Defaults to
// http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) { r.http = c }
}

// WithBus lets handlers publish observability events (e.g. generated
// text) back onto the bus. Optional.
func WithBus(b *event.Bus) Option {
	return func(r *Registry) { r.bus = b }
}

// NewRegistry creates an action registry. Capabilities are optional;
// workflows referencing an action whose capability is absent fail at
// registration via Validate.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger: slog.Default(),
		http:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.handlers = map[string]Handler{
		KindSendChatMessage: r.sendChatMessage,
		KindTimeoutUser:     r.timeoutUser,
		KindBanUser:         r.banUser,

		KindSwitchScene:         r.switchScene,
		KindSetSourceVisibility: r.setSourceVisibility,
		KindStartStreaming:      r.startStreaming,
		KindStopStreaming:       r.stopStreaming,
		KindStartRecording:      r.startRecording,
		KindStopRecording:       r.stopRecording,

		KindGenerateResponse: r.generateResponse,

		KindDelay:       r.delay,
		KindWebhook:     r.webhook,
		KindSetVariable: r.setVariable,
	}

	return r
}

// Validate checks an action spec at registration time: the kind must be
// known, required config present, and the needed capability injected.
func (r *Registry) Validate(spec workflow.ActionSpec) error {
	if _, ok := r.handlers[spec.Kind]; !ok {
		return fmt.Errorf("action: unknown kind %q", spec.Kind)
	}

	switch spec.Kind {
	case KindSendChatMessage:
		if r.chat == nil {
			return fmt.Errorf("action %s: no chat client configured", spec.Kind)
		}
		if s, _ := configString(spec.Config, "message"); s == "" {
			return fmt.Errorf("action %s: missing message", spec.Kind)
		}
	case KindTimeoutUser, KindBanUser:
		if r.chat == nil {
			return fmt.Errorf("action %s: no chat client configured", spec.Kind)
		}
		if s, _ := configString(spec.Config, "username"); s == "" {
			return fmt.Errorf("action %s: missing username", spec.Kind)
		}
	case KindSwitchScene:
		if r.obs == nil {
			return fmt.Errorf("action %s: no broadcast client configured", spec.Kind)
		}
		if s, _ := configString(spec.Config, "scene_name"); s == "" {
			return fmt.Errorf("action %s: missing scene_name", spec.Kind)
		}
	case KindSetSourceVisibility:
		if r.obs == nil {
			return fmt.Errorf("action %s: no broadcast client configured", spec.Kind)
		}
		if s, _ := configString(spec.Config, "source_name"); s == "" {
			return fmt.Errorf("action %s: missing source_name", spec.Kind)
		}
	case KindStartStreaming, KindStopStreaming, KindStartRecording, KindStopRecording:
		if r.obs == nil {
			return fmt.Errorf("action %s: no broadcast client configured", spec.Kind)
		}
	case KindGenerateResponse:
		if r.ai == nil {
			return fmt.Errorf("action %s: no generation client configured", spec.Kind)
		}
		if s, _ := configString(spec.Config, "prompt"); s == "" {
			return fmt.Errorf("action %s: missing prompt", spec.Kind)
		}
	case KindWebhook:
		if s, _ := configString(spec.Config, "url"); s == "" {
			return fmt.Errorf("action %s: missing url", spec.Kind)
		}
	case KindSetVariable:
		if s, _ := configString(spec.Config, "name"); s == "" {
			return fmt.Errorf("action %s: missing name", spec.Kind)
		}
	}

	return nil
}

// Execute dispatches one action to its handler.
func (r *Registry) Execute(ctx context.Context, rc *workflow.Context, spec workflow.ActionSpec) error {
	handler, ok := r.handlers[spec.Kind]
	if !ok {
		return fmt.Errorf("action: unknown kind %q", spec.Kind)
	}

	return handler(ctx, rc, spec)
}

// ──────────────────────────────────────────────────
// Config helpers
// ──────────────────────────────────────────────────

func configString(config map[string]any, key string) (string, bool) {
	s, ok := config[key].(string)

	return s, ok
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

func configBoolDefault(config map[string]any, key string, def bool) bool {
	v, ok := config[key]
	if !ok {
		return def
	}
	b, isBool := v.(bool)
	if !isBool {
		return def
	}

	return b
}
