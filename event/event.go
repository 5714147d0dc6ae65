package event

import (
	"time"

	"github.com/justedave0/obscopilot/id"
)

// Kind is the enumerated tag identifying what an event describes.
// Producers attach payload fields specific to each kind; consumers
// subscribe per kind.
type Kind string

// Streaming-platform events.
const (
	TwitchConnected           Kind = "twitch_connected"
	TwitchDisconnected        Kind = "twitch_disconnected"
	TwitchChatMessage         Kind = "twitch_chat_message"
	TwitchFollow              Kind = "twitch_follow"
	TwitchSubscription        Kind = "twitch_subscription"
	TwitchSubscriptionGift    Kind = "twitch_subscription_gift"
	TwitchSubscriptionEnd     Kind = "twitch_subscription_end"
	TwitchBits                Kind = "twitch_bits"
	TwitchRaid                Kind = "twitch_raid"
	TwitchChannelPointsRedeem Kind = "twitch_channel_points_redeem"
	TwitchStreamOnline        Kind = "twitch_stream_online"
	TwitchStreamOffline       Kind = "twitch_stream_offline"
	TwitchPollBegin           Kind = "twitch_poll_begin"
	TwitchPollProgress        Kind = "twitch_poll_progress"
	TwitchPollEnd             Kind = "twitch_poll_end"
	TwitchPredictionBegin     Kind = "twitch_prediction_begin"
	TwitchPredictionProgress  Kind = "twitch_prediction_progress"
	TwitchPredictionEnd       Kind = "twitch_prediction_end"
	TwitchHypeTrainBegin      Kind = "twitch_hype_train_begin"
	TwitchHypeTrainProgress   Kind = "twitch_hype_train_progress"
	TwitchHypeTrainEnd        Kind = "twitch_hype_train_end"
	TwitchCharityDonation     Kind = "twitch_charity_donation"
)

// Broadcast-control (OBS) events.
const (
	OBSConnected               Kind = "obs_connected"
	OBSDisconnected            Kind = "obs_disconnected"
	OBSSceneChanged            Kind = "obs_scene_changed"
	OBSSourceVisibilityChanged Kind = "obs_source_visibility_changed"
	OBSStreamingStarted        Kind = "obs_streaming_started"
	OBSStreamingStopped        Kind = "obs_streaming_stopped"
	OBSRecordingStarted        Kind = "obs_recording_started"
	OBSRecordingStopped        Kind = "obs_recording_stopped"
)

// Engine-internal events.
const (
	// ClockTick is published by the internal Clock and drives interval
	// and schedule triggers.
	ClockTick Kind = "clock_tick"

	// Workflow run lifecycle, published by the engine for observers.
	WorkflowLoaded    Kind = "workflow_loaded"
	WorkflowStarted   Kind = "workflow_started"
	WorkflowCompleted Kind = "workflow_completed"
	WorkflowFailed    Kind = "workflow_failed"

	// AIResponseGenerated is published after a text-generation action
	// produces output.
	AIResponseGenerated Kind = "ai_response_generated"

	// ShutdownRequested asks every subsystem to wind down.
	ShutdownRequested Kind = "shutdown_requested"
)

// User-initiated events.
const (
	// ManualTrigger is published when the user fires a workflow by hand.
	// Payload carries workflow_id and optionally trigger_id.
	ManualTrigger Kind = "manual_trigger"

	// HotkeyPressed is published by the desktop shell when a bound key
	// combination fires. Payload carries key and modifiers.
	HotkeyPressed Kind = "hotkey_pressed"
)

// Event is one immutable occurrence published to the bus. Payload maps
// are treated as read-only after construction; handlers must not mutate
// them.
type Event struct {
	ID        id.EventID     `json:"id"`
	Kind      Kind           `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// New creates an event of the given kind, stamped with a fresh ID and
// the current UTC time. The payload map is retained as-is, not copied.
func New(kind Kind, payload map[string]any) Event {
	return Event{
		ID:        id.NewEventID(),
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// At is like New but stamps the given timestamp. Used by the Clock and
// by tests that need deterministic tick times.
func At(kind Kind, payload map[string]any, ts time.Time) Event {
	return Event{
		ID:        id.NewEventID(),
		Kind:      kind,
		Payload:   payload,
		Timestamp: ts,
	}
}

// Field returns the payload value under key, or nil if absent.
func (e Event) Field(key string) any {
	if e.Payload == nil {
		return nil
	}

	return e.Payload[key]
}
