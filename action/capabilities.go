package action

import (
	"context"
	"time"
)

// ChatSender is the injected chat capability. Implemented by the
// streaming-platform client; the empty channel means the broadcaster's
// own channel.
type ChatSender interface {
	SendChatMessage(ctx context.Context, channel, message string) error
	TimeoutUser(ctx context.Context, channel, username string, duration time.Duration, reason string) error
	BanUser(ctx context.Context, channel, username, reason string) error
}

// Broadcaster is the injected broadcast-control capability, implemented
// by the OBS client.
type Broadcaster interface {
	SwitchScene(ctx context.Context, scene string) error
	SetSourceVisibility(ctx context.Context, scene, source string, visible bool) error
	StartStreaming(ctx context.Context) error
	StopStreaming(ctx context.Context) error
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) error
}

// GenerateRequest parameterizes one text-generation call.
type GenerateRequest struct {
	Prompt        string
	SystemMessage string
	Model         string
	Temperature   float64
	MaxTokens     int
}

// Generator is the injected text-generation capability.
type Generator interface {
	GenerateText(ctx context.Context, req GenerateRequest) (string, error)
}
