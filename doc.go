// Package obscopilot provides the workflow engine at the core of the
// OBSCopilot stream assistant: an event bus fed by external producers
// (streaming-platform client, broadcast-control client, periodic clock),
// a registry of user-defined workflows, and an engine that matches
// incoming events against workflow triggers and executes action chains
// in isolated concurrent runs.
//
// OBSCopilot is designed as a library, not a service. Import it,
// configure a store, inject the capability clients your actions need,
// and register workflows.
//
// # Quick Start
//
//	cp, err := obscopilot.New(
//	    obscopilot.WithStore(memory.New()),
//	)
//	if err != nil { ... }
//
//	eng, err := engine.Build(cp,
//	    engine.WithChatSender(chatClient),
//	    engine.WithBroadcaster(obsClient),
//	)
//	if err != nil { ... }
//
//	if err := eng.Register(ctx, wf); err != nil { ... }
//	if err := cp.Start(ctx); err != nil { ... }
//
// # Architecture
//
// The root package defines Config, Options, and sentinel errors, plus the
// Copilot coordinator. Subsystems live in their own packages (event,
// workflow, trigger, condition, action, engine, store/...) and are wired
// together by engine.Build. This layering exists to break import cycles:
// the root package is imported by every subsystem and so cannot import
// them back.
//
// All entity IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based
// identifiers.
package obscopilot
