// Package engine wires all OBSCopilot subsystems together. It creates the
// event bus, clock, action registry, extension registry, and middleware
// chain, and provides the Register/Unregister/Fire operations that manage
// live workflows.
//
// This package exists to break the import cycle: the root obscopilot
// package defines Config and sentinel errors (imported by workflow, event,
// etc.) and so cannot import those packages back. The engine package sits
// above all subsystem packages and below the application layer.
//
// Typical wiring:
//
//	cp, err := obscopilot.New(obscopilot.WithStore(memory.New()))
//	if err != nil { ... }
//	eng, err := engine.Build(cp,
//	    engine.WithChatSender(twitchClient),
//	    engine.WithBroadcaster(obsClient),
//	)
//	if err != nil { ... }
//	if err := cp.Start(ctx); err != nil { ... }
//	defer cp.Stop(ctx)
//
//	err = eng.Register(ctx, wf)
package engine
