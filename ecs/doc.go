// Package ecs provides ECS adapters for mapmorph's transition events.
//
// The primary adapter is [NewDonburiSink], which forwards orchestrator
// lifecycle events (started, completed, cancelled, degraded) into a
// [Donburi] world as typed events. Subscribe to [TransitionEventType] in
// your ECS systems to receive them.
//
// Usage:
//
//	opts.Sink = ecs.NewDonburiSink(world)
//	orch := mapmorph.NewOrchestrator(opts)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
