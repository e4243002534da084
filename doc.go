// Package mapmorph animates the zoom between nested levels of a location map.
//
// A map has three levels: a ring of satellites around a leader, a cluster
// whose groups each carry four mini-satellites, and a hallway of rooms
// behind a doorway. Moving between adjacent levels plays a single
// continuous camera move: the outgoing scene scales, spins and pans about
// an anchor until the incoming scene sits at identity, while selected
// circles morph from their old position to their new one.
//
// # Lifecycle
//
// An [Orchestrator] runs one transition at a time. Call [Orchestrator.Prepare]
// before changing the current level, [Orchestrator.Begin] after, and
// [Orchestrator.Draw] once per frame:
//
//	orch := mapmorph.NewOrchestrator(mapmorph.Options{})
//	orch.UpdateLastLevel(game.CurrentLevel())
//
//	orch.Prepare(mapmorph.Capture(game), mapmorph.Move{
//		FromLevel: mapmorph.LevelRing, ToLevel: mapmorph.LevelCluster, ToIndex: 2,
//	})
//	game.Enter(mapmorph.LevelCluster, 2)
//	orch.Begin(mapmorph.Capture(game))
//
//	// every frame
//	orch.Draw(canvas, mapmorph.Capture(game))
//
// Begin never fails. A missing preparation, a mismatched level pair or an
// unresolvable spec falls back to a cross-fade from the last drawn frame.
//
// # Specs
//
// Each adjacent level pair is described once, in the forward (low to high)
// direction, by a [TransitionSpec]: which anchors line up, how the scene
// rotates and scales, and which circles morph. [Resolve] turns a spec into
// concrete [Params] for either direction; reverse moves replay the forward
// curve backwards so the two are exact mirrors. Spec tables load from YAML,
// TOML or JSON with [LoadSpecTable]; [DefaultSpecTable] is built in.
//
// # Rendering
//
// The engine draws through the small [Surface] interface. [Canvas] is an
// Ebitengine implementation that also captures frames for the cross-fade.
// Static scene content is drawn by a [SceneRenderer]; [NodeRenderer] is the
// default.
//
// # Verification
//
// [VerifyBoundaries] and [VerifySymmetry] check the geometric guarantees of
// resolved params. [Orchestrator.SetDebugMode] runs them on every Begin, and
// the mapmorph command's check subcommand runs them over a whole table.
//
// # ECS integration
//
// Lifecycle events can be forwarded into a [Donburi] world with the adapter
// in mapmorph/ecs.
//
// [Donburi]: https://github.com/yohamta/donburi
package mapmorph
