package ecs

import (
	"testing"
	"time"

	"github.com/phanxgames/mapmorph"

	"github.com/google/uuid"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	if NewDonburiSink(world) == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_Emit(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []mapmorph.TransitionEvent
	TransitionEventType.Subscribe(world, func(w donburi.World, e mapmorph.TransitionEvent) {
		received = append(received, e)
	})

	id := uuid.New()
	sink.Emit(mapmorph.TransitionEvent{ID: id, Kind: mapmorph.EventStarted, FromLevel: mapmorph.LevelRing, ToLevel: mapmorph.LevelCluster})
	sink.Emit(mapmorph.TransitionEvent{ID: id, Kind: mapmorph.EventCompleted, FromLevel: mapmorph.LevelRing, ToLevel: mapmorph.LevelCluster})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatalf("events delivered before ProcessEvents: %d", len(received))
	}
	TransitionEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0].Kind != mapmorph.EventStarted || received[1].Kind != mapmorph.EventCompleted {
		t.Errorf("kinds = %v, %v", received[0].Kind, received[1].Kind)
	}
	if received[0].ID != id || received[1].ID != id {
		t.Error("event IDs not preserved")
	}
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func TestDonburiSink_OrchestratorLifecycle(t *testing.T) {
	world := donburi.NewWorld()
	clock := &fixedClock{now: time.Unix(100, 0)}
	orch := mapmorph.NewOrchestrator(mapmorph.Options{
		Clock: clock,
		Sink:  NewDonburiSink(world),
	})

	var kinds []mapmorph.EventKind
	TransitionEventType.Subscribe(world, func(w donburi.World, e mapmorph.TransitionEvent) {
		kinds = append(kinds, e.Kind)
	})

	state := mapmorph.GameState{Level: mapmorph.LevelRing}
	state.Locations[mapmorph.LevelRing] = make([]mapmorph.Location, 5)
	state.Locations[mapmorph.LevelCluster] = make([]mapmorph.Location, 5)
	orch.UpdateLastLevel(mapmorph.LevelRing)
	orch.Prepare(state, mapmorph.Move{FromLevel: mapmorph.LevelRing, ToLevel: mapmorph.LevelCluster, ToIndex: 2})
	state.Level = mapmorph.LevelCluster
	if !orch.Begin(state) {
		t.Fatal("Begin returned false")
	}
	orch.Cancel()
	events.ProcessAllEvents(world)

	if len(kinds) != 2 || kinds[0] != mapmorph.EventStarted || kinds[1] != mapmorph.EventCancelled {
		t.Errorf("kinds = %v, want [started cancelled]", kinds)
	}
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	TransitionEventType.Subscribe(world, func(w donburi.World, e mapmorph.TransitionEvent) {
		count1++
	})
	TransitionEventType.Subscribe(world, func(w donburi.World, e mapmorph.TransitionEvent) {
		count2++
	})

	sink.Emit(mapmorph.TransitionEvent{Kind: mapmorph.EventDegraded})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
