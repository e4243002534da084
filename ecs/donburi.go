package ecs

import (
	"github.com/phanxgames/mapmorph"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// TransitionEventType is the Donburi event type for map transition events.
var TransitionEventType = events.NewEventType[mapmorph.TransitionEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// queued on TransitionEventType and delivered by ProcessEvents, so
// subscribers run inside the ECS update rather than inside Draw.
func NewDonburiSink(world donburi.World) mapmorph.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) Emit(event mapmorph.TransitionEvent) {
	TransitionEventType.Publish(s.world, event)
}
