// Package ecs provides ECS adapters for motion.
package ecs

import (
	"github.com/phanxgames/motion"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// PlaybackEvent is a motion playback event tagged with the name of the
// animation that produced it, so one world can host several players.
type PlaybackEvent struct {
	Source string
	motion.PlaybackEvent
}

// PlaybackEventType is the Donburi event type for motion playback events.
var PlaybackEventType = events.NewEventType[PlaybackEvent]()

type donburiObserver struct {
	world  donburi.World
	source string
}

// NewDonburiObserver creates a PlaybackObserver backed by a Donburi world.
// Events are published to PlaybackEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiObserver(world donburi.World, source string) motion.PlaybackObserver {
	return &donburiObserver{world: world, source: source}
}

func (o *donburiObserver) EmitPlayback(event motion.PlaybackEvent) {
	PlaybackEventType.Publish(o.world, PlaybackEvent{Source: o.source, PlaybackEvent: event})
}
