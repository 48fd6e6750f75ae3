// Package ecs provides ECS adapters for motion's playback events.
//
// The primary adapter is [NewDonburiObserver], which bridges playback events
// (frame, complete, loop, stop, pause, resume) into a [Donburi] world as
// typed events. Subscribe to [PlaybackEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	player := anim.NewDeltaPlayer()
//	player.SetObserver(ecs.NewDonburiObserver(world, "intro"))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
