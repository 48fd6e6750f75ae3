// Package motion plays back keyframe animations exported from After Effects
// with Bodymovin.
//
// motion parses a Bodymovin JSON document into a tree of layers, evaluates
// every animated property for a frame, and produces a tree of drawable
// [Node] values: transform, alpha, visibility, clip, blend mode and vector
// paint. The engine never touches a canvas; drawing is the job of a
// [Renderer]. Two renderers ship with the module: motion/raster draws into an
// [image.RGBA] with no GPU, and motion/ebitenrender draws with [Ebitengine].
//
// # Quick start
//
//	anim, err := motion.Load(data)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, w := range anim.Warnings() {
//		log.Println(w)
//	}
//
//	player := anim.NewDeltaPlayer()
//	player.Play(true)
//
//	// every tick:
//	player.Update(dtMillis)
//	anim.Render(renderer)
//
// # Time
//
// Frames are float64 and fractional frames interpolate. Each layer is visible
// from its in frame to its out frame inclusive. Precomp layers shift their
// children's timeline by their own start time, so a child with in 0 and out
// 10 inside a precomp starting at 24 is visible from 24 to 34.
//
// [Player] is driven by absolute timestamps, [DeltaPlayer] by per-tick
// deltas. Both fire OnFrame for every computed frame, OnComplete once when a
// non-looping playback reaches the out frame, and OnLoop on every wrap.
//
// # Degraded documents
//
// Only malformed JSON fails [Load]. Malformed keyframe lists, paths whose
// vertex counts differ between keyframes, unknown mask modes and missing
// assets degrade to static values or empty content, and each problem is kept
// in [Animation.Warnings]. With [SetDebugMode] on they are also printed to
// stderr together with per-update timings.
//
// # Concurrency
//
// An Animation is single-threaded. [Animation.Clone] builds an independent
// instance from the same parsed templates, which is how cmd/motionexport
// renders frames in parallel. Playback events can be forwarded into a
// donburi world with the adapter in motion/ecs.
//
// [Ebitengine]: https://ebitengine.org
package motion
