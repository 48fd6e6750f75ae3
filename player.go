package motion

import "math"

// PlayerState is the playback state of a clock.
type PlayerState uint8

const (
	PlayerStopped   PlayerState = iota // not started, or reset by Stop
	PlayerPlaying                      // advancing on Update
	PlayerPaused                       // holding the current frame
	PlayerCompleted                    // reached OutFrame without looping
)

// String returns the state name.
func (s PlayerState) String() string {
	switch s {
	case PlayerStopped:
		return "stopped"
	case PlayerPlaying:
		return "playing"
	case PlayerPaused:
		return "paused"
	case PlayerCompleted:
		return "completed"
	}
	return "unknown"
}

// FrameEpsilon is subtracted from OutFrame when playback completes, so the
// final reported frame is strictly inside the visible range.
const FrameEpsilon = 1e-3

// PlaybackEventType identifies a kind of playback event.
type PlaybackEventType uint8

const (
	PlaybackFrame    PlaybackEventType = iota // a new frame was computed
	PlaybackComplete                          // natural stop at OutFrame
	PlaybackLoop                              // wrapped back to InFrame
	PlaybackStop                              // Stop reset to InFrame
	PlaybackPause                             // Pause
	PlaybackResume                            // Resume
)

// PlaybackEvent carries one playback notification.
type PlaybackEvent struct {
	Type  PlaybackEventType
	Frame float64
}

// PlaybackObserver receives every playback event of a clock. It is the hook
// for host-side bridges such as the donburi adapter in motion/ecs.
type PlaybackObserver interface {
	EmitPlayback(event PlaybackEvent)
}

// clock is the state machine shared by Player and DeltaPlayer.
type clock struct {
	InFrame   float64
	OutFrame  float64
	FrameRate float64 // frames per second; zero never advances

	// OnFrame is called with every computed frame, including the reset to
	// InFrame on Stop.
	OnFrame func(frame float64)
	// OnComplete is called once each time playback reaches OutFrame without
	// looping.
	OnComplete func()
	// OnLoop is called each time looping playback wraps to InFrame.
	OnLoop func()

	observer PlaybackObserver
	state    PlayerState
	loop     bool
	frame    float64
	shown    bool // static clock has emitted its single frame
}

// State returns the current playback state.
func (c *clock) State() PlayerState {
	return c.state
}

// IsPlaying reports whether the clock advances on Update.
func (c *clock) IsPlaying() bool {
	return c.state == PlayerPlaying
}

// IsCompleted reports whether playback reached OutFrame without looping.
func (c *clock) IsCompleted() bool {
	return c.state == PlayerCompleted
}

// Looping reports whether the current playback loops.
func (c *clock) Looping() bool {
	return c.loop
}

// CurrentFrame returns the last computed frame.
func (c *clock) CurrentFrame() float64 {
	return c.frame
}

// SetObserver attaches an observer that receives every playback event.
func (c *clock) SetObserver(o PlaybackObserver) {
	c.observer = o
}

func (c *clock) emit(t PlaybackEventType) {
	if c.observer != nil {
		c.observer.EmitPlayback(PlaybackEvent{Type: t, Frame: c.frame})
	}
}

func (c *clock) setFrame(frame float64) {
	c.frame = frame
	if c.OnFrame != nil {
		c.OnFrame(frame)
	}
	c.emit(PlaybackFrame)
}

// start enters Playing from any state. It reports whether playback restarts
// from InFrame.
func (c *clock) start(loop bool) bool {
	c.loop = loop
	switch c.state {
	case PlayerPlaying:
		return false
	case PlayerPaused:
		c.state = PlayerPlaying
		c.emit(PlaybackResume)
		return false
	}
	c.state = PlayerPlaying
	c.frame = c.InFrame
	c.shown = false
	return true
}

func (c *clock) pause() bool {
	if c.state != PlayerPlaying {
		return false
	}
	c.state = PlayerPaused
	c.emit(PlaybackPause)
	return true
}

func (c *clock) resume() bool {
	if c.state != PlayerPaused {
		return false
	}
	c.state = PlayerPlaying
	c.emit(PlaybackResume)
	return true
}

func (c *clock) stop() {
	c.state = PlayerStopped
	c.shown = false
	c.setFrame(c.InFrame)
	c.emit(PlaybackStop)
}

// showStatic handles a zero frame rate: the clock never advances and shows
// InFrame once per Play.
func (c *clock) showStatic() {
	if c.shown {
		return
	}
	c.shown = true
	c.setFrame(c.InFrame)
}

// advance moves to frame, handling completion and looping. It returns the
// frame actually shown and whether playback wrapped.
func (c *clock) advance(frame float64) (float64, bool) {
	if frame < c.InFrame {
		frame = c.InFrame
	}
	if frame < c.OutFrame {
		c.setFrame(frame)
		return frame, false
	}

	span := c.OutFrame - c.InFrame
	if c.loop && span > 0 {
		frame = c.InFrame + math.Mod(frame-c.InFrame, span)
		c.setFrame(frame)
		if c.OnLoop != nil {
			c.OnLoop()
		}
		c.emit(PlaybackLoop)
		return frame, true
	}

	last := math.Max(c.InFrame, c.OutFrame-FrameEpsilon)
	c.setFrame(last)
	c.state = PlayerCompleted
	if c.OnComplete != nil {
		c.OnComplete()
	}
	c.emit(PlaybackComplete)
	return last, false
}

func (c *clock) clampFrame(frame float64) float64 {
	if frame < c.InFrame {
		return c.InFrame
	}
	if last := c.OutFrame - FrameEpsilon; frame > last {
		return math.Max(c.InFrame, last)
	}
	return frame
}

// Player is a playback clock fed with absolute timestamps in milliseconds:
//
//	frame = InFrame + (now - firstPlayTimestamp) * FrameRate / 1000
//
// The first Update after Play (or Resume, or Seek) anchors the timeline.
type Player struct {
	clock

	anchor    float64
	hasAnchor bool
}

// NewPlayer creates a stopped absolute-time clock.
func NewPlayer(inFrame, outFrame, frameRate float64) *Player {
	p := &Player{}
	p.InFrame, p.OutFrame, p.FrameRate = inFrame, outFrame, frameRate
	p.frame = inFrame
	return p
}

// Play starts playback from InFrame, or continues a paused playback. Either
// way the next Update re-anchors at the current frame.
func (p *Player) Play(loop bool) {
	if p.state != PlayerPlaying {
		p.hasAnchor = false
	}
	p.start(loop)
}

// Pause holds the current frame.
func (p *Player) Pause() {
	p.pause()
}

// Resume continues a paused playback from the held frame.
func (p *Player) Resume() {
	if p.resume() {
		p.hasAnchor = false
	}
}

// Stop resets to InFrame and reports that frame through OnFrame.
func (p *Player) Stop() {
	p.hasAnchor = false
	p.stop()
}

// Seek jumps to frame (clamped to the playable range) without changing the
// state. Playing clocks continue from there on the next Update.
func (p *Player) Seek(frame float64) {
	p.hasAnchor = false
	p.setFrame(p.clampFrame(frame))
}

// Update computes the frame for the timestamp now (milliseconds) and reports
// it through OnFrame. It does nothing unless the clock is playing.
func (p *Player) Update(now float64) {
	if p.state != PlayerPlaying {
		return
	}
	if p.FrameRate == 0 {
		p.showStatic()
		return
	}
	if !p.hasAnchor {
		p.anchor = now - (p.frame-p.InFrame)*1000/p.FrameRate
		p.hasAnchor = true
	}
	frame, wrapped := p.advance(p.InFrame + (now-p.anchor)*p.FrameRate/1000)
	if wrapped {
		p.anchor = now - (frame-p.InFrame)*1000/p.FrameRate
	}
}

// DeltaPlayer is a playback clock fed with per-tick deltas in milliseconds.
// It accumulates elapsed time itself:
//
//	elapsed += delta
//	frame = InFrame + elapsed * FrameRate / 1000
type DeltaPlayer struct {
	clock

	elapsed float64
}

// NewDeltaPlayer creates a stopped delta-time clock.
func NewDeltaPlayer(inFrame, outFrame, frameRate float64) *DeltaPlayer {
	p := &DeltaPlayer{}
	p.InFrame, p.OutFrame, p.FrameRate = inFrame, outFrame, frameRate
	p.frame = inFrame
	return p
}

// Play starts playback from InFrame, or continues a paused playback.
func (p *DeltaPlayer) Play(loop bool) {
	if p.start(loop) {
		p.elapsed = 0
	}
}

// Pause holds the current frame.
func (p *DeltaPlayer) Pause() {
	p.pause()
}

// Resume continues a paused playback from the held frame.
func (p *DeltaPlayer) Resume() {
	p.resume()
}

// Stop resets to InFrame and reports that frame through OnFrame.
func (p *DeltaPlayer) Stop() {
	p.elapsed = 0
	p.stop()
}

// Seek jumps to frame (clamped to the playable range) without changing the
// state.
func (p *DeltaPlayer) Seek(frame float64) {
	frame = p.clampFrame(frame)
	if p.FrameRate != 0 {
		p.elapsed = (frame - p.InFrame) * 1000 / p.FrameRate
	}
	p.setFrame(frame)
}

// Elapsed returns the accumulated playback time in milliseconds.
func (p *DeltaPlayer) Elapsed() float64 {
	return p.elapsed
}

// Update adds delta milliseconds of playback and reports the resulting frame
// through OnFrame. It does nothing unless the clock is playing. Negative
// deltas never move the clock before InFrame.
func (p *DeltaPlayer) Update(delta float64) {
	if p.state != PlayerPlaying {
		return
	}
	if p.FrameRate == 0 {
		p.showStatic()
		return
	}
	p.elapsed = math.Max(0, p.elapsed+delta)
	frame, wrapped := p.advance(p.InFrame + p.elapsed*p.FrameRate/1000)
	if wrapped {
		p.elapsed = (frame - p.InFrame) * 1000 / p.FrameRate
	}
}
