package ebitenrender

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/motion"
)

// RunConfig configures Run.
type RunConfig struct {
	Title  string
	Width  int // window width; 0 uses the document width
	Height int // window height; 0 uses the document height

	// Background is drawn behind the animation. Nil draws black.
	Background color.Color

	// Loop restarts playback at the out frame.
	Loop bool

	// ShowFPS overlays frame rate, tick rate and the current frame.
	ShowFPS bool

	// Images resolves image layers.
	Images func(ref *motion.ImageRef) *ebiten.Image
}

// game adapts an Animation and its DeltaPlayer to ebiten.Game.
type game struct {
	anim     *motion.Animation
	player   *motion.DeltaPlayer
	renderer *Renderer
	cfg      RunConfig
	w, h     int
}

// NewGame returns an ebiten.Game that plays anim, for hosts that run their
// own loop. The returned player is already playing.
func NewGame(anim *motion.Animation, cfg RunConfig) (ebiten.Game, *motion.DeltaPlayer) {
	g := newGame(anim, cfg)
	return g, g.player
}

func newGame(anim *motion.Animation, cfg RunConfig) *game {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = max(int(anim.Width), 1)
	}
	if h <= 0 {
		h = max(int(anim.Height), 1)
	}
	r := New()
	r.Images = cfg.Images
	if anim.Width > 0 && anim.Height > 0 {
		r.Scale = min(float64(w)/anim.Width, float64(h)/anim.Height)
		r.OffsetX = (float64(w) - anim.Width*r.Scale) / 2
		r.OffsetY = (float64(h) - anim.Height*r.Scale) / 2
	}
	p := anim.NewDeltaPlayer()
	p.Play(cfg.Loop)
	return &game{anim: anim, player: p, renderer: r, cfg: cfg, w: w, h: h}
}

// Update advances playback by one tick.
func (g *game) Update() error {
	g.player.Update(1000 / float64(ebiten.TPS()))
	return nil
}

// Draw renders the current frame.
func (g *game) Draw(screen *ebiten.Image) {
	if g.cfg.Background != nil {
		screen.Fill(g.cfg.Background)
	} else {
		screen.Fill(color.Black)
	}
	if err := g.renderer.Draw(screen, g.anim.Root()); err != nil {
		ebitenutil.DebugPrint(screen, err.Error())
		return
	}
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nframe: %.1f %s",
			ebiten.ActualFPS(), ebiten.ActualTPS(), g.player.CurrentFrame(), g.player.State()))
	}
}

// Layout returns the window size.
func (g *game) Layout(_, _ int) (int, int) {
	return g.w, g.h
}

// Run opens a window and plays anim until the window is closed.
func Run(anim *motion.Animation, cfg RunConfig) error {
	g := newGame(anim, cfg)
	ebiten.SetWindowSize(g.w, g.h)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	} else {
		ebiten.SetWindowTitle(anim.Name)
	}
	return ebiten.RunGame(g)
}
