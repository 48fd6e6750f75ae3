package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/motion"
	"github.com/phanxgames/motion/raster"
)

// worker owns one animation instance and one renderer. Instances are not
// safe for concurrent use, so every worker gets its own clone.
type worker struct {
	anim     *motion.Animation
	renderer *raster.Renderer
}

func newWorker(anim *motion.Animation, cfg Config) (*worker, error) {
	w := int(math.Ceil(anim.Width * cfg.Scale))
	h := int(math.Ceil(anim.Height * cfg.Scale))
	r := raster.New(w, h)
	r.Scale = cfg.Scale
	if cfg.Background != "" {
		bg, err := motion.ColorFromHex(cfg.Background)
		if err != nil {
			return nil, fmt.Errorf("background %q: %w", cfg.Background, err)
		}
		r.Background = bg
	}
	if cfg.Images != "" {
		r.Images = imageLoader(cfg.Images)
	}
	return &worker{anim: anim, renderer: r}, nil
}

// imageLoader resolves image assets against dir, decoding each file once.
// Failures are logged once and the layer is skipped.
func imageLoader(dir string) func(ref *motion.ImageRef) image.Image {
	cache := make(map[string]image.Image)
	return func(ref *motion.ImageRef) image.Image {
		if img, ok := cache[ref.Path]; ok {
			return img
		}
		img, err := decodeImage(filepath.Join(dir, ref.Path))
		if err != nil {
			log.Printf("image %s: %v", ref.AssetID, err)
		}
		cache[ref.Path] = img
		return img
	}
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Export renders the configured frame range of anim to PNG files and returns
// the number of files written.
func Export(ctx context.Context, anim *motion.Animation, cfg Config) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	frames := cfg.Frames(anim.InFrame, anim.OutFrame)
	if len(frames) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(cfg.Out, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir %s: %w", cfg.Out, err)
	}
	label := cfg.Label
	if label == "" {
		label = anim.Name
	}

	n := min(max(cfg.Workers, 1), len(frames))
	// Clones are built here, before any goroutine starts.
	workers := make(chan *worker, n)
	for i := 0; i < n; i++ {
		inst := anim
		if i > 0 {
			inst = anim.Clone()
		}
		w, err := newWorker(inst, cfg)
		if err != nil {
			return 0, err
		}
		workers <- w
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i, frame := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w := <-workers
			defer func() { workers <- w }()

			w.anim.Update(frame)
			if err := w.anim.Render(w.renderer); err != nil {
				return fmt.Errorf("frame %v: %w", frame, err)
			}
			if _, err := w.renderer.SaveFrame(cfg.Out, label, i); err != nil {
				return fmt.Errorf("frame %v: %w", frame, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(frames), nil
}
