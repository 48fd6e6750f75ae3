// Command motionexport renders the frames of a Bodymovin animation to PNG
// files.
//
//	motionexport -doc intro.json -out frames -workers 8
//	motionexport -config export.yaml -from 0 -to 30
//
// Settings come from an optional YAML config file; flags given on the
// command line override it.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/phanxgames/motion"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file")
	doc := flag.String("doc", "", "Bodymovin JSON document")
	out := flag.String("out", "", "output directory (default \"frames\")")
	label := flag.String("label", "", "file name prefix (default: document name)")
	from := flag.Float64("from", -1, "first frame (default: document in frame)")
	to := flag.Float64("to", -1, "last frame (default: last frame before the document out frame)")
	step := flag.Float64("step", 0, "frame increment (default 1)")
	scale := flag.Float64("scale", 0, "pixels per document unit (default 1)")
	workers := flag.Int("workers", 0, "parallel renderers (default: number of CPUs)")
	bg := flag.String("background", "", "background color as #rrggbb (default: transparent)")
	images := flag.String("images", "", "directory image assets are resolved against")
	debug := flag.Bool("debug", false, "enable debug checks and warnings on stderr")
	flag.Parse()

	cfg := DefaultConfig()
	if *cfgPath != "" {
		var err error
		if cfg, err = ReadConfig(*cfgPath); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "doc":
			cfg.Doc = *doc
		case "out":
			cfg.Out = *out
		case "label":
			cfg.Label = *label
		case "from":
			cfg.From = *from
		case "to":
			cfg.To = *to
		case "step":
			cfg.Step = *step
		case "scale":
			cfg.Scale = *scale
		case "workers":
			cfg.Workers = *workers
		case "background":
			cfg.Background = *bg
		case "images":
			cfg.Images = *images
		case "debug":
			cfg.Debug = *debug
		}
	})
	if err := cfg.Validate(); err != nil {
		flag.Usage()
		log.Fatal(err)
	}
	motion.SetDebugMode(cfg.Debug)

	data, err := os.ReadFile(cfg.Doc)
	if err != nil {
		log.Fatal(err)
	}
	anim, err := motion.Load(data)
	if err != nil {
		log.Fatal(err)
	}
	for _, w := range anim.Warnings() {
		log.Printf("warning: %v", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	n, err := Export(ctx, anim, cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d frames to %s in %v", n, cfg.Out, time.Since(start).Round(time.Millisecond))
}
