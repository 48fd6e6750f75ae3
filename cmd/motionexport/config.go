package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config controls an export run. It is read from YAML and then overridden by
// any command-line flag that was set explicitly.
type Config struct {
	Doc     string  `yaml:"doc"`     // Bodymovin JSON document
	Out     string  `yaml:"out"`     // output directory
	Label   string  `yaml:"label"`   // file name prefix; defaults to the document name
	From    float64 `yaml:"from"`    // first frame; negative means the document in frame
	To      float64 `yaml:"to"`      // last frame; negative means the document out frame
	Step    float64 `yaml:"step"`    // frame increment
	Scale   float64 `yaml:"scale"`   // pixels per document unit
	Workers int     `yaml:"workers"` // parallel renderers

	// Background is a "#rrggbb" color; empty leaves frames transparent.
	Background string `yaml:"background"`

	// Images is the directory image asset paths are resolved against.
	Images string `yaml:"images"`

	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the settings used when neither the config file nor
// the flags provide a value.
func DefaultConfig() Config {
	return Config{
		Out:     "frames",
		From:    -1,
		To:      -1,
		Step:    1,
		Scale:   1,
		Workers: runtime.NumCPU(),
	}
}

// ReadConfig reads a YAML config file over the defaults.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports settings that cannot produce any output.
func (c Config) Validate() error {
	switch {
	case c.Doc == "":
		return errors.New("no document given")
	case c.Out == "":
		return errors.New("no output directory given")
	case c.Step <= 0:
		return fmt.Errorf("step must be positive, got %v", c.Step)
	case c.Scale <= 0:
		return fmt.Errorf("scale must be positive, got %v", c.Scale)
	}
	return nil
}

// Frames lists the frames to export within the document range [in, out).
func (c Config) Frames(in, out float64) []float64 {
	from, to := c.From, c.To
	if from < 0 {
		from = in
	}
	if to < 0 {
		to = math.Max(in, out-1)
	}
	if to < from {
		return nil
	}
	n := int(math.Floor((to-from)/c.Step + 1e-9))
	frames := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		frames = append(frames, from+float64(i)*c.Step)
	}
	return frames
}
