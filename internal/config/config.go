// Package config loads batch settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"hsv-hist/internal/histogram"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Accepted values for the enumerated settings.
const (
	CompressNone = "none"
	CompressZstd = "zstd"

	FormatText   = "text"
	FormatBinary = "binary"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings of one extraction run.
type Config struct {
	Backend        string    `toml:"backend" yaml:"backend"`
	Workers        int       `toml:"workers" yaml:"workers"`
	DownsizeFactor int       `toml:"downsize_factor" yaml:"downsize_factor"`
	Input          string    `toml:"input" yaml:"input"`
	Output         string    `toml:"output" yaml:"output"`
	Compress       string    `toml:"compress" yaml:"compress"`
	Format         string    `toml:"format" yaml:"format"`
	Histogram      Histogram `toml:"histogram" yaml:"histogram"`
}

// Histogram configures the binning. Axes[0] bins Channels[0] (rows) and
// Axes[1] bins Channels[1] (columns).
type Histogram struct {
	Channels []int            `toml:"channels" yaml:"channels"`
	Axes     []histogram.Axis `toml:"axes" yaml:"axes"`
}

// Default returns the settings used when nothing is configured: the pure Go
// backend and the 50x60 hue-saturation grid.
func Default() Config {
	return Config{
		Backend:        "go",
		Workers:        0,
		DownsizeFactor: 1,
		Output:         ".",
		Compress:       CompressNone,
		Format:         FormatText,
		Histogram: Histogram{
			Channels: []int{0, 1},
			Axes:     []histogram.Axis{histogram.DefaultHue, histogram.DefaultSaturation},
		},
	}
}

// Load reads path over the defaults. The format is chosen by extension:
// .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("%w: unknown keys %v in %s", ErrInvalid, undecoded, path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(strings.NewReader(string(data)))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, ext)
	}
	return cfg, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	switch c.Backend {
	case "go", "opencv":
	default:
		return fmt.Errorf("%w: backend %q", ErrInvalid, c.Backend)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	if c.DownsizeFactor < 0 {
		return fmt.Errorf("%w: downsize_factor %d", ErrInvalid, c.DownsizeFactor)
	}
	switch c.Compress {
	case CompressNone, CompressZstd:
	default:
		return fmt.Errorf("%w: compress %q", ErrInvalid, c.Compress)
	}
	switch c.Format {
	case FormatText, FormatBinary:
	default:
		return fmt.Errorf("%w: format %q", ErrInvalid, c.Format)
	}
	if _, err := c.Spec(); err != nil {
		return err
	}
	return nil
}

// Spec builds the histogram spec described by c.Histogram.
func (c Config) Spec() (histogram.Spec, error) {
	h := c.Histogram
	if len(h.Channels) != 2 || len(h.Axes) != 2 {
		return histogram.Spec{}, fmt.Errorf("%w: histogram needs 2 channels and 2 axes, got %d and %d",
			ErrInvalid, len(h.Channels), len(h.Axes))
	}
	spec, err := histogram.NewSpec([2]int{h.Channels[0], h.Channels[1]}, [2]histogram.Axis{h.Axes[0], h.Axes[1]})
	if err != nil {
		return histogram.Spec{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return spec, nil
}

// WorkerCount resolves Workers, using one worker per CPU when unset.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}
