package histogram

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec is returned by NewSpec for out-of-range configuration.
var ErrInvalidSpec = errors.New("invalid histogram spec")

// Axis describes the binning of one selected channel over [Low, High).
type Axis struct {
	Bins int     `toml:"bins" yaml:"bins"`
	Low  float64 `toml:"low" yaml:"low"`
	High float64 `toml:"high" yaml:"high"`
}

// Bin maps v onto [0, Bins-1]. Values at or beyond High land in the last bin;
// values below Low (and NaN) in the first.
func (a Axis) Bin(v float64) int {
	if !(v >= a.Low) {
		return 0
	}
	if v >= a.High {
		return a.Bins - 1
	}
	b := int((v - a.Low) / (a.High - a.Low) * float64(a.Bins))
	if b >= a.Bins {
		return a.Bins - 1
	}
	return b
}

func (a Axis) validate() error {
	if a.Bins < 1 {
		return fmt.Errorf("%w: %d bins", ErrInvalidSpec, a.Bins)
	}
	if !(a.Low < a.High) {
		return fmt.Errorf("%w: range [%g, %g)", ErrInvalidSpec, a.Low, a.High)
	}
	return nil
}

// Default binning: 50 hue bins over [0,180) and 60 saturation bins over
// [0,256). Downstream consumers expect exactly this 50x60 grid.
var (
	DefaultHue        = Axis{Bins: 50, Low: 0, High: 180}
	DefaultSaturation = Axis{Bins: 60, Low: 0, High: 256}
)

// Spec selects two channels of an image and how each is binned. Axes[0]
// indexes histogram rows, Axes[1] columns.
type Spec struct {
	channels [2]int
	axes     [2]Axis
}

// NewSpec validates and returns a Spec.
func NewSpec(channels [2]int, axes [2]Axis) (Spec, error) {
	for i, ch := range channels {
		if ch < 0 || ch > 3 {
			return Spec{}, fmt.Errorf("%w: channel %d", ErrInvalidSpec, ch)
		}
		if err := axes[i].validate(); err != nil {
			return Spec{}, fmt.Errorf("axis %d: %w", i, err)
		}
	}
	if channels[0] == channels[1] {
		return Spec{}, fmt.Errorf("%w: channel %d selected twice", ErrInvalidSpec, channels[0])
	}
	return Spec{channels: channels, axes: axes}, nil
}

// DefaultSpec bins hue (channel 0) against saturation (channel 1).
func DefaultSpec() Spec {
	return Spec{
		channels: [2]int{0, 1},
		axes:     [2]Axis{DefaultHue, DefaultSaturation},
	}
}

// Channels returns the selected channel indices.
func (s Spec) Channels() [2]int { return s.channels }

// Axes returns the per-channel binning.
func (s Spec) Axes() [2]Axis { return s.axes }

// Shape returns the histogram dimensions (rows, cols).
func (s Spec) Shape() (rows, cols int) {
	return s.axes[0].Bins, s.axes[1].Bins
}
