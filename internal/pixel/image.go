// Package pixel provides the dense float image used by the histogram
// pipeline and the adapter from externally supplied pixel buffers.
package pixel

import (
	"errors"
	"fmt"
)

// ColorModel identifies the meaning of an image's channels.
type ColorModel int

const (
	ModelUnknown ColorModel = iota
	ModelRGB                // Channels are R, G, B
	ModelBGR                // Channels are B, G, R (OpenCV default order)
	ModelHSV                // Channels are H (0-180), S (0-255), V (0-255)
)

func (m ColorModel) String() string {
	switch m {
	case ModelRGB:
		return "RGB"
	case ModelBGR:
		return "BGR"
	case ModelHSV:
		return "HSV"
	default:
		return "Unknown"
	}
}

// SampleScale is applied to [0,1] input samples to reach the 8-bit range the
// histogram ranges are expressed in.
const SampleScale = 255.0

// Bands is the only band count the adapter accepts.
const Bands = 3

var (
	// ErrInvalidShape is returned when the sample count does not match the
	// declared dimensions.
	ErrInvalidShape = errors.New("invalid image shape")
	// ErrUnsupportedBandCount is returned for buffers that are not 3-band color.
	ErrUnsupportedBandCount = errors.New("unsupported band count")
)

// Image is an immutable, row-major, channel-interleaved float image.
type Image struct {
	width    int
	height   int
	channels int
	model    ColorModel
	pix      []float32
}

// New builds an Image that takes ownership of pix. The caller must not
// modify pix afterwards.
func New(width, height, channels int, model ColorModel, pix []float32) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidShape, width, height)
	}
	if channels < 1 || channels > 4 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidShape, channels)
	}
	if len(pix) != width*height*channels {
		return nil, fmt.Errorf("%w: %d samples for %dx%dx%d", ErrInvalidShape,
			len(pix), width, height, channels)
	}
	return &Image{
		width:    width,
		height:   height,
		channels: channels,
		model:    model,
		pix:      pix,
	}, nil
}

// Adapt converts an external buffer of [0,1] samples into an RGB Image with
// samples rescaled to [0,255].
func Adapt(width, height, bands int, samples []float32) (*Image, error) {
	if bands != Bands {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBandCount, bands)
	}
	if width <= 0 || height <= 0 || len(samples) != width*height*bands {
		return nil, fmt.Errorf("%w: %d samples for %dx%dx%d", ErrInvalidShape,
			len(samples), width, height, bands)
	}

	pix := make([]float32, len(samples))
	for i, s := range samples {
		pix[i] = s * SampleScale
	}
	return New(width, height, bands, ModelRGB, pix)
}

// Width returns the image width in pixels.
func (m *Image) Width() int { return m.width }

// Height returns the image height in pixels.
func (m *Image) Height() int { return m.height }

// Channels returns the number of interleaved channels per pixel.
func (m *Image) Channels() int { return m.channels }

// Model returns the color model of the channels.
func (m *Image) Model() ColorModel { return m.model }

// Len returns the number of pixels.
func (m *Image) Len() int { return m.width * m.height }

// At returns channel c of the pixel at (x, y).
func (m *Image) At(x, y, c int) float32 {
	return m.pix[(y*m.width+x)*m.channels+c]
}

// Sample returns channel c of the i-th pixel in row-major order.
func (m *Image) Sample(i, c int) float32 {
	return m.pix[i*m.channels+c]
}

// Samples returns a copy of the interleaved sample buffer.
func (m *Image) Samples() []float32 {
	out := make([]float32, len(m.pix))
	copy(out, m.pix)
	return out
}

func (m *Image) String() string {
	return fmt.Sprintf("%dx%dx%d %s", m.width, m.height, m.channels, m.model)
}
