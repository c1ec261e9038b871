// Package hsv converts RGB and BGR images to the 8-bit HSV convention
// (H 0-180, S 0-255, V 0-255).
package hsv

import (
	"errors"
	"fmt"

	"hsv-hist/internal/pixel"
	"hsv-hist/pkg/colorutil"
)

var (
	// ErrAlreadyHSV is returned when an HSV image is converted again.
	ErrAlreadyHSV = errors.New("image is already HSV")
	// ErrColorModel is returned for images whose channel order is unknown.
	ErrColorModel = errors.New("unsupported color model")
	// ErrChannels is returned for images that are not 3-channel.
	ErrChannels = errors.New("HSV conversion needs 3 channels")
)

// ToHSV returns a new HSV image with the same dimensions as img.
func ToHSV(img *pixel.Image) (*pixel.Image, error) {
	var ri, bi int
	switch img.Model() {
	case pixel.ModelRGB:
		ri, bi = 0, 2
	case pixel.ModelBGR:
		ri, bi = 2, 0
	case pixel.ModelHSV:
		return nil, ErrAlreadyHSV
	default:
		return nil, fmt.Errorf("%w: %s", ErrColorModel, img.Model())
	}
	if img.Channels() != 3 {
		return nil, fmt.Errorf("%w: got %d", ErrChannels, img.Channels())
	}

	n := img.Len()
	out := make([]float32, n*3)
	for i := 0; i < n; i++ {
		h, s, v := colorutil.RGBToHSV(
			float64(img.Sample(i, ri)),
			float64(img.Sample(i, 1)),
			float64(img.Sample(i, bi)),
		)
		// Hues just below 180 can round up when narrowed; wrap them to 0.
		hf := float32(h)
		if hf >= colorutil.HueMax {
			hf -= colorutil.HueMax
		}
		out[i*3] = hf
		out[i*3+1] = float32(s)
		out[i*3+2] = float32(v)
	}
	return pixel.New(img.Width(), img.Height(), 3, pixel.ModelHSV, out)
}
