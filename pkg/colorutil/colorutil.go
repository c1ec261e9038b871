// Package colorutil provides shared color-space helpers using the 8-bit
// image-library conventions (H 0-180, S 0-255, V 0-255).
package colorutil

import "math"

// Channel ranges of the 8-bit HSV convention. Hue is stored at half scale so
// that a full 360 degree circle fits a byte.
const (
	HueMax        = 180.0
	SaturationMax = 255.0
	ValueMax      = 255.0
)

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
// The returned hue is always strictly below HueMax.
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC

	if maxC > 0 {
		s = diff / maxC * SaturationMax
	}

	switch {
	case diff == 0:
		h = 0
	case maxC == r:
		h = 60 * math.Mod((g-b)/diff, 6)
	case maxC == g:
		h = 60 * ((b-r)/diff + 2)
	default:
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}
	// A tiny negative angle can round up to a full turn.
	if h >= 360 {
		h -= 360
	}

	return h / 2, s, v
}

// HSVToRGB is the inverse of RGBToHSV. It is used to synthesize pixels of a
// known hue and saturation.
func HSVToRGB(h, s, v float64) (r, g, b float64) {
	if s <= 0 {
		return v, v, v
	}
	deg := math.Mod(h*2, 360)
	if deg < 0 {
		deg += 360
	}
	sat := s / SaturationMax
	c := v * sat
	x := c * (1 - math.Abs(math.Mod(deg/60, 2)-1))
	m := v - c

	switch {
	case deg < 60:
		r, g, b = c, x, 0
	case deg < 120:
		r, g, b = x, c, 0
	case deg < 180:
		r, g, b = 0, c, x
	case deg < 240:
		r, g, b = 0, x, c
	case deg < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
