package pixel

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Downsize scales img down by factor using bilinear interpolation. Grayscale
// images stay grayscale so their band count is preserved. A factor of 1 or
// less returns img unchanged.
func Downsize(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	src := img.Bounds()
	w := max(1, src.Dx()/factor)
	h := max(1, src.Dy()/factor)
	rect := image.Rect(0, 0, w, h)

	var dst draw.Image
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		dst = image.NewGray(rect)
	default:
		dst = image.NewRGBA(rect)
	}
	draw.BiLinear.Scale(dst, rect, img, src, draw.Src, nil)
	return dst
}
