package pixel

import (
	"image"
	"image/color"
)

// Buffer is the external raw image representation: interleaved samples in
// [0,1] with an explicit band count.
type Buffer struct {
	Width   int
	Height  int
	Bands   int
	Samples []float32
}

// FromImage flattens a decoded image into a Buffer. Grayscale images yield a
// single band; everything else yields 3 RGB bands with alpha dropped.
func FromImage(img image.Image) Buffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		samples := make([]float32, 0, width*height)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
				samples = append(samples, float32(g.Y)/0xffff)
			}
		}
		return Buffer{Width: width, Height: height, Bands: 1, Samples: samples}
	}

	samples := make([]float32, 0, width*height*3)
	if rgba, ok := img.(*image.RGBA); ok && rgba.Opaque() {
		for y := 0; y < height; y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
			for x := 0; x < width*4; x += 4 {
				samples = append(samples,
					float32(row[x])/0xff,
					float32(row[x+1])/0xff,
					float32(row[x+2])/0xff)
			}
		}
		return Buffer{Width: width, Height: height, Bands: 3, Samples: samples}
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Non-premultiplied so translucent pixels keep their color.
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			samples = append(samples,
				float32(c.R)/0xffff,
				float32(c.G)/0xffff,
				float32(c.B)/0xffff)
		}
	}
	return Buffer{Width: width, Height: height, Bands: 3, Samples: samples}
}
