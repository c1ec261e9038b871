//go:build opencv

package native

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"hsv-hist/internal/histogram"
	"hsv-hist/internal/hsv"
	"hsv-hist/internal/pixel"

	"gocv.io/x/gocv"
)

type openCV struct {
	version string
}

func load() (Library, error) {
	version := gocv.OpenCVVersion()
	if version == "" {
		return nil, errors.New("OpenCV reported no version")
	}

	// Run one conversion so a broken install fails here and not mid-batch.
	probe := gocv.NewMatWithSize(1, 1, gocv.MatTypeCV8UC3)
	defer probe.Close()
	out := gocv.NewMat()
	defer out.Close()
	gocv.CvtColor(probe, &out, gocv.ColorRGBToHSV)
	if out.Empty() {
		return nil, errors.New("cvtColor probe produced no output")
	}

	return &openCV{version: version}, nil
}

func (o *openCV) Name() string { return "opencv " + o.version }

// ToHSV converts through OpenCV's float path, which yields H in [0,360) and
// S in [0,1], then rescales to the 8-bit convention.
func (o *openCV) ToHSV(img *pixel.Image) (*pixel.Image, error) {
	var code gocv.ColorConversionCode
	switch img.Model() {
	case pixel.ModelRGB:
		code = gocv.ColorRGBToHSV
	case pixel.ModelBGR:
		code = gocv.ColorBGRToHSV
	case pixel.ModelHSV:
		return nil, hsv.ErrAlreadyHSV
	default:
		return nil, fmt.Errorf("%w: %s", hsv.ErrColorModel, img.Model())
	}
	if img.Channels() != 3 {
		return nil, fmt.Errorf("%w: got %d", hsv.ErrChannels, img.Channels())
	}

	src, err := toMat(img, img.Samples())
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.CvtColor(src, &dst, code)

	pix, err := matFloats(dst, img.Len()*3)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(pix); i += 3 {
		h := pix[i] / 2
		if h >= 180 {
			h -= 180
		}
		pix[i] = h
		pix[i+1] *= 255
	}
	return pixel.New(img.Width(), img.Height(), 3, pixel.ModelHSV, pix)
}

// Histogram runs calcHist over the selected channels. OpenCV drops values at
// or above an axis' upper bound, so the selected channels are first clamped
// into the last bin to keep the engine's clamping rule.
func (o *openCV) Histogram(img *pixel.Image, spec histogram.Spec) (*histogram.Histogram, error) {
	if img.Model() != pixel.ModelHSV {
		return nil, fmt.Errorf("%w: got %s", histogram.ErrNotHSV, img.Model())
	}
	rows, cols := spec.Shape()
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: zero-value spec", histogram.ErrInvalidSpec)
	}
	ch := spec.Channels()
	axes := spec.Axes()
	n := img.Channels()
	if ch[0] >= n || ch[1] >= n {
		return nil, fmt.Errorf("%w: channels %v of %d-channel image", histogram.ErrChannelRange, ch, n)
	}

	pix := img.Samples()
	for i := 0; i < len(pix); i += n {
		for k, c := range ch {
			pix[i+c] = clampToAxis(pix[i+c], axes[k])
		}
	}

	src, err := toMat(img, pix)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	hist := gocv.NewMat()
	defer hist.Close()

	gocv.CalcHist([]gocv.Mat{src}, []int{ch[0], ch[1]}, mask, &hist,
		[]int{rows, cols},
		[]float64{axes[0].Low, axes[0].High, axes[1].Low, axes[1].High},
		false)
	if hist.Rows() != rows || hist.Cols() != cols {
		return nil, fmt.Errorf("calcHist returned %dx%d, want %dx%d", hist.Rows(), hist.Cols(), rows, cols)
	}

	out, err := histogram.New(rows, cols, histogram.Float32)
	if err != nil {
		return nil, err
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, float64(hist.GetFloatAt(r, c)))
		}
	}
	return out, nil
}

// clampToAxis keeps v inside [Low, centre of the last bin].
func clampToAxis(v float32, a histogram.Axis) float32 {
	top := a.High - (a.High-a.Low)/float64(2*a.Bins)
	f := float64(v)
	if !(f >= a.Low) {
		return float32(a.Low)
	}
	if f > top {
		return float32(top)
	}
	return v
}

func toMat(img *pixel.Image, pix []float32) (gocv.Mat, error) {
	var mt gocv.MatType
	switch img.Channels() {
	case 1:
		mt = gocv.MatTypeCV32FC1
	case 2:
		mt = gocv.MatTypeCV32FC2
	case 3:
		mt = gocv.MatTypeCV32FC3
	default:
		mt = gocv.MatTypeCV32FC4
	}
	buf := make([]byte, 0, len(pix)*4)
	for _, v := range pix {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	mat, err := gocv.NewMatFromBytes(img.Height(), img.Width(), mt, buf)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to build mat: %w", err)
	}
	return mat, nil
}

func matFloats(m gocv.Mat, want int) ([]float32, error) {
	data := m.ToBytes()
	if len(data) != want*4 {
		return nil, fmt.Errorf("mat holds %d bytes, want %d", len(data), want*4)
	}
	out := make([]float32, want)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}
