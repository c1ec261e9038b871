// Package histogram bins two channels of an HSV image into a dense 2D
// histogram and normalizes it.
package histogram

import (
	"errors"
	"fmt"

	"hsv-hist/internal/pixel"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotHSV is returned when Compute is given an image that was not
	// converted to HSV.
	ErrNotHSV = errors.New("histogram input must be HSV")
	// ErrChannelRange is returned when the spec selects a channel the image
	// does not have.
	ErrChannelRange = errors.New("channel out of range")
	// ErrShape is returned for histograms without cells or with an unknown
	// element type.
	ErrShape = errors.New("invalid histogram shape")
)

// Histogram is a dense rows x cols grid of cell values. Every stored value is
// representable in the histogram's element type.
type Histogram struct {
	elem ElemType
	data *mat.Dense
}

// New returns a zero-filled histogram.
func New(rows, cols int, elem ElemType) (*Histogram, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrShape, rows, cols)
	}
	if !elem.Valid() {
		return nil, fmt.Errorf("%w: element type %d", ErrShape, int(elem))
	}
	return &Histogram{elem: elem, data: mat.NewDense(rows, cols, nil)}, nil
}

// Rows returns the number of axis-0 bins.
func (h *Histogram) Rows() int {
	r, _ := h.data.Dims()
	return r
}

// Cols returns the number of axis-1 bins.
func (h *Histogram) Cols() int {
	_, c := h.data.Dims()
	return c
}

// Elem returns the element type of the cells.
func (h *Histogram) Elem() ElemType { return h.elem }

// At returns the value of cell (r, c).
func (h *Histogram) At(r, c int) float64 { return h.data.At(r, c) }

// Set stores v in cell (r, c), quantized to the element type.
func (h *Histogram) Set(r, c int, v float64) {
	h.data.Set(r, c, h.elem.Quantize(v))
}

// Sum returns the sum of all cells.
func (h *Histogram) Sum() float64 { return mat.Sum(h.data) }

// Max returns the largest cell value.
func (h *Histogram) Max() float64 { return mat.Max(h.data) }

// Equal reports whether h and o have the same element type, shape and
// cell values.
func (h *Histogram) Equal(o *Histogram) bool {
	return h.elem == o.elem && mat.Equal(h.data, o.data)
}

// Matrix returns a copy of the cells as a gonum matrix.
func (h *Histogram) Matrix() *mat.Dense {
	return mat.DenseCopyOf(h.data)
}

// Convert returns a copy of h with cells quantized to elem.
func (h *Histogram) Convert(elem ElemType) (*Histogram, error) {
	out, err := New(h.Rows(), h.Cols(), elem)
	if err != nil {
		return nil, err
	}
	out.data.Apply(func(_, _ int, v float64) float64 {
		return elem.Quantize(v)
	}, h.data)
	return out, nil
}

func (h *Histogram) String() string {
	return fmt.Sprintf("%dx%d %s histogram", h.Rows(), h.Cols(), h.elem)
}

// Compute counts the pixels of img into the grid described by spec. Pixels
// are visited in row-major order. The result uses Float32 cells.
func Compute(img *pixel.Image, spec Spec) (*Histogram, error) {
	if img.Model() != pixel.ModelHSV {
		return nil, fmt.Errorf("%w: got %s", ErrNotHSV, img.Model())
	}
	rows, cols := spec.Shape()
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: zero-value spec", ErrInvalidSpec)
	}
	ch := spec.channels
	if ch[0] >= img.Channels() || ch[1] >= img.Channels() {
		return nil, fmt.Errorf("%w: channels %v of %d-channel image",
			ErrChannelRange, ch, img.Channels())
	}

	counts := make([]float64, rows*cols)
	a0, a1 := spec.axes[0], spec.axes[1]
	for i, n := 0, img.Len(); i < n; i++ {
		r := a0.Bin(float64(img.Sample(i, ch[0])))
		c := a1.Bin(float64(img.Sample(i, ch[1])))
		counts[r*cols+c]++
	}

	for i, v := range counts {
		counts[i] = Float32.Quantize(v)
	}
	return &Histogram{elem: Float32, data: mat.NewDense(rows, cols, counts)}, nil
}

// Normalize returns a copy of h scaled so its peak cell is exactly 1. An
// all-zero histogram normalizes to all zeros.
func Normalize(h *Histogram) *Histogram {
	out := &Histogram{elem: h.elem, data: mat.NewDense(h.Rows(), h.Cols(), nil)}
	peak := h.Max()
	if peak <= 0 {
		return out
	}
	out.data.Apply(func(_, _ int, v float64) float64 {
		return h.elem.Quantize(v / peak)
	}, h.data)
	return out
}
