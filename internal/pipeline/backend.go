package pipeline

import (
	"fmt"

	"hsv-hist/internal/histogram"
	"hsv-hist/internal/hsv"
	"hsv-hist/internal/native"
	"hsv-hist/internal/pixel"
)

// Backend performs the color conversion and binning steps.
type Backend interface {
	Name() string
	ToHSV(img *pixel.Image) (*pixel.Image, error)
	Histogram(img *pixel.Image, spec histogram.Spec) (*histogram.Histogram, error)
}

// Backend names accepted by NewBackend.
const (
	BackendGo     = "go"
	BackendOpenCV = "opencv"
)

type goBackend struct{}

func (goBackend) Name() string { return BackendGo }

func (goBackend) ToHSV(img *pixel.Image) (*pixel.Image, error) {
	return hsv.ToHSV(img)
}

func (goBackend) Histogram(img *pixel.Image, spec histogram.Spec) (*histogram.Histogram, error) {
	return histogram.Compute(img, spec)
}

// GoBackend returns the pure Go backend.
func GoBackend() Backend { return goBackend{} }

// NewBackend returns the backend with the given name. Selecting the OpenCV
// backend loads the native library; its failure wraps native.ErrUnavailable.
func NewBackend(name string) (Backend, error) {
	switch name {
	case BackendGo, "":
		return GoBackend(), nil
	case BackendOpenCV:
		return native.Load()
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}
