// Package native exposes the OpenCV color conversion and histogram
// primitives behind a narrow interface.
//
// The library is loaded at most once per process. A failed load is sticky:
// every later Load returns the same error, and callers are expected to stop
// the batch rather than retry.
package native

import (
	"errors"
	"fmt"
	"sync"

	"hsv-hist/internal/histogram"
	"hsv-hist/internal/pixel"
)

// ErrUnavailable is returned when the native library cannot be loaded.
var ErrUnavailable = errors.New("native image library unavailable")

// Library is the subset of the native library the pipeline uses.
type Library interface {
	Name() string
	ToHSV(img *pixel.Image) (*pixel.Image, error)
	Histogram(img *pixel.Image, spec histogram.Spec) (*histogram.Histogram, error)
}

var (
	loadOnce sync.Once
	lib      Library
	loadErr  error
)

// Load initializes the native library on first use and returns it.
func Load() (Library, error) {
	loadOnce.Do(func() {
		lib, loadErr = load()
		if loadErr != nil {
			lib = nil
			loadErr = fmt.Errorf("%w: %v", ErrUnavailable, loadErr)
		}
	})
	return lib, loadErr
}
