// Package pipeline turns one raw image into its normalized hue-saturation
// histogram record.
package pipeline

import (
	"fmt"

	"hsv-hist/internal/histogram"
	"hsv-hist/internal/pixel"
	"hsv-hist/internal/record"

	"github.com/golang/glog"
)

// Input is one image as supplied by the batch driver.
type Input struct {
	ID string
	pixel.Buffer
}

// Output is the result for one processed image.
type Output struct {
	ID        string
	Histogram *histogram.Histogram // normalized
	Record    record.Record
}

// Processor runs the per-image stages. It holds no per-image state and may
// be shared by concurrent workers.
type Processor struct {
	backend Backend
	spec    histogram.Spec
	stats   Stats
}

// NewProcessor returns a Processor using backend and spec.
func NewProcessor(backend Backend, spec histogram.Spec) *Processor {
	return &Processor{backend: backend, spec: spec}
}

// Stats returns the processor's outcome counters.
func (p *Processor) Stats() *Stats { return &p.stats }

// Backend returns the backend in use.
func (p *Processor) Backend() Backend { return p.backend }

// Skip reports why an input is filtered out before processing, or "" if it
// is accepted. Only 3-band images larger than 1x1 in both dimensions are
// processed.
func Skip(in Input) string {
	switch {
	case in.Bands != pixel.Bands:
		return fmt.Sprintf("%d bands", in.Bands)
	case in.Width <= 1 || in.Height <= 1:
		return fmt.Sprintf("size %dx%d", in.Width, in.Height)
	}
	return ""
}

// Process converts one image. ok is false when the image was skipped; a
// skipped image is not an error.
func (p *Processor) Process(in Input) (out Output, ok bool, err error) {
	if reason := Skip(in); reason != "" {
		p.stats.skipped.Add(1)
		glog.V(1).Infof("Skipping %s: %s", in.ID, reason)
		return Output{}, false, nil
	}

	h, err := p.histogram(in)
	if err != nil {
		p.stats.AddFailed()
		return Output{}, false, fmt.Errorf("%s: %w", in.ID, err)
	}

	p.stats.processed.Add(1)
	return Output{ID: in.ID, Histogram: h, Record: record.Serialize(h)}, true, nil
}

func (p *Processor) histogram(in Input) (*histogram.Histogram, error) {
	img, err := pixel.Adapt(in.Width, in.Height, in.Bands, in.Samples)
	if err != nil {
		return nil, err
	}
	hsvImg, err := p.backend.ToHSV(img)
	if err != nil {
		return nil, fmt.Errorf("hsv conversion: %w", err)
	}
	counts, err := p.backend.Histogram(hsvImg, p.spec)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	return histogram.Normalize(counts), nil
}
