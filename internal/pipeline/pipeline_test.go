package pipeline

import (
	"errors"
	"sync"
	"testing"

	"hsv-hist/internal/histogram"
	"hsv-hist/internal/pixel"
	"hsv-hist/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redInput(id string, w, h int) Input {
	samples := make([]float32, 0, w*h*3)
	for i := 0; i < w*h; i++ {
		samples = append(samples, 1, 0, 0)
	}
	return Input{ID: id, Buffer: pixel.Buffer{Width: w, Height: h, Bands: 3, Samples: samples}}
}

func TestProcessPureRed(t *testing.T) {
	p := NewProcessor(GoBackend(), histogram.DefaultSpec())
	out, ok, err := p.Process(redInput("red.png", 2, 2))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "red.png", out.ID)
	h := out.Histogram
	require.Equal(t, 50, h.Rows())
	require.Equal(t, 60, h.Cols())
	for r := 0; r < h.Rows(); r++ {
		for c := 0; c < h.Cols(); c++ {
			want := 0.0
			if r == 0 && c == 59 {
				want = 1
			}
			require.Equal(t, want, h.At(r, c), "cell (%d, %d)", r, c)
		}
	}

	assert.Equal(t, 50, out.Record.Rows)
	assert.Equal(t, 60, out.Record.Cols)
	assert.Equal(t, histogram.Float32, out.Record.Type)
	assert.Len(t, out.Record.Entries, 3000)
	assert.Equal(t, record.Entry{Row: 0, Col: 59, Value: 1}, out.Record.Entries[59])

	back, err := record.Deserialize(out.Record)
	require.NoError(t, err)
	assert.True(t, h.Equal(back))

	assert.Equal(t, Counts{Processed: 1}, p.Stats().Snapshot())
}

func TestProcessSkips(t *testing.T) {
	p := NewProcessor(GoBackend(), histogram.DefaultSpec())

	gray := Input{ID: "gray", Buffer: pixel.Buffer{Width: 2, Height: 2, Bands: 1, Samples: make([]float32, 4)}}
	rgba := Input{ID: "rgba", Buffer: pixel.Buffer{Width: 2, Height: 2, Bands: 4, Samples: make([]float32, 16)}}
	for _, in := range []Input{gray, rgba, redInput("thin", 1, 5), redInput("flat", 5, 1)} {
		out, ok, err := p.Process(in)
		require.NoError(t, err, in.ID)
		assert.False(t, ok, in.ID)
		assert.Nil(t, out.Histogram, in.ID)
	}
	assert.Equal(t, Counts{Skipped: 4}, p.Stats().Snapshot())
}

func TestProcessInvalidShape(t *testing.T) {
	p := NewProcessor(GoBackend(), histogram.DefaultSpec())
	in := redInput("short", 3, 3)
	in.Samples = in.Samples[:10]

	_, ok, err := p.Process(in)
	assert.False(t, ok)
	assert.ErrorIs(t, err, pixel.ErrInvalidShape)
	assert.Contains(t, err.Error(), "short")

	// The processor keeps working after a failed image.
	_, ok, err = p.Process(redInput("next", 2, 2))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Counts{Processed: 1, Failed: 1}, p.Stats().Snapshot())
	assert.Equal(t, int64(2), p.Stats().Snapshot().Total())
}

type failingBackend struct{ goBackend }

var errBoom = errors.New("boom")

func (failingBackend) Histogram(*pixel.Image, histogram.Spec) (*histogram.Histogram, error) {
	return nil, errBoom
}

func TestProcessBackendError(t *testing.T) {
	p := NewProcessor(failingBackend{}, histogram.DefaultSpec())
	_, ok, err := p.Process(redInput("x", 2, 2))
	assert.False(t, ok)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, int64(1), p.Stats().Snapshot().Failed)
}

func TestProcessConcurrent(t *testing.T) {
	p := NewProcessor(GoBackend(), histogram.DefaultSpec())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := p.Process(redInput("r", 4, 4))
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(16), p.Stats().Snapshot().Processed)
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend("go")
	require.NoError(t, err)
	assert.Equal(t, "go", b.Name())

	b, err = NewBackend("")
	require.NoError(t, err)
	assert.Equal(t, "go", b.Name())

	_, err = NewBackend("cuda")
	assert.Error(t, err)
}

func TestCountsString(t *testing.T) {
	c := Counts{Processed: 3, Skipped: 2, Failed: 1}
	assert.Equal(t, "3 processed, 2 skipped, 1 failed", c.String())
}
