package bundle

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"hsv-hist/internal/pixel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	images := []struct {
		id  string
		buf pixel.Buffer
	}{
		{"a.png", pixel.Buffer{Width: 2, Height: 1, Bands: 3, Samples: []float32{1, 0, 0, 0, 0.5, 1}}},
		{"gray", pixel.Buffer{Width: 1, Height: 2, Bands: 1, Samples: []float32{0.25, 0.75}}},
		{"", pixel.Buffer{}},
	}

	var out bytes.Buffer
	w, err := NewWriter(&out)
	require.NoError(t, err)
	for _, img := range images {
		require.NoError(t, w.Write(img.id, img.buf))
	}
	require.NoError(t, w.Close())

	r, err := NewReader(&out)
	require.NoError(t, err)
	defer r.Close()
	for _, want := range images {
		id, buf, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, want.id, id)
		assert.Equal(t, want.buf.Width, buf.Width)
		assert.Equal(t, want.buf.Height, buf.Height)
		assert.Equal(t, want.buf.Bands, buf.Bands)
		assert.Len(t, buf.Samples, len(want.buf.Samples))
		for i := range want.buf.Samples {
			assert.Equal(t, want.buf.Samples[i], buf.Samples[i])
		}
	}
	_, _, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTruncated(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out)
	require.NoError(t, err)
	require.NoError(t, w.Write("x", pixel.Buffer{Width: 4, Height: 4, Bands: 3, Samples: make([]float32, 48)}))
	require.NoError(t, w.Close())

	// Re-compress a truncated plain stream.
	r, err := NewReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	plain, err := io.ReadAll(r.r)
	require.NoError(t, err)
	r.Close()

	var cut bytes.Buffer
	cw, err := NewWriter(&cut)
	require.NoError(t, err)
	_, err = cw.zw.Write(plain[:len(plain)-5])
	require.NoError(t, err)
	require.NoError(t, cw.Close())

	r, err = NewReader(&cut)
	require.NoError(t, err)
	defer r.Close()
	_, _, err = r.Next()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestWriteRejectsSampleMismatch(t *testing.T) {
	w, err := NewWriter(io.Discard)
	require.NoError(t, err)
	defer w.Close()
	assert.Error(t, w.Write("short", pixel.Buffer{Width: 2, Height: 2, Bands: 3, Samples: make([]float32, 5)}))
	assert.Error(t, w.Write("neg", pixel.Buffer{Width: -1, Height: 2, Bands: 3}))
}

func TestOversizedHeader(t *testing.T) {
	tests := []struct {
		name     string
		w, h, bn uint32
	}{
		{"too many samples", 1 << 20, 1 << 20, 3},
		{"product wraps to zero", 1 << 22, 1 << 21, 1 << 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			w, err := NewWriter(&out)
			require.NoError(t, err)
			// Declares far more samples than it carries.
			head := binary.LittleEndian.AppendUint16(nil, 3)
			head = append(head, "big"...)
			head = binary.LittleEndian.AppendUint32(head, tt.w)
			head = binary.LittleEndian.AppendUint32(head, tt.h)
			head = binary.LittleEndian.AppendUint32(head, tt.bn)
			_, err = w.zw.Write(head)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := NewReader(&out)
			require.NoError(t, err)
			defer r.Close()
			_, _, err = r.Next()
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}
