package record

import (
	"math/rand"
	"testing"

	"hsv-hist/internal/histogram"
	"hsv-hist/internal/hsv"
	"hsv-hist/internal/pixel"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalizedHistogram(t *testing.T, seed int64) *histogram.Histogram {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	const w, h = 40, 30
	samples := make([]float32, w*h*3)
	for i := range samples {
		samples[i] = rng.Float32()
	}
	img, err := pixel.Adapt(w, h, 3, samples)
	require.NoError(t, err)
	hsvImg, err := hsv.ToHSV(img)
	require.NoError(t, err)
	counts, err := histogram.Compute(hsvImg, histogram.DefaultSpec())
	require.NoError(t, err)
	return histogram.Normalize(counts)
}

func filled(t *testing.T, rows, cols int, elem histogram.ElemType, f func(r, c int) float64) *histogram.Histogram {
	t.Helper()
	h, err := histogram.New(rows, cols, elem)
	require.NoError(t, err)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			h.Set(r, c, f(r, c))
		}
	}
	return h
}

func TestSerializeOrder(t *testing.T) {
	h := filled(t, 2, 3, histogram.Float64, func(r, c int) float64 { return float64(r*10 + c) })
	rec := Serialize(h)

	want := Record{
		Rows: 2, Cols: 3, Type: histogram.Float64,
		Entries: []Entry{
			{0, 0, 0}, {0, 1, 1}, {0, 2, 2},
			{1, 0, 10}, {1, 1, 11}, {1, 2, 12},
		},
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("Serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		h    *histogram.Histogram
	}{
		{"normalized", normalizedHistogram(t, 11)},
		{"all zero", filled(t, 50, 60, histogram.Float32, func(_, _ int) float64 { return 0 })},
		{"tiny floats", filled(t, 3, 3, histogram.Float32, func(r, c int) float64 { return 1e-30 * float64(r+c) })},
		{"float64", filled(t, 4, 5, histogram.Float64, func(r, c int) float64 { return 1 / float64(r+c+3) })},
		{"uint8", filled(t, 4, 4, histogram.Uint8, func(r, c int) float64 { return float64(r*64 + c) })},
		{"int8", filled(t, 2, 2, histogram.Int8, func(r, c int) float64 { return float64(-100 + r*50 + c) })},
		{"uint16", filled(t, 2, 2, histogram.Uint16, func(r, c int) float64 { return float64(65535 - r - c) })},
		{"int16", filled(t, 2, 2, histogram.Int16, func(r, c int) float64 { return float64(-32768 + r + c) })},
		{"int32", filled(t, 1, 3, histogram.Int32, func(_, c int) float64 { return float64(-2147483648 + c*1000000) })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			back, err := Deserialize(Serialize(tt.h))
			require.NoError(t, err)
			assert.True(t, tt.h.Equal(back), "record round trip")

			text, err := EncodeText(tt.h)
			require.NoError(t, err)
			back, err = DecodeText(text)
			require.NoError(t, err)
			assert.True(t, tt.h.Equal(back), "text round trip")

			back, err = UnmarshalBinary(MarshalBinary(tt.h))
			require.NoError(t, err)
			assert.True(t, tt.h.Equal(back), "binary round trip")
		})
	}
}

func TestMarshalFormat(t *testing.T) {
	h := filled(t, 1, 3, histogram.Float32, func(_, c int) float64 { return []float64{0, 1, 0.1}[c] })
	text, err := EncodeText(h)
	require.NoError(t, err)
	assert.Equal(t, `{"rows":1,"cols":3,"type":5,"count":3,"data":"0 0 0,0 1 1,0 2 0.1,"}`, string(text))

	u8 := filled(t, 1, 2, histogram.Uint8, func(_, c int) float64 { return float64(c * 200) })
	text, err = EncodeText(u8)
	require.NoError(t, err)
	assert.Equal(t, `{"rows":1,"cols":2,"type":0,"count":2,"data":"0 0 0,0 1 200,"}`, string(text))
}

func TestUnmarshalReordered(t *testing.T) {
	data := `{"rows":2,"cols":2,"type":6,"count":4,"data":"1 1 4,0 1 2,1 0 3,0 0 1"}`
	rec, err := Unmarshal([]byte(data))
	require.NoError(t, err)

	h, err := Deserialize(rec)
	require.NoError(t, err)
	want := filled(t, 2, 2, histogram.Float64, func(r, c int) float64 { return float64(r*2 + c + 1) })
	assert.True(t, want.Equal(h))

	// Re-serializing restores row-major order.
	if diff := cmp.Diff(Serialize(want), Serialize(h)); diff != "" {
		t.Errorf("reserialized mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalAcceptsJavaStyleValues(t *testing.T) {
	data := `{"rows":1,"cols":2,"type":5,"count":2,"data":"0 0 0.0,0 1 0.016666668,"}`
	h, err := DecodeText([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, float64(float32(0.016666668)), h.At(0, 1))
}

func TestMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `rows=1`},
		{"bad type", `{"rows":1,"cols":1,"type":12,"count":1,"data":"0 0 1,"}`},
		{"count mismatch", `{"rows":1,"cols":2,"type":5,"count":3,"data":"0 0 1,0 1 1,"}`},
		{"missing cell", `{"rows":1,"cols":2,"type":5,"count":1,"data":"0 0 1,"}`},
		{"duplicate cell", `{"rows":1,"cols":2,"type":5,"count":2,"data":"0 0 1,0 0 1,"}`},
		{"out of range", `{"rows":1,"cols":2,"type":5,"count":2,"data":"0 0 1,1 0 1,"}`},
		{"negative coordinate", `{"rows":1,"cols":2,"type":5,"count":2,"data":"0 0 1,0 -1 1,"}`},
		{"short entry", `{"rows":1,"cols":1,"type":5,"count":1,"data":"0 1,"}`},
		{"bad value", `{"rows":1,"cols":1,"type":5,"count":1,"data":"0 0 x,"}`},
		{"zero rows", `{"rows":0,"cols":1,"type":5,"count":0,"data":""}`},
		{"shape overflow", `{"rows":4294967296,"cols":4294967296,"type":5,"count":0,"data":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeText([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestUnmarshalBinaryMalformed(t *testing.T) {
	good := MarshalBinary(filled(t, 2, 3, histogram.Float32, func(r, c int) float64 { return float64(r + c) }))

	_, err := UnmarshalBinary(good[:5])
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = UnmarshalBinary(good[:len(good)-1])
	assert.ErrorIs(t, err, ErrMalformed)

	bad := append([]byte(nil), good...)
	bad[0] = 'X'
	_, err = UnmarshalBinary(bad)
	assert.ErrorIs(t, err, ErrMalformed)

	bad = append([]byte(nil), good...)
	bad[5] = 42
	_, err = UnmarshalBinary(bad)
	assert.ErrorIs(t, err, ErrMalformed)

	assert.Len(t, good, binaryHeaderSize+2*3*4)
}

func TestLine(t *testing.T) {
	line, err := FormatLine("img-001.png", []byte(`{"rows":1}`))
	require.NoError(t, err)
	assert.Equal(t, "img-001.png\t{\"rows\":1}", line)

	id, rec, err := ParseLine(line + "\n")
	require.NoError(t, err)
	assert.Equal(t, "img-001.png", id)
	assert.Equal(t, `{"rows":1}`, string(rec))

	_, err = FormatLine("bad\tid", nil)
	assert.Error(t, err)
	_, _, err = ParseLine("no separator")
	assert.ErrorIs(t, err, ErrMalformed)
}
