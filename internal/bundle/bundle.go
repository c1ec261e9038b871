// Package bundle reads and writes zstd-compressed streams of raw float
// images, one record per image:
//
//	idLen   uint16
//	id      [idLen]byte
//	width   uint32
//	height  uint32
//	bands   uint32
//	samples [width*height*bands]float32
//
// All integers and floats are little-endian.
package bundle

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"hsv-hist/internal/pixel"

	"github.com/klauspost/compress/zstd"
)

// MaxSamples bounds the samples of one image so a corrupt header cannot
// trigger an enormous allocation.
const MaxSamples = 1 << 28

// ErrCorrupt is returned for records that cannot be decoded.
var ErrCorrupt = errors.New("corrupt bundle")

// Writer appends images to a bundle.
type Writer struct {
	zw  *zstd.Encoder
	buf []byte
}

// NewWriter returns a Writer compressing into w. Close must be called to
// flush the stream; it does not close w.
func NewWriter(w io.Writer) (*Writer, error) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, err
	}
	return &Writer{zw: zw}, nil
}

// Write appends one image.
func (w *Writer) Write(id string, b pixel.Buffer) error {
	if len(id) > math.MaxUint16 {
		return fmt.Errorf("bundle: identifier too long (%d bytes)", len(id))
	}
	if b.Width < 0 || b.Height < 0 || b.Bands < 0 {
		return fmt.Errorf("bundle: negative dimensions %dx%dx%d", b.Width, b.Height, b.Bands)
	}
	if len(b.Samples) != b.Width*b.Height*b.Bands {
		return fmt.Errorf("bundle: %s has %d samples, want %dx%dx%d", id, len(b.Samples), b.Width, b.Height, b.Bands)
	}

	le := binary.LittleEndian
	buf := w.buf[:0]
	buf = le.AppendUint16(buf, uint16(len(id)))
	buf = append(buf, id...)
	buf = le.AppendUint32(buf, uint32(b.Width))
	buf = le.AppendUint32(buf, uint32(b.Height))
	buf = le.AppendUint32(buf, uint32(b.Bands))
	for _, s := range b.Samples {
		buf = le.AppendUint32(buf, math.Float32bits(s))
	}
	w.buf = buf

	_, err := w.zw.Write(buf)
	return err
}

// Close flushes the compressed stream.
func (w *Writer) Close() error {
	return w.zw.Close()
}

// Reader iterates over the images of a bundle.
type Reader struct {
	zr *zstd.Decoder
	r  *bufio.Reader
}

// NewReader returns a Reader decompressing r.
func NewReader(r io.Reader) (*Reader, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &Reader{zr: zr, r: bufio.NewReader(zr)}, nil
}

// Next returns the next image, or io.EOF after the last one. The declared
// dimensions are returned as stored; they are not checked against the
// sample count beyond the record framing.
func (r *Reader) Next() (string, pixel.Buffer, error) {
	le := binary.LittleEndian

	var lenBuf [2]byte
	if _, err := io.ReadFull(r.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return "", pixel.Buffer{}, io.EOF
		}
		return "", pixel.Buffer{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	head := make([]byte, int(le.Uint16(lenBuf[:]))+12)
	if _, err := io.ReadFull(r.r, head); err != nil {
		return "", pixel.Buffer{}, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	idLen := len(head) - 12
	id := string(head[:idLen])
	w := uint64(le.Uint32(head[idLen:]))
	h := uint64(le.Uint32(head[idLen+4:]))
	bands := uint64(le.Uint32(head[idLen+8:]))

	// w*h fits in uint64; the band multiply is only done once that is bounded.
	var n uint64
	if wh := w * h; wh <= MaxSamples && bands <= MaxSamples {
		n = wh * bands
	} else {
		n = MaxSamples + 1
	}
	if n > MaxSamples {
		return "", pixel.Buffer{}, fmt.Errorf("%w: %s declares %dx%dx%d samples", ErrCorrupt, id, w, h, bands)
	}

	raw := make([]byte, n*4)
	if _, err := io.ReadFull(r.r, raw); err != nil {
		return "", pixel.Buffer{}, fmt.Errorf("%w: samples of %s: %v", ErrCorrupt, id, err)
	}
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = math.Float32frombits(le.Uint32(raw[i*4:]))
	}
	return id, pixel.Buffer{Width: int(w), Height: int(h), Bands: int(bands), Samples: samples}, nil
}

// Close releases the decoder.
func (r *Reader) Close() {
	r.zr.Close()
}
