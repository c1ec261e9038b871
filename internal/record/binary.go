package record

import (
	"encoding/binary"
	"fmt"
	"math"

	"hsv-hist/internal/histogram"
)

// Binary layout, little-endian:
//
//	magic   [4]byte "HSVH"
//	version uint8
//	type    uint8   element type code
//	rows    uint32
//	cols    uint32
//	cells   rows*cols values, row-major, each in the element type's width
//
// Coordinates are implied by position.
const (
	binaryMagic      = "HSVH"
	binaryVersion    = 1
	binaryHeaderSize = 4 + 1 + 1 + 4 + 4
)

// MarshalBinary encodes h in the compact binary layout.
func MarshalBinary(h *histogram.Histogram) []byte {
	elem := h.Elem()
	rows, cols := h.Rows(), h.Cols()
	size := elem.Bits() / 8

	buf := make([]byte, binaryHeaderSize, binaryHeaderSize+rows*cols*size)
	copy(buf, binaryMagic)
	buf[4] = binaryVersion
	buf[5] = byte(elem)
	binary.LittleEndian.PutUint32(buf[6:], uint32(rows))
	binary.LittleEndian.PutUint32(buf[10:], uint32(cols))

	le := binary.LittleEndian
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := h.At(r, c)
			switch elem {
			case histogram.Uint8:
				buf = append(buf, uint8(v))
			case histogram.Int8:
				buf = append(buf, byte(int8(v)))
			case histogram.Uint16:
				buf = le.AppendUint16(buf, uint16(v))
			case histogram.Int16:
				buf = le.AppendUint16(buf, uint16(int16(v)))
			case histogram.Int32:
				buf = le.AppendUint32(buf, uint32(int32(v)))
			case histogram.Float32:
				buf = le.AppendUint32(buf, math.Float32bits(float32(v)))
			default:
				buf = le.AppendUint64(buf, math.Float64bits(v))
			}
		}
	}
	return buf
}

// UnmarshalBinary decodes a histogram produced by MarshalBinary.
func UnmarshalBinary(data []byte) (*histogram.Histogram, error) {
	if len(data) < binaryHeaderSize || string(data[:4]) != binaryMagic {
		return nil, fmt.Errorf("%w: bad binary header", ErrMalformed)
	}
	if data[4] != binaryVersion {
		return nil, fmt.Errorf("%w: binary version %d", ErrMalformed, data[4])
	}
	elem := histogram.ElemType(data[5])
	if !elem.Valid() {
		return nil, fmt.Errorf("%w: type %d", ErrMalformed, data[5])
	}
	le := binary.LittleEndian
	rows := int(le.Uint32(data[6:]))
	cols := int(le.Uint32(data[10:]))
	size := elem.Bits() / 8

	body := data[binaryHeaderSize:]
	cells := len(body) / size
	if rows < 1 || cols < 1 || len(body)%size != 0 || cells%cols != 0 || cells/cols != rows {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d %s grid", ErrMalformed,
			len(body), rows, cols, elem)
	}

	h, err := histogram.New(rows, cols, elem)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i := 0; i < cells; i++ {
		b := body[i*size:]
		var v float64
		switch elem {
		case histogram.Uint8:
			v = float64(b[0])
		case histogram.Int8:
			v = float64(int8(b[0]))
		case histogram.Uint16:
			v = float64(le.Uint16(b))
		case histogram.Int16:
			v = float64(int16(le.Uint16(b)))
		case histogram.Int32:
			v = float64(int32(le.Uint32(b)))
		case histogram.Float32:
			v = float64(math.Float32frombits(le.Uint32(b)))
		default:
			v = math.Float64frombits(le.Uint64(b))
		}
		h.Set(i/cols, i%cols, v)
	}
	return h, nil
}
