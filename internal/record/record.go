// Package record serializes histograms into self-describing records.
//
// A Record lists every cell exactly once in row-major order, each entry
// carrying its own (row, col) coordinates. Deserialize places cells by those
// coordinates, so a reordered record decodes to the same histogram.
package record

import (
	"errors"
	"fmt"
	"math"

	"hsv-hist/internal/histogram"
)

// ErrMalformed is returned for records that do not describe a complete grid.
var ErrMalformed = errors.New("malformed record")

// Entry is one histogram cell.
type Entry struct {
	Row   int
	Col   int
	Value float64
}

// Record is the serialized form of a histogram.
type Record struct {
	Rows    int
	Cols    int
	Type    histogram.ElemType
	Entries []Entry
}

// Serialize flattens h in row-major order.
func Serialize(h *histogram.Histogram) Record {
	rows, cols := h.Rows(), h.Cols()
	entries := make([]Entry, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			entries = append(entries, Entry{Row: r, Col: c, Value: h.At(r, c)})
		}
	}
	return Record{Rows: rows, Cols: cols, Type: h.Elem(), Entries: entries}
}

// Deserialize rebuilds the histogram described by rec.
func Deserialize(rec Record) (*histogram.Histogram, error) {
	if rec.Rows < 1 || rec.Cols < 1 {
		return nil, fmt.Errorf("%w: shape %dx%d", ErrMalformed, rec.Rows, rec.Cols)
	}
	if !rec.Type.Valid() {
		return nil, fmt.Errorf("%w: type %d", ErrMalformed, int(rec.Type))
	}
	if rec.Cols > math.MaxInt/rec.Rows {
		return nil, fmt.Errorf("%w: shape %dx%d too large", ErrMalformed, rec.Rows, rec.Cols)
	}
	if n := rec.Rows * rec.Cols; len(rec.Entries) != n {
		return nil, fmt.Errorf("%w: %d entries for %dx%d grid", ErrMalformed,
			len(rec.Entries), rec.Rows, rec.Cols)
	}

	h, err := histogram.New(rec.Rows, rec.Cols, rec.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	seen := make([]bool, rec.Rows*rec.Cols)
	for _, e := range rec.Entries {
		if e.Row < 0 || e.Row >= rec.Rows || e.Col < 0 || e.Col >= rec.Cols {
			return nil, fmt.Errorf("%w: cell (%d, %d) outside %dx%d grid", ErrMalformed,
				e.Row, e.Col, rec.Rows, rec.Cols)
		}
		idx := e.Row*rec.Cols + e.Col
		if seen[idx] {
			return nil, fmt.Errorf("%w: duplicate cell (%d, %d)", ErrMalformed, e.Row, e.Col)
		}
		seen[idx] = true
		h.Set(e.Row, e.Col, e.Value)
	}
	return h, nil
}
