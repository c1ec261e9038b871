package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"hsv-hist/internal/histogram"
)

// textRecord is the JSON shape of a text record. Data holds the entries as
// "row col value," triples.
type textRecord struct {
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Type  int    `json:"type"`
	Count int    `json:"count"`
	Data  string `json:"data"`
}

// Marshal encodes rec as a single-line JSON object.
func Marshal(rec Record) ([]byte, error) {
	var b strings.Builder
	b.Grow(len(rec.Entries) * 12)
	for _, e := range rec.Entries {
		b.WriteString(strconv.Itoa(e.Row))
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(e.Col))
		b.WriteByte(' ')
		b.WriteString(formatValue(e.Value, rec.Type))
		b.WriteByte(',')
	}
	return json.Marshal(textRecord{
		Rows:  rec.Rows,
		Cols:  rec.Cols,
		Type:  int(rec.Type),
		Count: len(rec.Entries),
		Data:  b.String(),
	})
}

// Unmarshal decodes a text record produced by Marshal. Entry order is not
// significant.
func Unmarshal(data []byte) (Record, error) {
	var tr textRecord
	if err := json.Unmarshal(data, &tr); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	rec := Record{Rows: tr.Rows, Cols: tr.Cols, Type: histogram.ElemType(tr.Type)}
	if !rec.Type.Valid() {
		return Record{}, fmt.Errorf("%w: type %d", ErrMalformed, tr.Type)
	}

	for _, item := range strings.Split(tr.Data, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fields := strings.Fields(item)
		if len(fields) != 3 {
			return Record{}, fmt.Errorf("%w: entry %q", ErrMalformed, item)
		}
		row, err := strconv.Atoi(fields[0])
		if err != nil {
			return Record{}, fmt.Errorf("%w: row in %q", ErrMalformed, item)
		}
		col, err := strconv.Atoi(fields[1])
		if err != nil {
			return Record{}, fmt.Errorf("%w: col in %q", ErrMalformed, item)
		}
		val, err := strconv.ParseFloat(fields[2], valueBits(rec.Type))
		if err != nil {
			return Record{}, fmt.Errorf("%w: value in %q", ErrMalformed, item)
		}
		rec.Entries = append(rec.Entries, Entry{Row: row, Col: col, Value: val})
	}

	if tr.Count != len(rec.Entries) {
		return Record{}, fmt.Errorf("%w: count %d but %d entries", ErrMalformed,
			tr.Count, len(rec.Entries))
	}
	return rec, nil
}

// EncodeText serializes h straight to its text form.
func EncodeText(h *histogram.Histogram) ([]byte, error) {
	return Marshal(Serialize(h))
}

// DecodeText parses a text record into a histogram.
func DecodeText(data []byte) (*histogram.Histogram, error) {
	rec, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return Deserialize(rec)
}

// formatValue writes the shortest text that parses back to the same value at
// the precision of t.
func formatValue(v float64, t histogram.ElemType) string {
	if !t.IsFloat() {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, valueBits(t))
}

func valueBits(t histogram.ElemType) int {
	if t == histogram.Float32 {
		return 32
	}
	return 64
}
