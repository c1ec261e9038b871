package record

import (
	"fmt"
	"strings"
)

// FormatLine joins an identifier and an encoded text record into one output
// line (without the trailing newline).
func FormatLine(id string, rec []byte) (string, error) {
	if strings.ContainsAny(id, "\t\r\n") {
		return "", fmt.Errorf("identifier %q contains a tab or line break", id)
	}
	return id + "\t" + string(rec), nil
}

// ParseLine splits an output line into its identifier and record.
func ParseLine(line string) (id string, rec []byte, err error) {
	id, data, ok := strings.Cut(strings.TrimRight(line, "\r\n"), "\t")
	if !ok {
		return "", nil, fmt.Errorf("%w: no tab separator", ErrMalformed)
	}
	return id, []byte(data), nil
}
