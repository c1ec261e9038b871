package batch

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hsv-hist/internal/config"
	"hsv-hist/internal/pipeline"
	"hsv-hist/internal/record"

	"github.com/klauspost/compress/zstd"
)

// Sink receives the records of processed images. Implementations are safe
// for concurrent use.
type Sink interface {
	Write(out pipeline.Output) error
	Close() error
}

// OutputName returns the file name used when the output is a directory,
// stamped with the run's start time.
func OutputName(format, compress string, start time.Time) string {
	name := "histogram-" + start.Format("2006-01-02_15-04-05")
	if format == config.FormatBinary {
		name += ".bin"
	} else {
		name += ".txt"
	}
	if compress == config.CompressZstd {
		name += ".zst"
	}
	return name
}

// OpenSink creates the output for a run. "-" writes to stdout; an existing
// directory gets a time-stamped file. The returned string is the path
// written to.
func OpenSink(path, format, compress string, start time.Time) (Sink, string, error) {
	var w io.Writer
	var closers []io.Closer

	if path == "-" {
		w = os.Stdout
	} else {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, OutputName(format, compress, start))
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create output: %w", err)
		}
		w = f
		closers = append(closers, f)
	}

	if compress == config.CompressZstd {
		zw, err := zstd.NewWriter(w)
		if err != nil {
			closeAll(closers)
			return nil, "", fmt.Errorf("failed to start zstd: %w", err)
		}
		w = zw
		closers = append([]io.Closer{zw}, closers...)
	}

	if format == config.FormatBinary {
		return newBinarySink(w, closers...), path, nil
	}
	return newTextSink(w, closers...), path, nil
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type writerSink struct {
	mu      sync.Mutex
	bw      *bufio.Writer
	closers []io.Closer
	encode  func(bw *bufio.Writer, out pipeline.Output) error
}

func (s *writerSink) Write(out pipeline.Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encode(s.bw, out)
}

func (s *writerSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.bw.Flush()
	return errors.Join(err, closeAll(s.closers))
}

// NewTextSink writes one "id<TAB>record" line per image to w.
func NewTextSink(w io.Writer) Sink { return newTextSink(w) }

func newTextSink(w io.Writer, closers ...io.Closer) *writerSink {
	return &writerSink{
		bw:      bufio.NewWriter(w),
		closers: closers,
		encode: func(bw *bufio.Writer, out pipeline.Output) error {
			rec, err := record.Marshal(out.Record)
			if err != nil {
				return err
			}
			line, err := record.FormatLine(out.ID, rec)
			if err != nil {
				return err
			}
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			return bw.WriteByte('\n')
		},
	}
}

// NewBinarySink writes length-prefixed frames to w:
// uint16 idLen, id, uint32 recLen, binary record.
func NewBinarySink(w io.Writer) Sink { return newBinarySink(w) }

func newBinarySink(w io.Writer, closers ...io.Closer) *writerSink {
	return &writerSink{
		bw:      bufio.NewWriter(w),
		closers: closers,
		encode: func(bw *bufio.Writer, out pipeline.Output) error {
			if len(out.ID) > math.MaxUint16 {
				return fmt.Errorf("identifier too long (%d bytes)", len(out.ID))
			}
			rec := record.MarshalBinary(out.Histogram)
			var head [2]byte
			binary.LittleEndian.PutUint16(head[:], uint16(len(out.ID)))
			bw.Write(head[:])
			bw.WriteString(out.ID)
			var n [4]byte
			binary.LittleEndian.PutUint32(n[:], uint32(len(rec)))
			bw.Write(n[:])
			_, err := bw.Write(rec)
			return err
		},
	}
}

// ReadFrame reads one frame written by a binary sink. It returns io.EOF
// when r is exhausted.
func ReadFrame(r io.Reader) (string, []byte, error) {
	var head [2]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return "", nil, err
	}
	id := make([]byte, binary.LittleEndian.Uint16(head[:]))
	if _, err := io.ReadFull(r, id); err != nil {
		return "", nil, fmt.Errorf("truncated frame: %w", err)
	}
	var n [4]byte
	if _, err := io.ReadFull(r, n[:]); err != nil {
		return "", nil, fmt.Errorf("truncated frame: %w", err)
	}
	rec := make([]byte, binary.LittleEndian.Uint32(n[:]))
	if _, err := io.ReadFull(r, rec); err != nil {
		return "", nil, fmt.Errorf("truncated frame: %w", err)
	}
	return string(id), rec, nil
}
