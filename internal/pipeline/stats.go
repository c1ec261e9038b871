package pipeline

import (
	"fmt"
	"sync/atomic"
)

// Stats counts per-image outcomes. It is safe for concurrent use.
type Stats struct {
	processed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// Counts is a point-in-time copy of Stats.
type Counts struct {
	Processed int64
	Skipped   int64
	Failed    int64
}

// AddFailed records an image that could not be processed.
func (s *Stats) AddFailed() { s.failed.Add(1) }

// Snapshot returns the current counts.
func (s *Stats) Snapshot() Counts {
	return Counts{
		Processed: s.processed.Load(),
		Skipped:   s.skipped.Load(),
		Failed:    s.failed.Load(),
	}
}

// Total returns the number of images seen.
func (c Counts) Total() int64 { return c.Processed + c.Skipped + c.Failed }

func (c Counts) String() string {
	return fmt.Sprintf("%d processed, %d skipped, %d failed", c.Processed, c.Skipped, c.Failed)
}
