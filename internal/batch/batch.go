// Package batch drives the per-image pipeline over a whole input set: it
// reads items from a Source, processes them on a bounded pool of workers and
// writes records to a Sink.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"hsv-hist/internal/pipeline"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

const progressEvery = 1000

// Run processes every item of src. Per-image failures are logged and
// counted in proc's stats; only input and sink errors (or ctx cancellation)
// end the run early.
func Run(ctx context.Context, src Source, proc *pipeline.Processor, sink Sink, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	dispatched := 0
	var readErr error
	for gctx.Err() == nil {
		item, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("failed to read input: %w", err)
			break
		}

		g.Go(func() error {
			return processItem(item, proc, sink)
		})

		dispatched++
		if dispatched%progressEvery == 0 {
			glog.Infof("Dispatched %d images (%s)", dispatched, proc.Stats().Snapshot())
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if readErr != nil {
		return readErr
	}
	return ctx.Err()
}

func processItem(item Item, proc *pipeline.Processor, sink Sink) error {
	buf, err := item.Load()
	if err != nil {
		proc.Stats().AddFailed()
		glog.Warningf("Failed to load %s: %v", item.ID, err)
		return nil
	}

	out, ok, err := proc.Process(pipeline.Input{ID: item.ID, Buffer: buf})
	if err != nil {
		glog.Warningf("Failed to process image: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	if err := sink.Write(out); err != nil {
		return fmt.Errorf("failed to write %s: %w", item.ID, err)
	}
	glog.V(2).Infof("Wrote %s", item.ID)
	return nil
}
