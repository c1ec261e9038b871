// Command histextract computes a normalized hue-saturation histogram for
// every image of a directory or raw image bundle and writes one record per
// image.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hsv-hist/internal/batch"
	"hsv-hist/internal/config"
	"hsv-hist/internal/native"
	"hsv-hist/internal/pipeline"
	"hsv-hist/internal/version"

	"github.com/golang/glog"
)

var (
	flagConfig   = flag.String("config", "", "Path to a TOML or YAML config file")
	flagInput    = flag.String("input", "", "Image directory, single image, or .bundle file")
	flagOutput   = flag.String("output", "", "Output file or directory (\"-\" for stdout)")
	flagWorkers  = flag.Int("workers", 0, "Number of parallel workers (0 = one per CPU)")
	flagBackend  = flag.String("backend", "", "Histogram backend: go or opencv")
	flagDownsize = flag.Int("downsize", 0, "Downsize images by this factor before processing")
	flagCompress = flag.String("compress", "", "Output compression: none or zstd")
	flagFormat   = flag.String("format", "", "Record format: text or binary")
	flagVersion  = flag.Bool("version", false, "Print version and exit")
)

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on the command line.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *flagConfig != "" {
		var err error
		if cfg, err = config.Load(*flagConfig); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *flagInput
		case "output":
			cfg.Output = *flagOutput
		case "workers":
			cfg.Workers = *flagWorkers
		case "backend":
			cfg.Backend = *flagBackend
		case "downsize":
			cfg.DownsizeFactor = *flagDownsize
		case "compress":
			cfg.Compress = *flagCompress
		case "format":
			cfg.Format = *flagFormat
		}
	})

	if cfg.Input == "" {
		return cfg, fmt.Errorf("%w: no input given", config.ErrInvalid)
	}
	return cfg, cfg.Validate()
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: histextract -input <dir|image|file.bundle> [-output <path>] [flags]\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	defer glog.Flush()

	if *flagVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		flag.Usage()
		glog.Exitf("Bad configuration: %v", err)
	}
	glog.Infof("Starting %s", version.String())

	backend, err := pipeline.NewBackend(cfg.Backend)
	if err != nil {
		if errors.Is(err, native.ErrUnavailable) {
			glog.Exitf("Native library not available: %v", err)
		}
		glog.Exitf("Failed to select backend: %v", err)
	}
	spec, err := cfg.Spec()
	if err != nil {
		glog.Exitf("Bad histogram settings: %v", err)
	}

	start := time.Now()
	src, err := batch.OpenSource(cfg.Input, cfg.DownsizeFactor)
	if err != nil {
		glog.Exitf("%v", err)
	}
	defer src.Close()

	sink, outPath, err := batch.OpenSink(cfg.Output, cfg.Format, cfg.Compress, start)
	if err != nil {
		glog.Exitf("%v", err)
	}
	glog.Infof("Reading %s, writing %s (%s backend, %d workers)",
		cfg.Input, outPath, backend.Name(), cfg.WorkerCount())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := pipeline.NewProcessor(backend, spec)
	runErr := batch.Run(ctx, src, proc, sink, cfg.WorkerCount())
	closeErr := sink.Close()

	glog.Infof("Done in %s: %s", time.Since(start).Round(time.Millisecond), proc.Stats().Snapshot())
	if runErr != nil {
		glog.Exitf("Run failed: %v", runErr)
	}
	if closeErr != nil {
		glog.Exitf("Failed to close output: %v", closeErr)
	}
}
