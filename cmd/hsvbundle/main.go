// Command hsvbundle packs a directory of images into a raw image bundle
// that histextract can read without decoding each file again.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"hsv-hist/internal/batch"
	"hsv-hist/internal/bundle"

	"github.com/golang/glog"
)

func main() {
	input := flag.String("input", "", "Directory of images")
	output := flag.String("output", "", "Bundle file to create")
	downsize := flag.Int("downsize", 1, "Downsize images by this factor before packing")
	flag.Parse()
	defer glog.Flush()

	if *input == "" || *output == "" {
		fmt.Println("Usage: hsvbundle -input <dir> -output <file.bundle> [-downsize 1]")
		os.Exit(1)
	}

	src, err := batch.NewDirSource(*input, *downsize)
	if err != nil {
		glog.Exitf("%v", err)
	}
	f, err := os.Create(*output)
	if err != nil {
		glog.Exitf("Failed to create bundle: %v", err)
	}
	w, err := bundle.NewWriter(f)
	if err != nil {
		glog.Exitf("Failed to start bundle: %v", err)
	}

	packed, failed := 0, 0
	for {
		item, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		buf, err := item.Load()
		if err != nil {
			glog.Warningf("Failed to load %s: %v", item.ID, err)
			failed++
			continue
		}
		if err := w.Write(item.ID, buf); err != nil {
			glog.Exitf("Failed to write %s: %v", item.ID, err)
		}
		packed++
	}

	if err := w.Close(); err != nil {
		glog.Exitf("Failed to finish bundle: %v", err)
	}
	if err := f.Close(); err != nil {
		glog.Exitf("Failed to close bundle: %v", err)
	}
	glog.Infof("Packed %d of %d images into %s (%d failed)", packed, src.Len(), *output, failed)
}
