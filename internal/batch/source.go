package batch

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hsv-hist/internal/bundle"
	"hsv-hist/internal/pixel"

	"github.com/samber/lo"
)

// BundleExtension marks raw image bundle files.
const BundleExtension = ".bundle"

// Item is one input image. Load is called from a worker goroutine, so
// decoding happens in parallel.
type Item struct {
	ID   string
	Load func() (pixel.Buffer, error)
}

// Source yields input items until it returns io.EOF.
type Source interface {
	Next() (Item, error)
	Close() error
}

// OpenSource opens a directory of image files or a raw image bundle.
func OpenSource(path string, downsize int) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	if info.IsDir() {
		return NewDirSource(path, downsize)
	}
	if strings.EqualFold(filepath.Ext(path), BundleExtension) {
		return OpenBundleSource(path)
	}
	return &DirSource{root: filepath.Dir(path), files: []string{filepath.Base(path)}, downsize: downsize}, nil
}

// DirSource lists the image files under a directory tree. Identifiers are
// slash-separated paths relative to the root.
type DirSource struct {
	root     string
	files    []string
	next     int
	downsize int
}

// NewDirSource walks root for files with a known image extension.
func NewDirSource(root string, downsize int) (*DirSource, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	files = lo.Filter(files, func(f string, _ int) bool {
		return lo.Contains(ImageExtensions, strings.ToLower(filepath.Ext(f)))
	})
	sort.Strings(files)
	return &DirSource{root: root, files: files, downsize: downsize}, nil
}

// Len returns the number of images found.
func (s *DirSource) Len() int { return len(s.files) }

// Next returns the next image file.
func (s *DirSource) Next() (Item, error) {
	if s.next >= len(s.files) {
		return Item{}, io.EOF
	}
	rel := s.files[s.next]
	s.next++
	path := filepath.Join(s.root, rel)
	factor := s.downsize
	return Item{
		ID:   filepath.ToSlash(rel),
		Load: func() (pixel.Buffer, error) { return LoadImage(path, factor) },
	}, nil
}

// Close is a no-op.
func (s *DirSource) Close() error { return nil }

// BundleSource reads images from a raw image bundle. Images are decoded on
// the reading goroutine; Load only hands the buffer over.
type BundleSource struct {
	file *os.File
	r    *bundle.Reader
}

// OpenBundleSource opens a bundle file.
func OpenBundleSource(path string) (*BundleSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	r, err := bundle.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	return &BundleSource{file: f, r: r}, nil
}

// Next returns the next bundled image.
func (s *BundleSource) Next() (Item, error) {
	id, buf, err := s.r.Next()
	if err != nil {
		return Item{}, err
	}
	return Item{ID: id, Load: func() (pixel.Buffer, error) { return buf, nil }}, nil
}

// Close releases the bundle file.
func (s *BundleSource) Close() error {
	s.r.Close()
	return s.file.Close()
}
