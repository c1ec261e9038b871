package batch

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"hsv-hist/internal/pixel"

	"github.com/mrjoshuak/go-jpeg2000"
	_ "github.com/xfmoulet/qoi"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageExtensions lists the file extensions LoadImage understands.
var ImageExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff", ".bmp", ".webp", ".qoi",
	".jp2", ".j2k", ".j2c", ".jpc",
}

func isJPEG2000(ext string) bool {
	switch ext {
	case ".jp2", ".j2k", ".j2c", ".jpc":
		return true
	}
	return false
}

// LoadImage decodes the image at path, optionally downsizes it by factor and
// flattens it to a [0,1] sample buffer.
func LoadImage(path string, factor int) (pixel.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return pixel.Buffer{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	var img image.Image
	if isJPEG2000(strings.ToLower(filepath.Ext(path))) {
		img, err = jpeg2000.Decode(file)
	} else {
		img, _, err = image.Decode(file)
	}
	if err != nil {
		return pixel.Buffer{}, fmt.Errorf("failed to decode image: %w", err)
	}

	return pixel.FromImage(pixel.Downsize(img, factor)), nil
}
