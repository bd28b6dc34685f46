package volume

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoders for image.Decode
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "golang.org/x/image/tiff"

	"medview/internal/fsutil"
	"medview/internal/logging"
)

var sliceExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// FileLoader reads volumes from disk. A directory is read as a stack of 2D
// slice images ordered by the number in each filename; a single image file
// becomes a one-slice volume.
type FileLoader struct {
	logger *logging.Logger
}

// NewFileLoader creates a loader; logger may be nil.
func NewFileLoader(logger *logging.Logger) *FileLoader {
	return &FileLoader{logger: logger}
}

// Load implements Loader.
func (l *FileLoader) Load(path string) (Array, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Array{}, err
	}

	var files []string
	if info.IsDir() {
		files, err = sliceFiles(path)
		if err != nil {
			return Array{}, err
		}
	} else {
		files = []string{path}
	}

	var (
		data          []float64
		width, height int
	)
	for i, file := range files {
		img, err := l.decode(file)
		if err != nil {
			return Array{}, fmt.Errorf("failed to load image %s: %w", filepath.Base(file), err)
		}

		bounds := img.Bounds()
		if i == 0 {
			width, height = bounds.Dx(), bounds.Dy()
			data = make([]float64, 0, len(files)*width*height)
		} else if bounds.Dx() != width || bounds.Dy() != height {
			return Array{}, fmt.Errorf("slice %s is %dx%d, expected %dx%d",
				filepath.Base(file), bounds.Dx(), bounds.Dy(), width, height)
		}
		data = appendGray(data, img)
	}

	l.logger.Debug("volume.loaded", "Volume loaded", map[string]interface{}{
		"path":   path,
		"slices": len(files),
		"width":  width,
		"height": height,
	})

	return NewArray(data, len(files), height, width)
}

func (l *FileLoader) decode(path string) (image.Image, error) {
	file, err := os.Open(filepath.Clean(path)) // #nosec G304 -- path supplied by the user on purpose
	if err != nil {
		return nil, err
	}
	defer fsutil.CloseWithError(file.Close, l.logger, path)

	img, _, err := image.Decode(file)
	return img, err
}

// sliceFiles lists the slice images in dir in acquisition order.
func sliceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if sliceExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no slice images found in %s", dir)
	}

	sort.Slice(names, func(i, j int) bool {
		ni, nj := extractNumber(names[i]), extractNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})

	files := make([]string, len(names))
	for i, name := range names {
		files[i] = filepath.Join(dir, name)
	}
	return files, nil
}

// extractNumber concatenates the digits of a filename; names without digits
// sort first.
func extractNumber(filename string) int {
	var digits strings.Builder
	for _, c := range filepath.Base(filename) {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return -1
	}
	return n
}

// appendGray appends img's pixels in row-major order as grey values in [0, 1].
func appendGray(dst []float64, img image.Image) []float64 {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			dst = append(dst, float64(g.Y)/65535.0)
		}
	}
	return dst
}
