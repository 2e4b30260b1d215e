package source

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ftrvxmtrx/tga"
)

type codec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

// tga registers itself with an empty magic string and would claim every file
// passed to image.Decode, so the decoder is picked by extension.
var codecs = map[string]codec{
	".jpg":  {jpeg.Decode, jpeg.DecodeConfig},
	".jpeg": {jpeg.Decode, jpeg.DecodeConfig},
	".png":  {png.Decode, png.DecodeConfig},
	".tga":  {tga.Decode, tga.DecodeConfig},
}

func codecFor(path string) (codec, error) {
	c, ok := codecs[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return codec{}, fmt.Errorf("unsupported image format: %s", path)
	}
	return c, nil
}

type ImageSource struct {
	paths []string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && isImage(entry.Name()) {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	return &ImageSource{paths: paths}, nil
}

func isImage(name string) bool {
	_, ok := codecs[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (s *ImageSource) PageCount() int {
	return len(s.paths)
}

func (s *ImageSource) page(index int) (string, error) {
	if index < 0 || index >= len(s.paths) {
		return "", fmt.Errorf("page %d out of range [0,%d)", index, len(s.paths))
	}
	return s.paths[index], nil
}

func (s *ImageSource) GetPageDimensions(index int) (float64, float64, error) {
	path, err := s.page(index)
	if err != nil {
		return 0, 0, err
	}
	c, err := codecFor(path)
	if err != nil {
		return 0, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	img, err := c.decodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return float64(img.Width), float64(img.Height), nil
}

// RenderPage decodes the image; dpi only matters for vector sources.
func (s *ImageSource) RenderPage(index int, dpi int) (image.Image, error) {
	path, err := s.page(index)
	if err != nil {
		return nil, err
	}
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := c.decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}
