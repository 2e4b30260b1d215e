package analyzer

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ContrastDetector finds artwork with a Sobel pass over a downscaled copy of
// the page, grows the edges and collects connected components.
type ContrastDetector struct {
	MaxSide       int     // Working resolution (longest side, px)
	MinArea       int     // Minimum region area at working resolution
	EdgeThreshold float64 // Gradient magnitude threshold
	Grow          int     // Dilation radius in working pixels
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MaxSide:       256,
		MinArea:       40,
		EdgeThreshold: 30.0,
		Grow:          2,
	}
}

// Detect returns regions in the coordinates of img.
func (d *ContrastDetector) Detect(img image.Image) ([]Region, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, nil
	}

	gray, scale := d.workingCopy(img)
	edges := sobel(gray, d.EdgeThreshold)
	grown := dilate(edges, d.Grow)

	var regions []Region
	for _, c := range components(grown) {
		if c.rect.Dx()*c.rect.Dy() < d.MinArea {
			continue
		}
		edgeCount := 0
		for y := c.rect.Min.Y; y < c.rect.Max.Y; y++ {
			row := edges.Pix[y*edges.Stride:]
			for x := c.rect.Min.X; x < c.rect.Max.X; x++ {
				if row[x] != 0 {
					edgeCount++
				}
			}
		}
		r := image.Rect(
			b.Min.X+int(math.Floor(float64(c.rect.Min.X)*scale)),
			b.Min.Y+int(math.Floor(float64(c.rect.Min.Y)*scale)),
			b.Min.X+int(math.Ceil(float64(c.rect.Max.X)*scale)),
			b.Min.Y+int(math.Ceil(float64(c.rect.Max.Y)*scale)),
		).Intersect(b)
		regions = append(regions, Region{
			Rect:    r,
			Density: float64(edgeCount) / float64(c.rect.Dx()*c.rect.Dy()),
		})
	}
	return regions, nil
}

// workingCopy returns a gray image at origin (0,0) and the factor mapping its
// pixels back to img.
func (d *ContrastDetector) workingCopy(img image.Image) (*image.Gray, float64) {
	b := img.Bounds()
	side := max(b.Dx(), b.Dy())
	scale := 1.0
	w, h := b.Dx(), b.Dy()
	if d.MaxSide > 0 && side > d.MaxSide {
		scale = float64(side) / float64(d.MaxSide)
		w = max(1, int(float64(b.Dx())/scale))
		h = max(1, int(float64(b.Dy())/scale))
		scale = float64(b.Dx()) / float64(w)
	}
	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, b, draw.Src, nil)
	return gray, scale
}

func sobel(gray *image.Gray, threshold float64) *image.Gray {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	edges := image.NewGray(gray.Rect)
	at := func(x, y int) float64 { return float64(gray.Pix[y*gray.Stride+x]) }

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			if math.Hypot(gx, gy) > threshold {
				edges.Pix[y*edges.Stride+x] = 255
			}
		}
	}
	return edges
}

// dilate grows every set pixel into a (2r+1)² square.
func dilate(img *image.Gray, r int) *image.Gray {
	if r <= 0 {
		return img
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := image.NewGray(img.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.Pix[y*img.Stride+x] == 0 {
				continue
			}
			for yy := max(0, y-r); yy <= min(h-1, y+r); yy++ {
				row := out.Pix[yy*out.Stride:]
				for xx := max(0, x-r); xx <= min(w-1, x+r); xx++ {
					row[xx] = 255
				}
			}
		}
	}
	return out
}

type component struct {
	rect image.Rectangle
}

// components labels 4-connected set pixels and returns their bounds.
func components(img *image.Gray) []component {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	visited := make([]bool, w*h)
	var out []component
	var stack []image.Point

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.Pix[y*img.Stride+x] == 0 || visited[y*w+x] {
				continue
			}
			r := image.Rect(x, y, x+1, y+1)
			stack = append(stack[:0], image.Pt(x, y))
			visited[y*w+x] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
				for _, n := range [4]image.Point{{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1}} {
					if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h {
						continue
					}
					i := n.Y*w + n.X
					if visited[i] || img.Pix[n.Y*img.Stride+n.X] == 0 {
						continue
					}
					visited[i] = true
					stack = append(stack, n)
				}
			}
			out = append(out, component{rect: r})
		}
	}
	return out
}
