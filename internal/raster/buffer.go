package raster

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, initialized to -inf
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		ZBuf:   zbuf,
	}
}

// Clear fills the color buffer with bg and resets depth, so one buffer can be
// reused frame after frame.
func (fb *FrameBuffer) Clear(bg color.RGBA) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = bg.R
		fb.Color[i+1] = bg.G
		fb.Color[i+2] = bg.B
		fb.Color[i+3] = 0xff
	}
	inf := math.Inf(-1)
	for i := range fb.ZBuf {
		fb.ZBuf[i] = inf
	}
}

// Image views the color buffer as an *image.RGBA without copying.
func (fb *FrameBuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    fb.Color,
		Stride: fb.Width * 4,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}

// AddPixel adds c scaled by k to the pixel at (x, y), saturating at 255.
func (fb *FrameBuffer) AddPixel(x, y int, c color.RGBA, k float64) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height || k <= 0 {
		return
	}
	i := (y*fb.Width + x) * 4
	fb.Color[i] = clamp255(float64(fb.Color[i]) + float64(c.R)*k)
	fb.Color[i+1] = clamp255(float64(fb.Color[i+1]) + float64(c.G)*k)
	fb.Color[i+2] = clamp255(float64(fb.Color[i+2]) + float64(c.B)*k)
}

// At returns the color at (x, y).
func (fb *FrameBuffer) At(x, y int) color.RGBA {
	i := (y*fb.Width + x) * 4
	return color.RGBA{fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]}
}

// Depth returns the z-buffer value at (x, y).
func (fb *FrameBuffer) Depth(x, y int) float64 {
	return fb.ZBuf[y*fb.Width+x]
}

func clamp255(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
