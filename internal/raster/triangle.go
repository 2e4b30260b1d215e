package raster

import (
	"image/color"
	"math"
)

// Vertex is a projected point: screen x, y and depth (larger = nearer).
type Vertex struct {
	X, Y, Z float64
}

// FillTriangle rasterizes a flat-colored triangle with z-buffering. Colors with
// alpha below 255 are blended over what is already there and still write depth.
//
// Hot path: no allocations in the pixel loop.
func FillTriangle(fb *FrameBuffer, v [3]Vertex, c color.RGBA) {
	x0, y0, z0 := v[0].X, v[0].Y, v[0].Z
	x1, y1, z1 := v[1].X, v[1].Y, v[1].Z
	x2, y2, z2 := v[2].X, v[2].Y, v[2].Z

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	alpha := float64(c.A) / 255
	opaque := c.A == 0xff

	for sy := minY; sy <= maxY; sy++ {
		// Sample at pixel centers
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			if opaque {
				fb.Color[pxIdx] = c.R
				fb.Color[pxIdx+1] = c.G
				fb.Color[pxIdx+2] = c.B
			} else {
				fb.Color[pxIdx] = clamp255(float64(fb.Color[pxIdx])*(1-alpha) + float64(c.R)*alpha)
				fb.Color[pxIdx+1] = clamp255(float64(fb.Color[pxIdx+1])*(1-alpha) + float64(c.G)*alpha)
				fb.Color[pxIdx+2] = clamp255(float64(fb.Color[pxIdx+2])*(1-alpha) + float64(c.B)*alpha)
			}
			fb.Color[pxIdx+3] = 0xff
		}
	}
}

// FillQuad splits a convex quad a-b-c-d into two triangles.
func FillQuad(fb *FrameBuffer, q [4]Vertex, c color.RGBA) {
	FillTriangle(fb, [3]Vertex{q[0], q[1], q[2]}, c)
	FillTriangle(fb, [3]Vertex{q[0], q[2], q[3]}, c)
}

// DrawGlow adds a soft radial sprite centered at (cx, cy). With depthTest set,
// pixels where something nearer than z was drawn are skipped.
func DrawGlow(fb *FrameBuffer, cx, cy, z, radius float64, c color.RGBA, intensity float64, depthTest bool) {
	if radius <= 0 || intensity <= 0 {
		return
	}
	minX := int(math.Floor(cx - radius))
	maxX := int(math.Ceil(cx + radius))
	minY := int(math.Floor(cy - radius))
	maxY := int(math.Ceil(cy + radius))
	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}

	invR := 1 / radius
	for sy := minY; sy <= maxY; sy++ {
		dy := (float64(sy) + 0.5 - cy) * invR
		for sx := minX; sx <= maxX; sx++ {
			dx := (float64(sx) + 0.5 - cx) * invR
			d2 := dx*dx + dy*dy
			if d2 >= 1 {
				continue
			}
			if depthTest && fb.ZBuf[sy*fb.Width+sx] > z {
				continue
			}
			f := 1 - math.Sqrt(d2)
			fb.AddPixel(sx, sy, c, f*f*intensity)
		}
	}
}
