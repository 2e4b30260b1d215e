package raster

import (
	"math"

	"github.com/ivlev/discoscene/internal/camera"
	"github.com/ivlev/discoscene/internal/mathutil"
)

const (
	DefaultFOV = 75.0 // degrees, vertical
	nearPlane  = 0.1
	farPlane   = 1000.0
)

// Camera projects world points onto a Width×Height raster. It satisfies
// scene.Projector so input routing hits exactly what was drawn.
type Camera struct {
	Eye      mathutil.Vec3
	Width    int
	Height   int
	FOV      float64
	viewProj mathutil.Mat4
	focal    float64 // pixels per world unit at distance 1
}

// NewCamera builds the perspective camera for a camera state.
func NewCamera(st camera.State, width, height int, fovDeg float64) Camera {
	if fovDeg <= 0 {
		fovDeg = DefaultFOV
	}
	aspect := float64(width) / float64(height)
	fov := mathutil.Deg2Rad(fovDeg)
	eye := st.Position()
	view := mathutil.LookAt(eye, st.Target, mathutil.Vec3{0, 1, 0})
	proj := mathutil.Perspective(fov, aspect, nearPlane, farPlane)
	return Camera{
		Eye:      eye,
		Width:    width,
		Height:   height,
		FOV:      fovDeg,
		viewProj: mathutil.Mat4Mul(proj, view),
		focal:    float64(height) / 2 / math.Tan(fov/2),
	}
}

// Scaled returns the same camera on a raster k times larger.
func (c Camera) Scaled(k int) Camera {
	c.Width *= k
	c.Height *= k
	c.focal *= float64(k)
	return c
}

// ProjectDepth returns screen coordinates and a depth value where larger means
// nearer, matching the z-buffer convention. ok is false behind the near plane.
func (c Camera) ProjectDepth(p mathutil.Vec3) (x, y, z float64, ok bool) {
	clip, w := c.viewProj.MulPoint(p)
	if w < nearPlane {
		return 0, 0, 0, false
	}
	x = (clip[0]/w + 1) * 0.5 * float64(c.Width)
	y = (1 - clip[1]/w) * 0.5 * float64(c.Height)
	return x, y, -w, true
}

func (c Camera) Project(p mathutil.Vec3) (x, y float64, ok bool) {
	x, y, _, ok = c.ProjectDepth(p)
	return x, y, ok
}

// PixelSize converts a world-space size at the given depth into pixels.
func (c Camera) PixelSize(size, depth float64) float64 {
	d := -depth
	if d < nearPlane {
		d = nearPlane
	}
	return size * c.focal / d
}
