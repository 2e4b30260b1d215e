// Package raster is a small z-buffered software renderer for scene states.
package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/ivlev/discoscene/internal/atmosphere"
	"github.com/ivlev/discoscene/internal/carousel"
	"github.com/ivlev/discoscene/internal/mathutil"
	"github.com/ivlev/discoscene/internal/scene"
)

var (
	ballColor     = color.RGBA{0xc8, 0xc8, 0xd2, 0xff}
	stringColor   = color.RGBA{0x55, 0x55, 0x60, 0xff}
	particleColor = color.RGBA{0xff, 0xff, 0xff, 0xff}
	labelColor    = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Renderer draws scene states. It holds only read-only configuration, so one
// Renderer can serve many goroutines; each call works on its own FrameBuffer.
type Renderer struct {
	Width       int
	Height      int
	Supersample int
	FOV         float64
	Lights      LightConfig
	Ball        *BallAsset
	Field       *atmosphere.Field
	Backdrop    image.Image // optional flyer behind the scene
	BackdropDim float64     // 0..1 brightness of the backdrop
}

// NewRenderer returns a renderer with the site's lighting.
func NewRenderer(width, height, supersample int, ball *BallAsset, field *atmosphere.Field) *Renderer {
	if supersample < 1 {
		supersample = 1
	}
	return &Renderer{
		Width:       width,
		Height:      height,
		Supersample: supersample,
		FOV:         DefaultFOV,
		Lights:      DefaultLightConfig(),
		Ball:        ball,
		Field:       field,
		BackdropDim: 0.25,
	}
}

// Camera is the output-resolution camera for st. Input routing uses it.
func (r *Renderer) Camera(st scene.SceneState) Camera {
	return NewCamera(st.Camera, r.Width, r.Height, r.FOV)
}

// NewBuffer allocates a buffer matching the internal render size.
func (r *Renderer) NewBuffer() *FrameBuffer {
	return NewFrameBuffer(r.Width*r.Supersample, r.Height*r.Supersample)
}

// Render draws st into fb and resolves it into dst (Width×Height).
func (r *Renderer) Render(st scene.SceneState, fb *FrameBuffer, dst *image.RGBA) {
	cam := r.Camera(st).Scaled(r.Supersample)
	fb.Clear(r.Lights.Background)

	r.drawBackdrop(fb)
	r.drawAtmosphere(fb, cam, st)

	lights := r.pointLights(st)
	r.drawString(fb, cam, st)
	r.drawBall(fb, cam, st, lights)
	r.drawCards(fb, cam, st)
	r.drawLights(fb, cam, st)

	if r.Supersample == 1 {
		draw.Copy(dst, image.Point{}, fb.Image(), fb.Image().Bounds(), draw.Src, nil)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), fb.Image(), fb.Image().Bounds(), draw.Src, nil)
	}

	r.drawLabels(dst, r.Camera(st), st)
}

func (r *Renderer) pointLights(st scene.SceneState) []PointLight {
	out := make([]PointLight, 0, len(st.Lights)+len(r.Lights.Spots))
	for _, l := range st.Lights {
		out = append(out, PointLight{
			Position:  l.Position,
			Color:     l.Color,
			Intensity: r.Lights.OrbitLight,
			Distance:  r.Lights.OrbitReach,
		})
	}
	return append(out, r.Lights.Spots...)
}

func (r *Renderer) drawBackdrop(fb *FrameBuffer) {
	if r.Backdrop == nil || r.BackdropDim <= 0 {
		return
	}
	// Fit the flyer to the frame height, centered.
	b := r.Backdrop.Bounds()
	h := fb.Height
	w := int(float64(b.Dx()) * float64(h) / float64(b.Dy()))
	x0 := (fb.Width - w) / 2
	rect := image.Rect(x0, 0, x0+w, h)
	alpha := uint8(r.BackdropDim * 255)
	mask := image.NewUniform(color.Alpha{A: alpha})
	draw.ApproxBiLinear.Scale(fb.Image(), rect, r.Backdrop, b, draw.Over, &draw.Options{SrcMask: mask})
}

func (r *Renderer) drawAtmosphere(fb *FrameBuffer, cam Camera, st scene.SceneState) {
	if r.Field == nil {
		return
	}
	snap := st.Atmosphere
	fog := r.Lights.Fog

	// Bokeh layers, far first.
	for li := len(r.Field.Layers) - 1; li >= 0; li-- {
		layer := r.Field.Layers[li]
		for i, b := range layer {
			x, y, z, ok := cam.ProjectDepth(b.Position)
			if !ok {
				continue
			}
			op := b.Opacity
			if li < len(snap.Opacities) && i < len(snap.Opacities[li]) {
				op = snap.Opacities[li][i]
			}
			DrawGlow(fb, x, y, z, cam.PixelSize(b.Size, z), b.Color, op*0.35*(1-fog.Factor(-z)*0.5), false)
		}
	}

	// Particle field drifts as one rigid body around Y.
	for _, p := range r.Field.Particles {
		x, y, z, ok := cam.ProjectDepth(p.RotY(snap.DriftY))
		if !ok {
			continue
		}
		rad := math.Max(cam.PixelSize(0.05, z), float64(r.Supersample))
		DrawGlow(fb, x, y, z, rad, particleColor, 0.6*(1-fog.Factor(-z)), false)
	}

	for i, p := range snap.Ambient {
		x, y, z, ok := cam.ProjectDepth(p)
		if !ok {
			continue
		}
		c := atmosphere.Palette[i%len(atmosphere.Palette)]
		DrawGlow(fb, x, y, z, cam.PixelSize(3, z), c, 0.25, false)
	}
}

func (r *Renderer) drawString(fb *FrameBuffer, cam Camera, st scene.SceneState) {
	s := st.String
	if !s.Visible {
		return
	}
	// The string hangs from its anchor down to the top of the ball and swings
	// around the anchor by the sway angle.
	length := s.Position[1] - st.Ball.Position[1] - st.Ball.Scale
	if length <= 0 {
		return
	}
	sz, cz := math.Sincos(s.Rotation[2])
	down := mathutil.Vec3{sz, -cz, 0}
	const halfWidth = 0.015
	side := mathutil.Vec3{cz * halfWidth, sz * halfWidth, 0}
	top := s.Position
	bottom := top.Add(down.Scale(length))
	r.fillWorldQuad(fb, cam, [4]mathutil.Vec3{
		top.Sub(side), top.Add(side), bottom.Add(side), bottom.Sub(side),
	}, stringColor)
}

func (r *Renderer) drawBall(fb *FrameBuffer, cam Camera, st scene.SceneState, lights []PointLight) {
	if !st.Ball.Visible || r.Ball == nil {
		return
	}
	mesh := r.Ball.Mesh()
	if mesh == nil {
		return
	}
	t := st.Ball
	model := mathutil.RotYZ(t.Rotation[1], t.Rotation[2], t.Position)

	world := make([]mathutil.Vec3, len(mesh.Vertices))
	proj := make([]Vertex, len(mesh.Vertices))
	front := make([]bool, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		w, _ := model.MulPoint(v.Scale(t.Scale))
		world[i] = w
		x, y, z, ok := cam.ProjectDepth(w)
		proj[i] = Vertex{x, y, z}
		front[i] = ok
	}

	for _, f := range mesh.Faces {
		if !front[f[0]] || !front[f[1]] || !front[f[2]] {
			continue
		}
		a, b, c := world[f[0]], world[f[1]], world[f[2]]
		center := a.Add(b).Add(c).Scale(1.0 / 3)
		n, ok := center.Sub(t.Position).Unit()
		if !ok {
			continue
		}
		// Back-facing facets are hidden by the front ones anyway.
		if n.Dot(cam.Eye.Sub(center)) <= 0 {
			continue
		}
		col := r.Lights.ShadeFacet(n, center, cam.Eye, ballColor, lights)
		col = r.Lights.Fog.Apply(col, center.Sub(cam.Eye).Len())
		FillTriangle(fb, [3]Vertex{proj[f[0]], proj[f[1]], proj[f[2]]}, col)
	}
}

func (r *Renderer) drawCards(fb *FrameBuffer, cam Camera, st scene.SceneState) {
	for _, p := range st.Cards {
		if !p.Visible {
			continue
		}
		hovered := st.IsHovered(p.Entry.Label)
		strength := 1.2
		if hovered {
			strength = 2.5
		}
		// Emissive frame slightly inside the ring and larger than the body.
		frame := p
		frame.Position = p.Position.Scale(1 - 0.01/p.Position.Len())
		r.fillWorldQuad(fb, cam, carousel.Corners(frame, 1.275, 1.65), r.Lights.Emissive(p.Entry.Color, strength))

		body := r.Lights.Emissive(p.Entry.Color, 0.15)
		body.A = 0xe0
		r.fillWorldQuad(fb, cam, carousel.Corners(p, carousel.CardSize[0], carousel.CardSize[1]), body)
	}
}

func (r *Renderer) drawLights(fb *FrameBuffer, cam Camera, st scene.SceneState) {
	for _, l := range st.Lights {
		x, y, z, ok := cam.ProjectDepth(l.Position)
		if !ok {
			continue
		}
		DrawGlow(fb, x, y, z, cam.PixelSize(0.6, z), l.Color, 1.2, true)
		DrawGlow(fb, x, y, z, cam.PixelSize(0.12, z), color.RGBA{0xff, 0xff, 0xff, 0xff}, 1, true)
	}
}

func (r *Renderer) drawLabels(dst *image.RGBA, cam Camera, st scene.SceneState) {
	for _, p := range st.Cards {
		if !p.Visible {
			continue
		}
		corners := carousel.Corners(p, carousel.CardSize[0], carousel.CardSize[1])
		var xs [4]float64
		ok := true
		for i, c := range corners {
			x, _, inFront := cam.Project(c)
			if !inFront {
				ok = false
				break
			}
			xs[i] = x
		}
		if !ok {
			continue
		}
		cx, cy, _ := cam.Project(p.Position)
		width := math.Abs(xs[1]-xs[0]) * 0.7
		DrawLabel(dst, p.Entry.Label, cx, cy, width, labelColor)
	}
}

func (r *Renderer) fillWorldQuad(fb *FrameBuffer, cam Camera, q [4]mathutil.Vec3, c color.RGBA) {
	var v [4]Vertex
	center := mathutil.Vec3{}
	for i, p := range q {
		x, y, z, ok := cam.ProjectDepth(p)
		if !ok {
			return
		}
		v[i] = Vertex{x, y, z}
		center = center.Add(p)
	}
	c = r.Lights.Fog.Apply(c, center.Scale(0.25).Sub(cam.Eye).Len())
	FillQuad(fb, v, c)
}
