package raster

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/ivlev/discoscene/internal/camera"
	"github.com/ivlev/discoscene/internal/clock"
	"github.com/ivlev/discoscene/internal/mathutil"
	"github.com/ivlev/discoscene/internal/scene"
)

var _ scene.Projector = Camera{}
var _ scene.Asset = (*BallAsset)(nil)

func TestCameraProjection(t *testing.T) {
	cam := NewCamera(camera.Initial(), 200, 100, DefaultFOV)

	x, y, z, ok := cam.ProjectDepth(mathutil.Vec3{0, 0, 0})
	if !ok {
		t.Fatal("origin should be in front of the camera")
	}
	if math.Abs(x-100) > 1e-9 || math.Abs(y-50) > 1e-9 {
		t.Errorf("origin projects to (%.3f, %.3f), want (100, 50)", x, y)
	}
	wantDepth := -math.Sqrt(4*4 + 8*8)
	if math.Abs(z-wantDepth) > 1e-9 {
		t.Errorf("depth = %v, want %v", z, wantDepth)
	}

	// Points to the right land right of center, points above land higher.
	if rx, _, _ := cam.Project(mathutil.Vec3{1, 0, 0}); rx <= 100 {
		t.Errorf("+X projected to x=%.2f", rx)
	}
	if _, uy, _ := cam.Project(mathutil.Vec3{0, 1, 0}); uy >= 50 {
		t.Errorf("+Y projected to y=%.2f", uy)
	}

	// Behind the eye.
	if _, _, ok := cam.Project(mathutil.Vec3{0, 8, 16}); ok {
		t.Error("point behind the camera should not project")
	}

	big := cam.Scaled(2)
	bx, by, _ := big.Project(mathutil.Vec3{1, 1, 0})
	sx, sy, _ := cam.Project(mathutil.Vec3{1, 1, 0})
	if math.Abs(bx-2*sx) > 1e-9 || math.Abs(by-2*sy) > 1e-9 {
		t.Errorf("scaled camera: (%v,%v) vs 2×(%v,%v)", bx, by, sx, sy)
	}
	if math.Abs(big.PixelSize(1, -10)-2*cam.PixelSize(1, -10)) > 1e-9 {
		t.Error("PixelSize should scale with the raster")
	}
}

func TestFillTriangleDepth(t *testing.T) {
	fb := NewFrameBuffer(10, 10)
	fb.Clear(color.RGBA{0, 0, 0, 0xff})

	red := color.RGBA{0xff, 0, 0, 0xff}
	blue := color.RGBA{0, 0, 0xff, 0xff}
	far := [4]Vertex{{0, 0, -10}, {10, 0, -10}, {10, 10, -10}, {0, 10, -10}}
	near := [4]Vertex{{0, 0, -5}, {10, 0, -5}, {10, 10, -5}, {0, 10, -5}}

	FillQuad(fb, near, blue)
	FillQuad(fb, far, red)
	if got := fb.At(5, 5); got != blue {
		t.Errorf("far quad overwrote near one: %v", got)
	}
	if math.Abs(fb.Depth(5, 5)+5) > 1e-9 {
		t.Errorf("depth = %v", fb.Depth(5, 5))
	}

	fb.Clear(color.RGBA{0, 0, 0, 0xff})
	if !math.IsInf(fb.Depth(5, 5), -1) {
		t.Error("Clear should reset depth")
	}

	// Degenerate triangles draw nothing.
	FillTriangle(fb, [3]Vertex{{1, 1, 0}, {5, 5, 0}, {9, 9, 0}}, red)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if fb.At(x, y) != (color.RGBA{0, 0, 0, 0xff}) {
				t.Fatalf("degenerate triangle drew at (%d,%d)", x, y)
			}
		}
	}
}

func TestFillTriangleBlend(t *testing.T) {
	fb := NewFrameBuffer(4, 4)
	fb.Clear(color.RGBA{0, 0, 0, 0xff})
	half := color.RGBA{200, 100, 0, 0x80}
	FillQuad(fb, [4]Vertex{{0, 0, -1}, {4, 0, -1}, {4, 4, -1}, {0, 4, -1}}, half)
	got := fb.At(1, 1)
	if got.R < 95 || got.R > 105 || got.G < 45 || got.G > 55 {
		t.Errorf("blend result %v", got)
	}
}

func TestDrawGlow(t *testing.T) {
	fb := NewFrameBuffer(21, 21)
	fb.Clear(color.RGBA{0, 0, 0, 0xff})
	DrawGlow(fb, 10.5, 10.5, -1, 8, color.RGBA{0xff, 0xff, 0xff, 0xff}, 1, false)

	center := fb.At(10, 10).R
	edge := fb.At(16, 10).R
	outside := fb.At(0, 0).R
	if !(center > edge && edge > outside) || outside != 0 {
		t.Errorf("glow falloff: center %d edge %d outside %d", center, edge, outside)
	}

	// With a depth test, a nearer surface blocks the glow.
	fb.Clear(color.RGBA{0, 0, 0, 0xff})
	FillQuad(fb, [4]Vertex{{0, 0, -1}, {21, 0, -1}, {21, 21, -1}, {0, 21, -1}}, color.RGBA{0, 0, 0, 0xff})
	DrawGlow(fb, 10.5, 10.5, -5, 8, color.RGBA{0xff, 0xff, 0xff, 0xff}, 1, true)
	if fb.At(10, 10).R != 0 {
		t.Error("occluded glow should not be drawn")
	}
}

func TestMirrorBallMesh(t *testing.T) {
	m := NewMirrorBall(12, 24)
	if len(m.Vertices) != 13*24 {
		t.Errorf("vertices = %d", len(m.Vertices))
	}
	if len(m.Faces) != 24*(2*12-2) {
		t.Errorf("faces = %d", len(m.Faces))
	}
	for _, v := range m.Vertices {
		if math.Abs(v.Len()-1) > 1e-9 {
			t.Fatalf("vertex off the unit sphere: %v", v)
		}
	}
}

func TestBallAssetLoad(t *testing.T) {
	b := NewBallAsset(6, 12)
	if b.Ready() || b.Mesh() != nil {
		t.Fatal("asset ready before Load")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := b.Wait(ctx); err == nil {
		t.Fatal("Wait should time out before Load")
	}

	b.Load()
	b.Load()
	if err := b.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !b.Ready() || b.Mesh() == nil {
		t.Error("asset should be ready after Wait")
	}
}

func TestFog(t *testing.T) {
	f := Fog{Color: color.RGBA{10, 5, 20, 0xff}, Near: 15, Far: 45}
	tests := []struct {
		dist, want float64
	}{
		{0, 0}, {15, 0}, {30, 0.5}, {45, 1}, {100, 1},
	}
	for _, tt := range tests {
		if got := f.Factor(tt.dist); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Factor(%v) = %v, want %v", tt.dist, got, tt.want)
		}
	}
	c := color.RGBA{200, 200, 200, 0xff}
	if f.Apply(c, 10) != c {
		t.Error("no fog before Near")
	}
	if f.Apply(c, 60) != f.Color {
		t.Error("full fog past Far")
	}
}

func TestShadeFacet(t *testing.T) {
	lc := DefaultLightConfig()
	n := mathutil.Vec3{0, 0, 1}
	p := mathutil.Vec3{0, 0, 1}
	eye := mathutil.Vec3{0, 0, 8}

	dark := lc.ShadeFacet(n, p, eye, ballColor, nil)
	lit := lc.ShadeFacet(n, p, eye, ballColor, []PointLight{
		{Position: mathutil.Vec3{0, 0, 3}, Color: color.RGBA{0xff, 0x00, 0x6e, 0xff}, Intensity: 3, Distance: 15},
	})
	if lit.R <= dark.R {
		t.Errorf("pink light should brighten red: dark %v lit %v", dark, lit)
	}
	if lit.R <= lit.G {
		t.Errorf("glint should be tinted by the light: %v", lit)
	}

	// Out of reach contributes nothing.
	far := lc.ShadeFacet(n, p, eye, ballColor, []PointLight{
		{Position: mathutil.Vec3{0, 0, 40}, Color: color.RGBA{0xff, 0xff, 0xff, 0xff}, Intensity: 3, Distance: 15},
	})
	if far != dark {
		t.Errorf("light beyond reach changed the color: %v vs %v", far, dark)
	}
}

func TestRenderScene(t *testing.T) {
	ball := NewBallAsset(8, 16)
	ball.Load()
	if err := ball.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	cfg := scene.DefaultConfig()
	cfg.Atmosphere.Particles = 50
	sc, err := scene.Compose(cfg, ball)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	fs := clock.NewFixedStep(30)
	st := sc.Update(sc.Initial(), fs.Next(), camera.ScrollState{ScrollOffsetPx: 0, ViewportHeightPx: 800})

	for _, ss := range []int{1, 2} {
		r := NewRenderer(160, 90, ss, ball, sc.Atmosphere())
		fb := r.NewBuffer()
		if fb.Width != 160*ss || fb.Height != 90*ss {
			t.Fatalf("buffer %dx%d", fb.Width, fb.Height)
		}
		dst := image.NewRGBA(image.Rect(0, 0, 160, 90))
		r.Render(st, fb, dst)

		// The ball sits at the look-at point, which is the frame center.
		c := dst.RGBAAt(80, 45)
		bg := r.Lights.Background
		if c.R == bg.R && c.G == bg.G && c.B == bg.B {
			t.Errorf("ss=%d: frame center is background, ball missing", ss)
		}
	}
}

func TestRenderHiddenBall(t *testing.T) {
	ball := NewBallAsset(8, 16)
	cfg := scene.DefaultConfig()
	cfg.Atmosphere.Particles = 0
	cfg.Atmosphere.AmbientRadius = 0
	cfg.Atmosphere.Layers = nil
	sc, err := scene.Compose(cfg, ball)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	st := sc.Update(sc.Initial(), clock.NewFixedStep(30).Next(), camera.ScrollState{ViewportHeightPx: 800})
	if st.Ball.Visible {
		t.Fatal("ball should be hidden before the asset loads")
	}

	r := NewRenderer(64, 36, 1, ball, sc.Atmosphere())
	dst := image.NewRGBA(image.Rect(0, 0, 64, 36))
	r.Render(st, r.NewBuffer(), dst)
	t.Logf("center pixel without ball: %v", dst.RGBAAt(32, 18))
}
