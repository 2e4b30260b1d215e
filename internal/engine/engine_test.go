package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/discoscene/internal/clock"
	"github.com/ivlev/discoscene/internal/config"
	"github.com/ivlev/discoscene/internal/director"
	"github.com/ivlev/discoscene/internal/effects"
	"github.com/ivlev/discoscene/internal/mathutil"
	"github.com/ivlev/discoscene/internal/overlay"
	"github.com/ivlev/discoscene/internal/raster"
	"github.com/ivlev/discoscene/internal/scene"
	"github.com/ivlev/discoscene/internal/system"
	"github.com/ivlev/discoscene/internal/video"
)

// recordingEncoder keeps every frame it receives.
type recordingEncoder struct {
	frames []*image.RGBA
	params video.StreamParams
	path   string
	err    error
}

func (e *recordingEncoder) EncodeStream(ctx context.Context, frames <-chan *image.RGBA, path string, params video.StreamParams) error {
	e.path, e.params = path, params
	for f := range frames {
		e.frames = append(e.frames, f)
	}
	return e.err
}

// pinProjector maps every world point onto the same pixel.
type pinProjector struct{ x, y float64 }

func (p pinProjector) Project(mathutil.Vec3) (float64, float64, bool) { return p.x, p.y, true }

func newTestScene(t *testing.T) *scene.Scene {
	t.Helper()
	sc, err := scene.Compose(scene.DefaultConfig(), scene.ReadyAsset{})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	return sc
}

func TestSimulateCameraConverges(t *testing.T) {
	sc := newTestScene(t)
	scenario := &director.Scenario{
		Viewport: director.Viewport{Width: 1280, Height: 800},
		Duration: 10,
		Keyframes: []director.Keyframe{
			{Time: 0, Scroll: 0},
			{Time: 10, Scroll: 0},
		},
	}

	sess := Simulate(sc, scenario, clock.NewFixedStep(30), 300, 1280, 800,
		func(scene.SceneState) scene.Projector { return pinProjector{-1, -1} })

	if len(sess.States) != 300 {
		t.Fatalf("expected 300 states, got %d", len(sess.States))
	}

	// hero = 480, mid = 880, target = 8.8, plus base offset 2
	want := 10.8
	prev := sess.States[0].Camera.PositionY
	for i, st := range sess.States[1:] {
		y := st.Camera.PositionY
		if y < prev-1e-9 {
			t.Fatalf("frame %d: camera moved away from the target (%f -> %f)", i+1, prev, y)
		}
		prev = y
	}
	if got := sess.States[len(sess.States)-1].Camera.PositionY; got < want-0.01 || got > want+0.01 {
		t.Errorf("camera did not settle: got %f, want %f", got, want)
	}

	for i, st := range sess.States {
		if st.Tick.Frame != i {
			t.Fatalf("state %d carries tick %d", i, st.Tick.Frame)
		}
	}
}

func TestSimulateRoutesPointer(t *testing.T) {
	sc := newTestScene(t)
	// Scenario viewport is twice the raster, so (200,100) lands on (100,50).
	scenario := &director.Scenario{
		Viewport: director.Viewport{Width: 400, Height: 200},
		Duration: 3,
		Keyframes: []director.Keyframe{
			{Time: 0, Scroll: 0},
			{Time: 1, Scroll: 0, Pointer: &scene.Point{X: 200, Y: 100}},
			{Time: 3, Scroll: 0, Pointer: &scene.Point{X: 200, Y: 100}},
		},
	}

	sess := Simulate(sc, scenario, clock.NewFixedStep(10), 30, 200, 100,
		func(scene.SceneState) scene.Projector { return pinProjector{100, 50} })

	if len(sess.Events) == 0 {
		t.Fatal("expected hover events")
	}
	first := sess.Events[0]
	if first.Kind != scene.Enter {
		t.Errorf("first event should be enter, got %v", first.Kind)
	}
	if first.Frame == 0 {
		t.Error("pointer is outside the canvas on frame 0")
	}

	entered := map[string]bool{}
	for _, ev := range sess.Events {
		switch ev.Kind {
		case scene.Enter:
			entered[ev.ID] = true
		case scene.Leave:
			if !entered[ev.ID] {
				t.Errorf("frame %d: leave for %s without enter", ev.Frame, ev.ID)
			}
			delete(entered, ev.ID)
		case scene.Move:
			if !entered[ev.ID] {
				t.Errorf("frame %d: move for %s without enter", ev.Frame, ev.ID)
			}
		}
	}

	last := sess.States[len(sess.States)-1]
	for _, id := range last.Hovered {
		if !entered[id] {
			t.Errorf("hovered %s has no open enter", id)
		}
	}
	t.Logf("events: %d, hovered at end: %v", len(sess.Events), last.Hovered)
}

func TestSimulatePointerMiss(t *testing.T) {
	sc := newTestScene(t)
	scenario := &director.Scenario{
		Viewport:  director.Viewport{Width: 400, Height: 200},
		Duration:  1,
		Keyframes: []director.Keyframe{{Time: 0, Scroll: 0, Pointer: &scene.Point{X: 10, Y: 10}}},
	}

	sess := Simulate(sc, scenario, clock.NewFixedStep(10), 10, 400, 200,
		func(scene.SceneState) scene.Projector { return pinProjector{300, 150} })
	if len(sess.Events) != 0 {
		t.Errorf("expected no events, got %v", sess.Events)
	}
}

func TestRenderAndEncodeKeepsOrder(t *testing.T) {
	sc := newTestScene(t)
	scenario, err := director.NewDirector(320, 200).GenerateScenario(2)
	if err != nil {
		t.Fatal(err)
	}

	ball := raster.NewBallAsset(6, 12)
	ball.Load()
	if err := ball.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	r := raster.NewRenderer(32, 20, 1, ball, sc.Atmosphere())
	sess := Simulate(sc, scenario, clock.NewFixedStep(6), 12, 32, 20,
		func(st scene.SceneState) scene.Projector { return r.Camera(st) })

	ov, err := overlay.New("", r.Height, nil)
	if err != nil {
		t.Fatal(err)
	}
	enc := &recordingEncoder{}
	p := &VideoProject{
		Config:  &config.Config{Workers: 4, OutputVideo: "out.mp4"},
		Encoder: enc,
		Host:    system.HostInfo{LogicalCPUs: 4},
	}
	shots := &capture{posterFrame: 3}
	if err := p.renderAndEncode(context.Background(), sess.States, r, ov, video.StreamParams{}, shots); err != nil {
		t.Fatalf("renderAndEncode failed: %v", err)
	}

	if len(enc.frames) != len(sess.States) {
		t.Fatalf("encoder got %d frames, want %d", len(enc.frames), len(sess.States))
	}
	for i, st := range sess.States {
		want := image.NewRGBA(image.Rect(0, 0, 32, 20))
		r.Render(st, r.NewBuffer(), want)
		if !bytes.Equal(want.Pix, enc.frames[i].Pix) {
			t.Errorf("frame %d arrived out of order", i)
		}
	}
	if shots.poster == nil || !bytes.Equal(shots.poster.Pix, enc.frames[3].Pix) {
		t.Error("poster should be a copy of frame 3")
	}
	if enc.path != "out.mp4" {
		t.Errorf("unexpected output path %q", enc.path)
	}
}

func TestRenderAndEncodeEncoderError(t *testing.T) {
	sc := newTestScene(t)
	scenario, err := director.NewDirector(320, 200).GenerateScenario(1)
	if err != nil {
		t.Fatal(err)
	}
	r := raster.NewRenderer(16, 10, 1, raster.NewBallAsset(4, 8), sc.Atmosphere())
	sess := Simulate(sc, scenario, clock.NewFixedStep(10), 10, 16, 10,
		func(st scene.SceneState) scene.Projector { return r.Camera(st) })

	boom := errors.New("boom")
	p := &VideoProject{
		Config:  &config.Config{Workers: 2},
		Encoder: &recordingEncoder{err: boom},
		Host:    system.HostInfo{LogicalCPUs: 2},
	}
	ov, _ := overlay.New("", 10, nil)
	err = p.renderAndEncode(context.Background(), sess.States, r, ov, video.StreamParams{}, &capture{posterFrame: -1})
	if !errors.Is(err, boom) {
		t.Errorf("expected encoder error, got %v", err)
	}
}

func TestRunWritesPosterAndPreview(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		OutputVideo:   filepath.Join(dir, "out.mp4"),
		PosterPath:    filepath.Join(dir, "poster.webp"),
		PosterTime:    0.4,
		PreviewPath:   filepath.Join(dir, "preview.webp"),
		TotalDuration: 1,
		Width:         48,
		Height:        30,
		FPS:           5,
		Workers:       2,
		Supersample:   1,
		Seed:          7,
	}
	sceneCfg := scene.DefaultConfig()
	sceneCfg.Atmosphere.Particles = 50
	enc := &recordingEncoder{}
	p := NewVideoProject(cfg, sceneCfg, enc, nil)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(enc.frames) != 5 {
		t.Errorf("expected 5 frames, got %d", len(enc.frames))
	}
	if enc.params.Filter == "" {
		t.Error("filter chain should not be empty")
	}
	for _, path := range []string{cfg.PosterPath, cfg.PreviewPath} {
		if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
			t.Errorf("%s was not written: %v", path, err)
		}
	}
}

func TestRunGenerateScenario(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "tour.yaml")
	cfg := &config.Config{
		GenerateScenario: true,
		ScenarioOutput:   out,
		TotalDuration:    12,
		Width:            1280,
		Height:           800,
	}
	p := NewVideoProject(cfg, scene.DefaultConfig(), &recordingEncoder{}, nil)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	sc, err := director.ReadScenario(out)
	if err != nil {
		t.Fatalf("written scenario unreadable: %v", err)
	}
	if sc.Duration != 12 {
		t.Errorf("expected duration 12, got %f", sc.Duration)
	}
}

func TestPickEffect(t *testing.T) {
	sc := &director.Scenario{Keyframes: []director.Keyframe{{Time: 0, Scroll: 0}}}
	if _, ok := pickEffect(nil, sc, true).(*effects.ScenarioEffect); !ok {
		t.Error("debug render should use the scenario effect")
	}
	if _, ok := pickEffect(nil, sc, false).(*effects.DefaultEffect); !ok {
		t.Error("nil effect should fall back to the default chain")
	}
	custom := &effects.DefaultEffect{}
	if got := pickEffect(custom, sc, false); got != custom {
		t.Error("explicit effect should be kept")
	}
}

func TestBallVisibleFromFirstFrameAfterWait(t *testing.T) {
	ball := raster.NewBallAsset(4, 8)
	ball.Load()
	if err := ball.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	sc, err := scene.Compose(scene.DefaultConfig(), ball)
	if err != nil {
		t.Fatal(err)
	}
	scenario := &director.Scenario{
		Viewport:  director.Viewport{Width: 1280, Height: 800},
		Keyframes: []director.Keyframe{{Time: 0, Scroll: 0}},
	}
	sess := Simulate(sc, scenario, clock.NewFixedStep(30), 1, 1280, 800,
		func(scene.SceneState) scene.Projector { return pinProjector{-1, -1} })
	if !sess.States[0].Ball.Visible {
		t.Error("ball should be drawn on frame 0 once the asset has been awaited")
	}
}
