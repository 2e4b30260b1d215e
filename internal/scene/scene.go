// Package scene is the composition root of the hero scene. It owns the focal
// ball, the orbiting lights, the suspension string and the card ring, and turns a
// clock tick plus a scroll snapshot into the next SceneState.
package scene

import (
	"fmt"
	"image/color"
	"math"

	"github.com/ivlev/discoscene/internal/atmosphere"
	"github.com/ivlev/discoscene/internal/camera"
	"github.com/ivlev/discoscene/internal/carousel"
	"github.com/ivlev/discoscene/internal/orbit"
	"github.com/ivlev/discoscene/internal/random"
)

// LightCount is the number of orbiting colored lights around the ball.
const LightCount = 5

// Asset is the opaque handle to the focal object's geometry. The scene only
// asks whether it can be drawn yet.
type Asset interface {
	Ready() bool
}

// ReadyAsset is an Asset that is always available.
type ReadyAsset struct{}

func (ReadyAsset) Ready() bool { return true }

// LightSpec describes one orbiting light.
type LightSpec struct {
	Name  string
	Color color.RGBA
	Orbit orbit.Params
}

// Config is everything needed to compose the scene.
type Config struct {
	Camera     camera.Params
	Ring       carousel.Params
	Cards      []carousel.Entry
	Lights     []LightSpec
	BallSpin   float64 // rad/s around Y
	BallScale  float64
	SwaySpeed  float64
	SwayAngle  float64
	StringTop  float64
	Atmosphere atmosphere.Config
	Seed       uint64
}

// DefaultConfig reproduces the live site.
func DefaultConfig() Config {
	p := atmosphere.Palette
	return Config{
		Camera: camera.DefaultParams(),
		Ring:   carousel.DefaultParams(),
		Cards: []carousel.Entry{
			{Label: "MUSIC", Color: p[0]},
			{Label: "VIP", Color: p[1]},
			{Label: "EVENTS", Color: p[2]},
			{Label: "DRINKS", Color: p[3]},
			{Label: "GALLERY", Color: p[4]},
		},
		Lights: []LightSpec{
			{"pink", p[0], orbit.Params{BaseRadius: 3, AngularSpeed: 0.5, PhaseOffset: 0, VerticalOffset: 2}},
			{"cyan", p[1], orbit.Params{BaseRadius: 3, AngularSpeed: 0.5, PhaseOffset: math.Pi * 2 / 5, VerticalOffset: 1.5}},
			{"purple", p[2], orbit.Params{BaseRadius: 3, AngularSpeed: 0.5, PhaseOffset: math.Pi * 4 / 5, VerticalOffset: 1.8}},
			{"green", p[3], orbit.Params{BaseRadius: 3, AngularSpeed: 0.4, PhaseOffset: math.Pi * 6 / 5, VerticalOffset: 1.2, RadiusScale: 0.9}},
			{"orange", p[4], orbit.Params{BaseRadius: 3, AngularSpeed: 0.6, PhaseOffset: math.Pi * 8 / 5, VerticalOffset: 1.6, RadiusScale: 1.1}},
		},
		BallSpin:   0.3,
		BallScale:  1,
		SwaySpeed:  0.5,
		SwayAngle:  0.02,
		StringTop:  3,
		Atmosphere: atmosphere.DefaultConfig(),
		Seed:       1,
	}
}

// Light is a composed light descriptor.
type Light struct {
	Name  string
	Color color.RGBA
	orbit orbit.Descriptor
}

// Scene holds the immutable composition. All per-frame data lives in SceneState.
type Scene struct {
	cfg        Config
	mapper     *camera.Mapper
	ring       *carousel.Ring
	lights     []Light
	atmosphere *atmosphere.Field
	ball       Asset
}

// Compose validates cfg and builds the scene. Configuration mistakes are reported
// here, never mid-session.
func Compose(cfg Config, ball Asset) (*Scene, error) {
	return ComposeWithRandom(cfg, ball, random.NewSeeded(cfg.Seed))
}

// ComposeWithRandom is Compose with an explicit random source for the
// decorative background.
func ComposeWithRandom(cfg Config, ball Asset, src random.Source) (*Scene, error) {
	if len(cfg.Lights) != LightCount {
		return nil, fmt.Errorf("scene: expected %d lights, got %d", LightCount, len(cfg.Lights))
	}
	if ball == nil {
		return nil, fmt.Errorf("scene: focal asset handle is nil")
	}
	if !(cfg.Camera.Smoothing > 0 && cfg.Camera.Smoothing <= 1) {
		return nil, fmt.Errorf("scene: camera smoothing must be in (0, 1], got %v", cfg.Camera.Smoothing)
	}

	ring, err := carousel.NewRing(cfg.Cards, cfg.Ring)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	lights := make([]Light, len(cfg.Lights))
	descs := make([]orbit.Descriptor, len(cfg.Lights))
	for i, ls := range cfg.Lights {
		d, err := orbit.New(ls.Orbit)
		if err != nil {
			return nil, fmt.Errorf("scene: light %d (%s): %w", i, ls.Name, err)
		}
		lights[i] = Light{Name: ls.Name, Color: ls.Color, orbit: d}
		descs[i] = d
	}
	if err := orbit.ValidateSet(descs); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	field, err := atmosphere.Generate(cfg.Atmosphere, src)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	return &Scene{
		cfg:        cfg,
		mapper:     camera.NewMapper(cfg.Camera),
		ring:       ring,
		lights:     lights,
		atmosphere: field,
		ball:       ball,
	}, nil
}

func (s *Scene) Config() Config                { return s.cfg }
func (s *Scene) Ring() *carousel.Ring          { return s.ring }
func (s *Scene) Atmosphere() *atmosphere.Field { return s.atmosphere }
func (s *Scene) Ball() Asset                   { return s.ball }
