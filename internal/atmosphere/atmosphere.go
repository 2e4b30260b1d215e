// Package atmosphere generates the decorative background: ambient orbiting
// lights, a drifting particle cloud and pulsing bokeh layers.
package atmosphere

import (
	"fmt"
	"image/color"
	"math"

	"github.com/ivlev/discoscene/internal/mathutil"
	"github.com/ivlev/discoscene/internal/orbit"
	"github.com/ivlev/discoscene/internal/random"
)

// Palette is shared with the lights and the carousel.
var Palette = []color.RGBA{
	{0xff, 0x00, 0x6e, 0xff}, // pink
	{0x00, 0xff, 0xff, 0xff}, // cyan
	{0xbf, 0x00, 0xff, 0xff}, // purple
	{0x00, 0xff, 0x88, 0xff}, // green
	{0xff, 0x88, 0x00, 0xff}, // orange
}

// Bokeh is one soft sphere in a background layer.
type Bokeh struct {
	Position    mathutil.Vec3
	Color       color.RGBA
	Size        float64
	Opacity     float64
	PulseSpeed  float64
	PulseOffset float64
}

// Opacity at time t: the base value breathing between 70% and 100%.
func (b Bokeh) OpacityAt(t float64) float64 {
	pulse := math.Sin(t*b.PulseSpeed+b.PulseOffset)*0.5 + 0.5
	return b.Opacity * (0.7 + pulse*0.3)
}

// LayerSpec drives the generator for one depth layer.
type LayerSpec struct {
	Name             string
	Count            int
	SpanX, SpanY     float64
	ZNear, ZDepth    float64
	SizeMin, SizeJ   float64
	OpacMin, OpacJ   float64
	SpeedMin, SpeedJ float64
}

// DefaultLayers are the close, mid and far layers of the live site.
func DefaultLayers() []LayerSpec {
	return []LayerSpec{
		{"close", 15, 35, 22, -12, 8, 1.2, 2.5, 0.4, 0.4, 0.5, 1.5},
		{"mid", 20, 40, 25, -20, 10, 0.8, 1.8, 0.3, 0.35, 0.4, 1.2},
		{"far", 25, 50, 30, -30, 15, 0.5, 1.2, 0.2, 0.25, 0.3, 1.0},
	}
}

// Config sizes the field.
type Config struct {
	Particles     int         `yaml:"particles"`
	ParticleSpan  float64     `yaml:"particle_span"`
	DriftSpeed    float64     `yaml:"drift_speed"`
	AmbientRadius float64     `yaml:"ambient_radius"`
	AmbientSpeed  float64     `yaml:"ambient_speed"`
	Layers        []LayerSpec `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Particles:     1000,
		ParticleSpan:  50,
		DriftSpeed:    0.02,
		AmbientRadius: 15,
		AmbientSpeed:  0.3,
		Layers:        DefaultLayers(),
	}
}

// Field is generated once and then only read.
type Field struct {
	Particles  []mathutil.Vec3
	DriftSpeed float64
	Layers     [][]Bokeh
	Ambient    []orbit.Descriptor
}

// Generate builds the field from src. The same seed always yields the same field.
func Generate(cfg Config, src random.Source) (*Field, error) {
	if cfg.Particles < 0 {
		return nil, fmt.Errorf("atmosphere: negative particle count %d", cfg.Particles)
	}

	st := &random.Stream{Src: src}
	f := &Field{DriftSpeed: cfg.DriftSpeed}

	f.Particles = make([]mathutil.Vec3, cfg.Particles)
	for i := range f.Particles {
		f.Particles[i] = mathutil.Vec3{
			st.Centered(cfg.ParticleSpan),
			st.Centered(cfg.ParticleSpan),
			st.Centered(cfg.ParticleSpan),
		}
	}

	for _, ls := range cfg.Layers {
		layer := make([]Bokeh, ls.Count)
		for i := range layer {
			layer[i] = Bokeh{
				Position: mathutil.Vec3{
					st.Centered(ls.SpanX),
					st.Centered(ls.SpanY),
					ls.ZNear - st.Next()*ls.ZDepth,
				},
				Color:       Palette[st.Intn(len(Palette))],
				Size:        ls.SizeMin + st.Next()*ls.SizeJ,
				Opacity:     ls.OpacMin + st.Next()*ls.OpacJ,
				PulseSpeed:  ls.SpeedMin + st.Next()*ls.SpeedJ,
				PulseOffset: st.Next() * mathutil.TwoPi,
			}
		}
		f.Layers = append(f.Layers, layer)
	}

	if cfg.AmbientRadius > 0 {
		n := len(Palette)
		for i := 0; i < n; i++ {
			d, err := orbit.New(orbit.Params{
				BaseRadius:   cfg.AmbientRadius,
				AngularSpeed: cfg.AmbientSpeed,
				PhaseOffset:  float64(i) * mathutil.TwoPi / float64(n),
				Bob:          &orbit.Bob{Frequency: 0.5, Amplitude: 3, Phase: float64(i)},
			})
			if err != nil {
				return nil, fmt.Errorf("atmosphere: ambient light %d: %w", i, err)
			}
			f.Ambient = append(f.Ambient, d)
		}
	}

	return f, nil
}

// Snapshot is the time-dependent view of the field for one frame.
type Snapshot struct {
	DriftY    float64
	Ambient   []mathutil.Vec3
	Opacities [][]float64
}

// At evaluates the field at time t without modifying it.
func (f *Field) At(t float64) Snapshot {
	s := Snapshot{DriftY: t * f.DriftSpeed}
	for _, d := range f.Ambient {
		s.Ambient = append(s.Ambient, orbit.Position(d, t))
	}
	s.Opacities = make([][]float64, len(f.Layers))
	for li, layer := range f.Layers {
		ops := make([]float64, len(layer))
		for i, b := range layer {
			ops[i] = b.OpacityAt(t)
		}
		s.Opacities[li] = ops
	}
	return s
}
