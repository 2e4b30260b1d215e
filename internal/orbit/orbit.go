// Package orbit computes positions of entities travelling on circular paths
// around the vertical axis.
package orbit

import (
	"fmt"
	"math"

	"github.com/ivlev/discoscene/internal/mathutil"
)

// Bob adds a vertical oscillation on top of VerticalOffset.
type Bob struct {
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
	Phase     float64 `yaml:"phase"`
}

// Descriptor holds the immutable parameters of one orbit.
// Build it with New so the invariants are checked; fields are unexported to keep
// speed and phase fixed for the descriptor's lifetime.
type Descriptor struct {
	baseRadius     float64
	angularSpeed   float64
	phaseOffset    float64
	verticalOffset float64
	radiusScale    float64
	bob            *Bob
}

// Params is the mutable description used to build a Descriptor (and to load
// one from the scene file).
type Params struct {
	BaseRadius     float64 `yaml:"base_radius"`
	AngularSpeed   float64 `yaml:"angular_speed"`
	PhaseOffset    float64 `yaml:"phase_offset"`
	VerticalOffset float64 `yaml:"vertical_offset"`
	RadiusScale    float64 `yaml:"radius_scale"`
	Bob            *Bob    `yaml:"bob,omitempty"`
}

// New validates p and returns a Descriptor. A zero RadiusScale means 1; the phase
// is wrapped into [0, 2π).
func New(p Params) (Descriptor, error) {
	if !(p.BaseRadius > 0) || math.IsInf(p.BaseRadius, 0) {
		return Descriptor{}, fmt.Errorf("orbit: base radius must be positive, got %v", p.BaseRadius)
	}
	if p.RadiusScale == 0 {
		p.RadiusScale = 1
	}
	if !(p.RadiusScale > 0) {
		return Descriptor{}, fmt.Errorf("orbit: radius scale must be positive, got %v", p.RadiusScale)
	}
	if math.IsNaN(p.AngularSpeed) || math.IsNaN(p.PhaseOffset) || math.IsNaN(p.VerticalOffset) {
		return Descriptor{}, fmt.Errorf("orbit: NaN parameter")
	}

	var bob *Bob
	if p.Bob != nil {
		b := *p.Bob
		bob = &b
	}

	return Descriptor{
		baseRadius:     p.BaseRadius,
		angularSpeed:   p.AngularSpeed,
		phaseOffset:    mathutil.WrapAngle(p.PhaseOffset),
		verticalOffset: p.VerticalOffset,
		radiusScale:    p.RadiusScale,
		bob:            bob,
	}, nil
}

func (d Descriptor) AngularSpeed() float64 { return d.angularSpeed }
func (d Descriptor) PhaseOffset() float64  { return d.phaseOffset }

// Radius is the effective radius of the path.
func (d Descriptor) Radius() float64 { return d.baseRadius * d.radiusScale }

// Angle returns the orbit angle at elapsed time t.
func (d Descriptor) Angle(t float64) float64 {
	return t*d.angularSpeed + d.phaseOffset
}

// Position returns the point on the orbit at elapsed time t. It is pure: equal
// inputs always give equal outputs.
func Position(d Descriptor, t float64) mathutil.Vec3 {
	s, c := math.Sincos(d.Angle(t))
	r := d.Radius()
	y := d.verticalOffset
	if d.bob != nil {
		y += math.Sin(t*d.bob.Frequency+d.bob.Phase) * d.bob.Amplitude
	}
	return mathutil.Vec3{s * r, y, c * r}
}

// ValidateSet rejects descriptors whose paths coincide: same radius, same speed
// and same phase would draw two lights on top of each other forever.
func ValidateSet(ds []Descriptor) error {
	const eps = 1e-9
	for i := 0; i < len(ds); i++ {
		for j := i + 1; j < len(ds); j++ {
			a, b := ds[i], ds[j]
			if math.Abs(a.Radius()-b.Radius()) > eps || math.Abs(a.angularSpeed-b.angularSpeed) > eps {
				continue
			}
			if mathutil.AngleDist(a.phaseOffset, b.phaseOffset) < eps {
				return fmt.Errorf("orbit: descriptors %d and %d share radius, speed and phase", i, j)
			}
		}
	}
	return nil
}
