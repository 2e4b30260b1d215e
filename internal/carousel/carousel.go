// Package carousel lays out the ring of informational cards around the focal
// object and decides which of them face the viewer.
package carousel

import (
	"fmt"
	"image/color"
	"math"

	"github.com/ivlev/discoscene/internal/mathutil"
)

// Entry is one card on the ring. Its index (insertion order) fixes its slot.
type Entry struct {
	Label string
	Color color.RGBA
}

// Placement is the per-frame result for one entry.
type Placement struct {
	Index    int
	Entry    Entry
	Angle    float64 // slot + ring rotation, radians
	Position mathutil.Vec3
	Visible  bool
}

// Params configures the ring. Threshold is the minimum angle between the
// camera→focus and card→focus directions for a card to be drawn.
type Params struct {
	FocalRadius  float64 `yaml:"focal_radius"`
	RingFactor   float64 `yaml:"ring_factor"`
	Height       float64 `yaml:"height"`
	AngularSpeed float64 `yaml:"angular_speed"`
	Threshold    float64 `yaml:"threshold"`
}

func DefaultParams() Params {
	return Params{
		FocalRadius:  3.5,
		RingFactor:   1.25,
		AngularSpeed: 0.15,
		Threshold:    math.Pi / 2.5,
	}
}

// Ring is created once at composition and never changes shape.
type Ring struct {
	entries []Entry
	params  Params
	radius  float64
}

// NewRing fails fast on an empty ring or a non-positive radius.
func NewRing(entries []Entry, p Params) (*Ring, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("carousel: ring needs at least one entry")
	}
	r := p.FocalRadius * p.RingFactor
	if !(r > 0) {
		return nil, fmt.Errorf("carousel: ring radius must be positive, got %v", r)
	}
	if !(p.Threshold >= 0 && p.Threshold <= math.Pi) {
		return nil, fmt.Errorf("carousel: threshold %v outside [0, π]", p.Threshold)
	}
	es := make([]Entry, len(entries))
	copy(es, entries)
	return &Ring{entries: es, params: p, radius: r}, nil
}

func (r *Ring) Len() int         { return len(r.entries) }
func (r *Ring) Radius() float64  { return r.radius }
func (r *Ring) Params() Params   { return r.params }
func (r *Ring) Entries() []Entry { return append([]Entry(nil), r.entries...) }

// Slot is the at-rest angle of entry i: 2π·i/N.
func (r *Ring) Slot(i int) float64 {
	return mathutil.TwoPi * float64(i) / float64(len(r.entries))
}

// RotationY is the rigid rotation of the whole ring at elapsed time t.
func (r *Ring) RotationY(t float64) float64 {
	return t * r.params.AngularSpeed
}

// Position returns the world position of entry i at elapsed time t.
func (r *Ring) Position(i int, t float64) mathutil.Vec3 {
	s, c := math.Sincos(r.Slot(i) + r.RotationY(t))
	return mathutil.Vec3{c * r.radius, r.params.Height, s * r.radius}
}

// Visible reports whether a card at cardPos should be drawn for a camera at
// cameraPos looking at focus. The test is on the angle itself; a dot-product
// cutoff bends differently and is not equivalent. Coincident points are hidden.
func Visible(cameraPos, cardPos, focus mathutil.Vec3, threshold float64) bool {
	cardToFocus, ok := focus.Sub(cardPos).Unit()
	if !ok {
		return false
	}
	cameraToFocus, ok := focus.Sub(cameraPos).Unit()
	if !ok {
		return false
	}
	return mathutil.AngleBetween(cameraToFocus, cardToFocus) > threshold
}

// Layout places every entry for one frame and runs the visibility test against
// the given camera.
func (r *Ring) Layout(t float64, cameraPos, focus mathutil.Vec3) []Placement {
	rot := r.RotationY(t)
	out := make([]Placement, len(r.entries))
	for i, e := range r.entries {
		pos := r.Position(i, t)
		out[i] = Placement{
			Index:    i,
			Entry:    e,
			Angle:    r.Slot(i) + rot,
			Position: pos,
			Visible:  Visible(cameraPos, pos, focus, r.params.Threshold),
		}
	}
	return out
}

// CardSize is the width and height of a card face in world units.
var CardSize = [2]float64{1.25, 1.625}

// Corners returns the four corners of the card face for p, ordered
// bottom-left, bottom-right, top-right, top-left as seen from outside the ring.
// The face is tangent to the ring at the card's angle.
func Corners(p Placement, width, height float64) [4]mathutil.Vec3 {
	s, c := math.Sincos(p.Angle)
	tangent := mathutil.Vec3{-s, 0, c}.Scale(width / 2)
	up := mathutil.Vec3{0, height / 2, 0}
	return [4]mathutil.Vec3{
		p.Position.Sub(tangent).Sub(up),
		p.Position.Add(tangent).Sub(up),
		p.Position.Add(tangent).Add(up),
		p.Position.Sub(tangent).Add(up),
	}
}
