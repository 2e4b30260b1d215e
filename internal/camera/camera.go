// Package camera maps page scroll onto the hero camera's vertical position.
package camera

import (
	"math"

	"github.com/ivlev/discoscene/internal/mathutil"
)

// ScrollState is the per-frame page snapshot. The mapper never mutates it.
type ScrollState struct {
	ScrollOffsetPx   int `yaml:"scroll"`
	ViewportHeightPx int `yaml:"viewport_height"`
}

// State is the only memory carried between frames.
type State struct {
	PositionY float64
	// PositionX and PositionZ stay at the mount position; only Y follows scroll.
	PositionX float64
	PositionZ float64
	Target    mathutil.Vec3
}

// Position returns the camera eye in world space.
func (s State) Position() mathutil.Vec3 {
	return mathutil.Vec3{s.PositionX, s.PositionY, s.PositionZ}
}

// Initial is the camera right after mount: (0, 4, 8) looking at the origin.
func Initial() State {
	return State{PositionY: 4, PositionZ: 8}
}

// Params tunes the mapping. The defaults come from the live site and have no
// derivation beyond "looks right".
type Params struct {
	HeroFraction float64 `yaml:"hero_fraction"`
	K            float64 `yaml:"k"`
	BaseOffset   float64 `yaml:"base_offset"`
	Smoothing    float64 `yaml:"smoothing"`
}

func DefaultParams() Params {
	return Params{
		HeroFraction: 0.6,
		K:            0.01,
		BaseOffset:   2,
		Smoothing:    0.05,
	}
}

// Mapper turns scroll snapshots into smoothed camera states.
type Mapper struct {
	Params Params
}

func NewMapper(p Params) *Mapper {
	return &Mapper{Params: p}
}

// Target returns the unsmoothed vertical target (without BaseOffset). ok is false
// for a collapsed viewport.
func (m *Mapper) Target(s ScrollState) (float64, bool) {
	if s.ViewportHeightPx <= 0 {
		return 0, false
	}
	vh := float64(s.ViewportHeightPx)
	heroHeight := vh * m.Params.HeroFraction
	sectionMidpoint := heroHeight + vh/2
	return -(float64(s.ScrollOffsetPx) - sectionMidpoint) * m.Params.K, true
}

// Step moves the camera a fixed fraction of the remaining distance to the target.
// A collapsed viewport holds the previous state.
func (m *Mapper) Step(prev State, s ScrollState) State {
	target, ok := m.Target(s)
	if !ok {
		return prev
	}
	next := prev
	next.PositionY += (target + m.Params.BaseOffset - prev.PositionY) * m.Params.Smoothing
	if math.IsNaN(next.PositionY) || math.IsInf(next.PositionY, 0) {
		return prev
	}
	return next
}

// FramesToConverge counts the steps needed to get within tolerance (a fraction of
// the initial distance) of a constant target.
func FramesToConverge(smoothing, tolerance float64) int {
	if smoothing <= 0 || smoothing > 1 || tolerance <= 0 || tolerance >= 1 {
		return -1
	}
	if smoothing == 1 {
		return 1
	}
	return int(math.Ceil(math.Log(tolerance) / math.Log(1-smoothing)))
}
