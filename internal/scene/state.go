package scene

import (
	"image/color"
	"math"

	"github.com/ivlev/discoscene/internal/atmosphere"
	"github.com/ivlev/discoscene/internal/camera"
	"github.com/ivlev/discoscene/internal/carousel"
	"github.com/ivlev/discoscene/internal/clock"
	"github.com/ivlev/discoscene/internal/mathutil"
	"github.com/ivlev/discoscene/internal/orbit"
)

// Transform is position plus rotation (radians) of one entity.
type Transform struct {
	Position mathutil.Vec3
	Rotation mathutil.Vec3
	Scale    float64
	Visible  bool
}

// LightState is a light's transform for one frame.
type LightState struct {
	Name     string
	Color    color.RGBA
	Position mathutil.Vec3
}

// SceneState is the full, self-contained frame handed to the renderer. Nothing in
// it points back into the Scene, so states can be rendered concurrently.
type SceneState struct {
	Tick       clock.Tick
	Scroll     camera.ScrollState
	Camera     camera.State
	Ball       Transform
	String     Transform
	Lights     []LightState
	Cards      []carousel.Placement
	Atmosphere atmosphere.Snapshot
	Hovered    []string
}

// Initial is the state at mount, before the first tick.
func (s *Scene) Initial() SceneState {
	return SceneState{Camera: camera.Initial()}
}

// Update computes the next frame. Within the frame the camera moves first, then
// the lights and the ring are evaluated against that camera, so every entity
// sees the same tick and scroll snapshot.
func (s *Scene) Update(prev SceneState, tick clock.Tick, scroll camera.ScrollState) SceneState {
	t := tick.Elapsed
	next := SceneState{
		Tick:    tick,
		Scroll:  scroll,
		Camera:  s.mapper.Step(prev.Camera, scroll),
		Hovered: prev.Hovered,
	}

	focus := next.Camera.Target

	next.Ball = Transform{
		Position: focus,
		Rotation: mathutil.Vec3{0, t * s.cfg.BallSpin, 0},
		Scale:    s.cfg.BallScale,
		Visible:  s.ball.Ready(),
	}

	next.String = Transform{
		Position: mathutil.Vec3{focus[0], focus[1] + s.cfg.StringTop, focus[2]},
		Rotation: mathutil.Vec3{0, 0, math.Sin(t*s.cfg.SwaySpeed) * s.cfg.SwayAngle},
		Scale:    1,
		Visible:  true,
	}

	next.Lights = make([]LightState, len(s.lights))
	for i, l := range s.lights {
		next.Lights[i] = LightState{
			Name:     l.Name,
			Color:    l.Color,
			Position: focus.Add(orbit.Position(l.orbit, t)),
		}
	}

	next.Cards = s.ring.Layout(t, next.Camera.Position(), focus)
	next.Atmosphere = s.atmosphere.At(t)

	return next
}
