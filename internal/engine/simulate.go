package engine

import (
	"github.com/ivlev/discoscene/internal/camera"
	"github.com/ivlev/discoscene/internal/clock"
	"github.com/ivlev/discoscene/internal/director"
	"github.com/ivlev/discoscene/internal/renderer"
	"github.com/ivlev/discoscene/internal/scene"
)

// ProjectorFunc returns the projector matching what will be drawn for st.
type ProjectorFunc func(st scene.SceneState) scene.Projector

// Session is the result of playing a scenario against a scene.
type Session struct {
	States []scene.SceneState
	Events []FrameEvent
}

// FrameEvent is an input event tagged with the frame it happened on.
type FrameEvent struct {
	Frame int
	scene.Event
}

// Simulate plays the scenario frame by frame. This is the host frame loop: it
// is the only writer of the camera state, and every frame sees one tick and
// one scroll snapshot. Pointer positions are mapped from the scenario
// viewport onto the width×height raster the projector works in.
func Simulate(sc *scene.Scene, scenario *director.Scenario, clk clock.Clock, frames, width, height int, proj ProjectorFunc) Session {
	vw, vh := scenario.Viewport.Width, scenario.Viewport.Height

	sess := Session{States: make([]scene.SceneState, 0, frames)}
	st := sc.Initial()
	for i := 0; i < frames; i++ {
		tick := clk.Next()
		page := renderer.InterpolateKeyframes(scenario.Keyframes, tick.Elapsed)
		scroll := camera.ScrollState{ScrollOffsetPx: page.ScrollPx(), ViewportHeightPx: vh}

		st = sc.Update(st, tick, scroll)

		var pointer *scene.Point
		if page.Pointer != nil && vw > 0 && vh > 0 {
			pointer = &scene.Point{
				X: page.Pointer.X * float64(width) / float64(vw),
				Y: page.Pointer.Y * float64(height) / float64(vh),
			}
		}
		var events []scene.Event
		st, events = scene.RouteInput(st, pointer, proj(st))
		for _, ev := range events {
			sess.Events = append(sess.Events, FrameEvent{Frame: tick.Frame, Event: ev})
		}

		sess.States = append(sess.States, st)
	}
	return sess
}
