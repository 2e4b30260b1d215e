package renderer

import (
	"math"

	"github.com/ivlev/discoscene/internal/director"
	"github.com/ivlev/discoscene/internal/scene"
)

// PageState represents the page at a specific moment
type PageState struct {
	Scroll  float64      // window.scrollY in pixels
	Pointer *scene.Point // nil when the pointer is outside the canvas
}

// ScrollPx rounds the interpolated scroll to whole pixels, as the browser does.
func (s PageState) ScrollPx() int {
	px := int(math.Round(s.Scroll))
	if px < 0 {
		return 0
	}
	return px
}

// InterpolateKeyframes calculates page state at a given time by interpolating between keyframes
func InterpolateKeyframes(keyframes []director.Keyframe, currentTime float64) PageState {
	if len(keyframes) == 0 {
		return PageState{}
	}

	// If before first keyframe, use first keyframe
	if currentTime <= keyframes[0].Time {
		kf := keyframes[0]
		return PageState{Scroll: float64(kf.Scroll), Pointer: kf.Pointer}
	}

	// If after last keyframe, use last keyframe
	if currentTime >= keyframes[len(keyframes)-1].Time {
		kf := keyframes[len(keyframes)-1]
		return PageState{Scroll: float64(kf.Scroll), Pointer: kf.Pointer}
	}

	// Find surrounding keyframes
	var prevKf, nextKf director.Keyframe
	for i := 0; i < len(keyframes)-1; i++ {
		if currentTime >= keyframes[i].Time && currentTime < keyframes[i+1].Time {
			prevKf = keyframes[i]
			nextKf = keyframes[i+1]
			break
		}
	}

	// Calculate interpolation factor (0.0 to 1.0)
	timeDelta := nextKf.Time - prevKf.Time
	if timeDelta == 0 {
		timeDelta = 0.001 // Avoid division by zero
	}
	t := (currentTime - prevKf.Time) / timeDelta

	// Apply easing (smooth in-out)
	t = easeInOutCubic(t)

	return PageState{
		Scroll:  lerp(float64(prevKf.Scroll), float64(nextKf.Scroll), t),
		Pointer: lerpPointer(prevKf.Pointer, nextKf.Pointer, t),
	}
}

// lerpPointer glides between two pointer positions. Entering or leaving the
// canvas is a step, not a glide.
func lerpPointer(a, b *scene.Point, t float64) *scene.Point {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		if t < 0.5 {
			return nil
		}
		p := *b
		return &p
	case b == nil:
		if t >= 0.5 {
			return nil
		}
		p := *a
		return &p
	}
	return &scene.Point{X: lerp(a.X, b.X, t), Y: lerp(a.Y, b.Y, t)}
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic applies smooth easing function
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
