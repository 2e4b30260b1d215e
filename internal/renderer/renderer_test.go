package renderer

import (
	"strings"
	"testing"

	"github.com/ivlev/discoscene/internal/director"
	"github.com/ivlev/discoscene/internal/scene"
)

func TestInterpolateKeyframes(t *testing.T) {
	keyframes := []director.Keyframe{
		{Time: 0.0, Focus: "home", Scroll: 0},
		{Time: 2.0, Focus: "disco", Scroll: 480},
		{Time: 4.0, Focus: "about", Scroll: 1280},
	}

	tests := []struct {
		time           float64
		expectedScroll float64
	}{
		{-1.0, 0},   // Before first keyframe
		{0.0, 0},    // First keyframe
		{1.0, 240},  // Midpoint between first and second
		{2.0, 480},  // Second keyframe
		{3.0, 880},  // Midpoint between second and third
		{4.0, 1280}, // Third keyframe
		{5.0, 1280}, // After last keyframe
		{0.5, 30},   // Ease-in: 4*0.25^3 = 0.0625 of 480
		{3.5, 1230}, // Ease-out: 1-(0.5^3)/2 = 0.9375 of 800
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			state := InterpolateKeyframes(keyframes, tt.time)
			if abs(state.Scroll-tt.expectedScroll) > 1e-9 {
				t.Errorf("At time %.1f: expected scroll %.2f, got %.2f", tt.time, tt.expectedScroll, state.Scroll)
			}
		})
	}
}

func TestInterpolateKeyframesEmpty(t *testing.T) {
	state := InterpolateKeyframes(nil, 3)
	if state.Scroll != 0 || state.Pointer != nil {
		t.Errorf("expected zero state, got %+v", state)
	}
}

func TestInterpolatePointer(t *testing.T) {
	keyframes := []director.Keyframe{
		{Time: 0, Scroll: 0},
		{Time: 2, Scroll: 0, Pointer: &scene.Point{X: 100, Y: 100}},
		{Time: 4, Scroll: 0, Pointer: &scene.Point{X: 300, Y: 200}},
	}

	if p := InterpolateKeyframes(keyframes, 0.5).Pointer; p != nil {
		t.Errorf("pointer should still be outside at t=0.5, got %+v", *p)
	}
	if p := InterpolateKeyframes(keyframes, 1.5).Pointer; p == nil || p.X != 100 {
		t.Errorf("pointer should have entered at t=1.5, got %v", p)
	}
	p := InterpolateKeyframes(keyframes, 3)
	if p.Pointer == nil || abs(p.Pointer.X-200) > 1e-9 || abs(p.Pointer.Y-150) > 1e-9 {
		t.Errorf("pointer midpoint: got %v", p.Pointer)
	}

	// The returned pointer must not alias the keyframe.
	got := InterpolateKeyframes(keyframes, 1.5).Pointer
	got.X = -1
	if keyframes[1].Pointer.X != 100 {
		t.Error("interpolated pointer aliases keyframe data")
	}
}

func TestScrollPx(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{10.4, 10},
		{10.5, 11},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := (PageState{Scroll: tt.in}).ScrollPx(); got != tt.want {
			t.Errorf("ScrollPx(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestGenerateScrollExpression(t *testing.T) {
	keyframes := []director.Keyframe{
		{Time: 0.0, Scroll: 0},
		{Time: 2.0, Scroll: 480},
		{Time: 4.0, Scroll: 1280},
	}

	expr := GenerateScrollExpression(keyframes, 30)
	if !strings.HasPrefix(expr, "max(0\\,round(if(lte(n/30\\,0)\\,0") {
		t.Errorf("Expression should hold the first scroll before the first keyframe, got %s", expr)
	}
	if strings.Count(expr, "(") != strings.Count(expr, ")") {
		t.Errorf("Unbalanced parentheses: %s", expr)
	}
	if strings.Contains(strings.ReplaceAll(expr, "\\,", ""), ",") {
		t.Errorf("Unescaped comma: %s", expr)
	}
	if strings.Contains(expr, ";") {
		t.Errorf("Expression must not contain a filtergraph separator: %s", expr)
	}

	if got := GenerateScrollExpression(keyframes[:1], 30); got != "0" {
		t.Errorf("single keyframe: got %q", got)
	}
	if got := GenerateScrollExpression(nil, 30); got != "0" {
		t.Errorf("no keyframes: got %q", got)
	}

	t.Logf("Generated expression: %s", expr)
}

func TestScrollExpressionMatchesInterpolation(t *testing.T) {
	tour, err := director.NewDirector(1280, 800).GenerateScenario(20)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		keyframes []director.Keyframe
		fps       int
		seconds   float64
	}{
		{"Linear10s", []director.Keyframe{{Time: 0, Scroll: 0}, {Time: 10, Scroll: 1000}}, 30, 11},
		{"ScrollBack", []director.Keyframe{{Time: 0.5, Scroll: 1280}, {Time: 2.5, Scroll: 480}, {Time: 3, Scroll: 480}}, 24, 4},
		{"HeldKeyframe", []director.Keyframe{{Time: 0, Scroll: 0}, {Time: 1, Scroll: 300}, {Time: 1, Scroll: 300}, {Time: 2.2, Scroll: 0}}, 25, 3},
		{"Tour", tour.Keyframes, 30, 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := GenerateScrollExpression(tt.keyframes, tt.fps)
			eval, err := parseFFmpegExpr(expr)
			if err != nil {
				t.Fatalf("expression does not parse: %v\n%s", err, expr)
			}
			frames := int(tt.seconds * float64(tt.fps))
			for n := 0; n <= frames; n++ {
				want := InterpolateKeyframes(tt.keyframes, float64(n)/float64(tt.fps)).ScrollPx()
				if got := eval(float64(n)); got != float64(want) {
					t.Fatalf("frame %d: expression gives %v, scene is driven by %d", n, got, want)
				}
			}
		})
	}

	// Quarter of the way through an eased 0->1000 segment.
	eval, err := parseFFmpegExpr(GenerateScrollExpression(
		[]director.Keyframe{{Time: 0, Scroll: 0}, {Time: 10, Scroll: 1000}}, 30))
	if err != nil {
		t.Fatal(err)
	}
	if got := eval(75); got != 63 {
		t.Errorf("frame 75: got %v, want 63", got)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
