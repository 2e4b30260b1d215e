package orbit

import (
	"math"
	"testing"
)

func TestPositionStaysOnCircle(t *testing.T) {
	tests := []Params{
		{BaseRadius: 3, AngularSpeed: 0.5},
		{BaseRadius: 3, AngularSpeed: 0.4, PhaseOffset: math.Pi * 6 / 5, VerticalOffset: 1.2, RadiusScale: 0.9},
		{BaseRadius: 3, AngularSpeed: -0.6, PhaseOffset: math.Pi * 8 / 5, RadiusScale: 1.1},
		{BaseRadius: 15, AngularSpeed: 0.3, Bob: &Bob{Frequency: 0.5, Amplitude: 3, Phase: 2}},
	}

	for _, p := range tests {
		d := mustNew(t, p)
		want := d.Radius()
		for _, elapsed := range []float64{0, 0.016, 1, 12.5, 600, 86400} {
			pos := Position(d, elapsed)
			got := math.Hypot(pos[0], pos[2])
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("%+v at t=%.3f: xz radius %f, want %f", p, elapsed, got, want)
			}
		}
	}
}

func TestPositionIsPure(t *testing.T) {
	d := mustNew(t, Params{BaseRadius: 3, AngularSpeed: 0.5, PhaseOffset: 1, Bob: &Bob{Frequency: 2, Amplitude: 0.5}})
	a := Position(d, 4.2)
	b := Position(d, 4.2)
	if a != b {
		t.Errorf("expected identical positions, got %v and %v", a, b)
	}
}

func TestVerticalOffset(t *testing.T) {
	d := mustNew(t, Params{BaseRadius: 3, AngularSpeed: 0.5, VerticalOffset: 2})
	if y := Position(d, 7)[1]; y != 2 {
		t.Errorf("expected y=2, got %f", y)
	}

	bob := mustNew(t, Params{BaseRadius: 15, VerticalOffset: 0, Bob: &Bob{Frequency: 0.5, Amplitude: 3, Phase: 1}})
	want := math.Sin(0.5*2+1) * 3
	if y := Position(bob, 2)[1]; math.Abs(y-want) > 1e-12 {
		t.Errorf("expected bobbing y=%f, got %f", want, y)
	}
}

func TestDistinctPhasesNeverCoincide(t *testing.T) {
	phases := []float64{0, math.Pi * 2 / 5, math.Pi * 4 / 5, math.Pi * 6 / 5, math.Pi * 8 / 5}
	var ds []Descriptor
	for _, ph := range phases {
		ds = append(ds, mustNew(t, Params{BaseRadius: 3, AngularSpeed: 0.5, PhaseOffset: ph}))
	}
	if err := ValidateSet(ds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, elapsed := range []float64{0, 1.5, 30, 1000} {
		for i := range ds {
			for j := i + 1; j < len(ds); j++ {
				a, b := Position(ds[i], elapsed), Position(ds[j], elapsed)
				if a.Sub(b).Len() < 1e-6 {
					t.Errorf("orbits %d and %d coincide at t=%f", i, j, elapsed)
				}
			}
		}
	}
}

func TestValidateSetRejectsCoincidentPaths(t *testing.T) {
	a := mustNew(t, Params{BaseRadius: 3, AngularSpeed: 0.5, PhaseOffset: 1})
	b := mustNew(t, Params{BaseRadius: 3, AngularSpeed: 0.5, PhaseOffset: 1 + 2*math.Pi})
	if err := ValidateSet([]Descriptor{a, b}); err == nil {
		t.Error("expected error for coincident paths")
	}

	// Same phase but a different radius scale is a different path.
	c := mustNew(t, Params{BaseRadius: 3, AngularSpeed: 0.5, PhaseOffset: 1, RadiusScale: 1.1})
	if err := ValidateSet([]Descriptor{a, c}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"zero radius", Params{BaseRadius: 0}},
		{"negative radius", Params{BaseRadius: -1}},
		{"negative scale", Params{BaseRadius: 1, RadiusScale: -1}},
		{"nan speed", Params{BaseRadius: 1, AngularSpeed: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.p); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	d := mustNew(t, Params{BaseRadius: 1, PhaseOffset: -math.Pi / 2})
	if got := d.PhaseOffset(); math.Abs(got-3*math.Pi/2) > 1e-12 {
		t.Errorf("expected wrapped phase %f, got %f", 3*math.Pi/2, got)
	}
}

func mustNew(t *testing.T, p Params) Descriptor {
	t.Helper()
	d, err := New(p)
	if err != nil {
		t.Fatalf("New(%+v): %v", p, err)
	}
	return d
}
