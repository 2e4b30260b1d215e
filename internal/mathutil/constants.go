package mathutil

import "math"

// Epsilon is the shortest vector length treated as non-zero.
const Epsilon = 1e-12

// TwoPi is one full turn in radians.
const TwoPi = 2 * math.Pi

func Deg2Rad(d float64) float64 { return d * math.Pi / 180 }

func Rad2Deg(r float64) float64 { return r * 180 / math.Pi }

// WrapAngle maps any angle into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	if a >= TwoPi {
		a = 0
	}
	return a
}

// AngleDist returns the shortest angular distance between two angles in radians (0–π).
func AngleDist(a, b float64) float64 {
	d := WrapAngle(a - b)
	if d > math.Pi {
		return TwoPi - d
	}
	return d
}
