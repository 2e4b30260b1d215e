package mathutil

import "math"

// Vec3 is a 3-component vector (value type, stack-allocated).
type Vec3 [3]float64

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

func (a Vec3) Dot(b Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Unit returns the normalized vector and false when v has no usable length.
func (v Vec3) Unit() (Vec3, bool) {
	l := v.Len()
	if l < Epsilon {
		return Vec3{}, false
	}
	return Vec3{v[0] / l, v[1] / l, v[2] / l}, true
}

// Normalize returns the zero vector for degenerate input.
func (v Vec3) Normalize() Vec3 {
	u, _ := v.Unit()
	return u
}

// RotY rotates v around the vertical axis by angle radians.
func (v Vec3) RotY(angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{v[0]*c + v[2]*s, v[1], -v[0]*s + v[2]*c}
}

// AngleBetween returns the angle in radians between two unit vectors.
// The dot product is clamped so rounding never pushes acos out of its domain.
func AngleBetween(a, b Vec3) float64 {
	d := a.Dot(b)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d)
}
