// Package vector provides the 2-D vector used by the boat physics kernel.
//
// Vectors live in the boat's frame: X runs abeam (positive to starboard) and
// Y runs ahead. Angles are compass-style bearings in degrees, measured
// clockwise from the ahead axis.
package vector

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for near-zero checks and approximate equality.
const Epsilon = 1e-8

// Vec2 is an immutable 2-D vector. Every operation returns a new value.
type Vec2 struct {
	x float64
	y float64
}

// FromPolar builds a vector from a bearing (degrees) and a magnitude.
// A negative magnitude points the vector the opposite way.
func FromPolar(angle, magnitude float64) Vec2 {
	angle, magnitude = normalizePolar(angle, magnitude)
	rad := angle * math.Pi / 180
	return Vec2{
		x: magnitude * math.Sin(rad),
		y: magnitude * math.Cos(rad),
	}
}

// FromCartesian builds a vector from its abeam (x) and ahead (y) components.
func FromCartesian(x, y float64) Vec2 {
	return Vec2{x: x, y: y}
}

// Abeam returns the abeam (x) component.
func (v Vec2) Abeam() float64 { return v.x }

// Ahead returns the ahead (y) component.
func (v Vec2) Ahead() float64 { return v.y }

// Angle returns the bearing of the vector in degrees, in [0, 360).
func (v Vec2) Angle() float64 {
	if math.Abs(v.y) < Epsilon {
		switch {
		case v.x > Epsilon:
			return 90
		case v.x < -Epsilon:
			return 270
		default:
			return 0
		}
	}

	a := math.Atan(v.x/v.y) * 180 / math.Pi
	switch {
	case v.y < 0:
		a += 180
	case v.x < 0:
		a += 360
	}

	// a tiny negative atan plus 360 rounds up to 360
	if a >= 360 {
		a -= 360
	}
	return a
}

// Magnitude returns the Euclidean norm.
func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.x*v.x + v.y*v.y)
}

// Add returns the component-wise sum.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.x + o.x, v.y + o.y} }

// Scale multiplies both components by k.
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.x * k, v.y * k} }

// Reverse negates both components.
func (v Vec2) Reverse() Vec2 { return Vec2{-v.x, -v.y} }

// MirrorAbeam negates the abeam component only.
func (v Vec2) MirrorAbeam() Vec2 { return Vec2{-v.x, v.y} }

// MirrorAhead negates the ahead component only.
func (v Vec2) MirrorAhead() Vec2 { return Vec2{v.x, -v.y} }

// Equal reports whether both components differ by less than Epsilon.
func (v Vec2) Equal(o Vec2) bool {
	return math.Abs(v.x-o.x) < Epsilon && math.Abs(v.y-o.y) < Epsilon
}

// String implements fmt.Stringer.
func (v Vec2) String() string {
	return fmt.Sprintf("Vec2{x: %g, y: %g, angle: %g, mag: %g}", v.x, v.y, v.Angle(), v.Magnitude())
}

// NormalizeAngle reduces a bearing into [0, 360).
func NormalizeAngle(angle float64) float64 {
	// Mod first so huge inputs don't spin the adjustment loops forever.
	if math.Abs(angle) >= 360 {
		angle = math.Mod(angle, 360)
	}
	for angle < 0 {
		angle += 360
	}
	for angle >= 360 {
		angle -= 360
	}
	return angle
}

func normalizePolar(angle, magnitude float64) (float64, float64) {
	if magnitude < 0 {
		angle += 180
		magnitude = -magnitude
	}
	return NormalizeAngle(angle), magnitude
}
