// Package sail models the force a single sail in ideal trim produces for a
// given apparent wind.
package sail

import (
	"math"

	"github.com/sailnavsim/advancedboats/pkg/vector"
)

// BucketWidth is the apparent wind angle span, in degrees, between table entries.
const BucketWidth = 10.0

// lastBucket is the highest index interpolation starts from.
const lastBucket = 18

// Coefficient is a relative sail force in ideal trim.
type Coefficient struct {
	Abeam float64
	Ahead float64
}

// responseTable holds the sail force coefficients at 10° apparent wind
// increments from dead upwind (0°) to dead downwind (180°). The final entry
// pads the table and never contributes to an interpolation.
var responseTable = [20]Coefficient{
	{0, -20},   // 0
	{40, -10},  // 10
	{180, 40},  // 20
	{200, 120}, // 30
	{180, 160}, // 40
	{140, 180}, // 50
	{120, 200}, // 60
	{100, 210}, // 70
	{80, 220},  // 80
	{70, 230},  // 90
	{60, 240},  // 100
	{55, 250},  // 110
	{50, 255},  // 120
	{45, 260},  // 130
	{40, 260},  // 140
	{40, 255},  // 150
	{45, 230},  // 160
	{50, 200},  // 170
	{0, 150},   // 180
	{0, 0},
}

// Table returns a copy of the response table.
func Table() [20]Coefficient {
	return responseTable
}

// bucket maps an angle in [0, 180] to a table index and the blend fraction
// toward the next entry.
func bucket(angle float64) (int, float64) {
	pos := angle / BucketWidth
	index := int(math.Floor(pos))
	switch {
	case index < 0:
		return 0, 0
	case index >= lastBucket:
		return lastBucket, 0
	}
	return index, pos - float64(index)
}

// Coefficients returns the unscaled sail force for an apparent wind bearing.
// Bearings past 180° use the mirrored response of the opposite tack.
func Coefficients(angle float64) vector.Vec2 {
	angle = vector.NormalizeAngle(angle)

	otherTack := false
	if angle > 180 {
		angle = 360 - angle
		otherTack = true
	}

	i, frac := bucket(angle)
	c0, c1 := responseTable[i], responseTable[i+1]
	f := vector.FromCartesian(
		c0.Abeam*(1-frac)+c1.Abeam*frac,
		c0.Ahead*(1-frac)+c1.Ahead*frac,
	)

	if otherTack {
		f = f.MirrorAbeam()
	}
	return f
}

// Force returns the sail force for the apparent wind vector and sail area (m²).
// Force grows linearly with area and with the square of apparent wind speed.
func Force(apparent vector.Vec2, area float64) vector.Vec2 {
	mag := apparent.Magnitude()
	return Coefficients(apparent.Angle()).Scale(area * mag * mag)
}
