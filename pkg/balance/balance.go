// Package balance finds the velocity at which the aerodynamic forces on a
// sailboat are matched by the hydrodynamic drag of its hull.
//
// The balance is solved in closed form per axis by inverting the quadratic
// drag law, so a step costs a fixed handful of trigonometric evaluations.
package balance

import (
	"math"

	"github.com/sailnavsim/advancedboats/pkg/sail"
	"github.com/sailnavsim/advancedboats/pkg/vector"
)

const (
	// WaterDensity in kg/m³.
	WaterDensity = 1000.0
	// AirDensity in kg/m³.
	AirDensity = 1.204
)

// maxHeel keeps the heel strictly below 90°; atan of a huge heeling moment
// rounds to exactly π/2 in float64.
var maxHeel = math.Nextafter(90, 0)

// Hull holds the physical constants of one boat type.
// Every area and drag coefficient must be positive.
type Hull struct {
	AheadWaterArea float64 // m²
	AheadWaterDrag float64
	AbeamWaterArea float64 // m²
	AbeamWaterDrag float64

	AheadAirArea float64 // m²
	AheadAirDrag float64
	AbeamAirArea float64 // m²
	AbeamAirDrag float64

	// AbeamAirAreaPerDegHeel is the extra hull exposed to the wind for every
	// degree of heel, in m²/deg.
	AbeamAirAreaPerDegHeel float64

	// RightingForce opposes the heeling moment of the sail.
	RightingForce float64
}

// Sloop is the one modeled boat.
var Sloop = Hull{
	AheadWaterArea: 2.5,
	AheadWaterDrag: 0.3,
	AbeamWaterArea: 7.0,
	AbeamWaterDrag: 1.25,

	AheadAirArea: 3.5,
	AheadAirDrag: 0.5,
	AbeamAirArea: 9.0,
	AbeamAirDrag: 0.7,

	AbeamAirAreaPerDegHeel: 0.12,

	RightingForce: 10_000,
}

// Solve returns the boat's new velocity and its heel angle in degrees for one
// step, given the true wind vector, the boat's current velocity and its sail
// area in m².
func Solve(wind, boat vector.Vec2, sailArea float64, h Hull) (vector.Vec2, float64) {
	apparent := wind.Add(boat)

	fSail := sail.Force(apparent, sailArea)
	heel := HeelAngle(fSail, sailArea, h.RightingForce)

	// One cosine for the heeled sail presenting less area to the wind, one
	// for its sideways force tilting out of the horizontal.
	heelCos := math.Cos(toRadians(heel))
	fSail = fSail.Scale(heelCos * heelCos)

	relAir := apparent.Reverse()
	fAir := vector.FromCartesian(
		Drag(AirDensity, relAir.Abeam(), h.AbeamAirDrag, h.AbeamAirArea+h.AbeamAirAreaPerDegHeel*heel),
		Drag(AirDensity, relAir.Ahead(), h.AheadAirDrag, h.AheadAirArea),
	)

	fAero := fSail.Add(fAir)

	vAbeam := Speed(fAero.Abeam(), WaterDensity, h.AbeamWaterDrag, h.AbeamWaterArea*heelCos)
	vAhead := Speed(fAero.Ahead(), WaterDensity, h.AheadWaterDrag, h.AheadWaterArea)

	// Average with the previous velocity to damp step-to-step oscillation.
	return vector.FromCartesian(
		(boat.Abeam()+vAbeam)/2,
		(boat.Ahead()+vAhead)/2,
	), heel
}

// HeelAngle returns the heel in degrees produced by a sail force. The centre
// of effort sits at sqrt(area), as for a triangular sail.
func HeelAngle(fSail vector.Vec2, sailArea, rightingForce float64) float64 {
	moment := math.Abs(fSail.Abeam()) * math.Sqrt(sailArea)
	heel := math.Atan(moment/rightingForce) * 180 / math.Pi
	return math.Min(heel, maxHeel)
}

// Drag returns the signed quadratic drag force of a fluid of density d moving
// at v past an area a with drag coefficient c.
func Drag(d, v, c, a float64) float64 {
	f := 0.5 * d * v * v * c * a
	if v >= 0 {
		return f
	}
	return -f
}

// Speed inverts Drag: the signed speed at which drag equals f.
func Speed(f, d, c, a float64) float64 {
	if f >= 0 {
		return math.Sqrt(2 * f / (d * c * a))
	}
	return -math.Sqrt(-2 * f / (d * c * a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
