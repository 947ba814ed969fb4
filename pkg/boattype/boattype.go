// Package boattype maps the integer boat type identifiers used by the host to
// the physics model behind them.
package boattype

import (
	"errors"

	"github.com/sailnavsim/advancedboats/pkg/balance"
	"github.com/sailnavsim/advancedboats/pkg/vector"
)

// Status codes returned across the host boundary by update calls.
const (
	StatusSuccess         int32 = 0
	StatusUnsupportedType int32 = -1
	StatusInvalidArgument int32 = -2
)

// ktsInMps is the number of knots in one metre per second.
const ktsInMps = 1.943844

// ErrUnsupportedType is returned by Update for boat types without a model.
var ErrUnsupportedType = errors.New("unsupported boat type")

// ErrInvalidArgument is returned when the host hands over unusable records.
var ErrInvalidArgument = errors.New("invalid argument")

// Kind is the closed set of boat models.
type Kind int

const (
	// Unmodeled covers every identifier without a physics model.
	Unmodeled Kind = iota
	// ModeledSloop is boat type 0.
	ModeledSloop
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case ModeledSloop:
		return "sloop"
	default:
		return "unmodeled"
	}
}

// FromID maps a host boat type identifier to its Kind.
func FromID(id int32) Kind {
	if id == 0 {
		return ModeledSloop
	}
	return Unmodeled
}

// Input is one update request from the host.
type Input struct {
	WindAngle  float64 // degrees, compass bearing relative to the boat
	WindSpeed  float64 // m/s
	SpeedAhead float64 // m/s
	SpeedAbeam float64 // m/s
	SailArea   float64 // m²
}

// Output is the result of one update.
type Output struct {
	SpeedAhead float64 // m/s
	SpeedAbeam float64 // m/s
	Heel       float64 // degrees, magnitude only
}

// Count returns the number of modeled boat types.
func Count() int32 {
	return 1
}

// Update advances a boat of the given type by one step.
func Update(id int32, in Input) (Output, error) {
	switch FromID(id) {
	case ModeledSloop:
		wind := vector.FromPolar(in.WindAngle, in.WindSpeed)
		boat := vector.FromCartesian(in.SpeedAbeam, in.SpeedAhead)
		v, heel := balance.Solve(wind, boat, in.SailArea, balance.Sloop)
		return Output{
			SpeedAhead: v.Ahead(),
			SpeedAbeam: v.Abeam(),
			Heel:       heel,
		}, nil
	case Unmodeled:
		return Output{}, ErrUnsupportedType
	}
	return Output{}, ErrUnsupportedType
}

// Status converts an Update error into the host status code.
func Status(err error) int32 {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrInvalidArgument):
		return StatusInvalidArgument
	default:
		return StatusUnsupportedType
	}
}

// CourseChangeRate returns how fast a boat type can turn, in degrees per
// update. Unmodeled types cannot turn.
func CourseChangeRate(id int32) float64 {
	switch FromID(id) {
	case ModeledSloop:
		return 5.0
	default:
		return 0
	}
}

// WaveEffectResistance returns how well a boat type resists wave effects.
// Unmodeled types get a very low, non-zero value.
func WaveEffectResistance(id int32) float64 {
	switch FromID(id) {
	case ModeledSloop:
		return 75.0
	default:
		return 0.001
	}
}

// WindGustDamageThreshold returns the gust speed in m/s above which a boat
// type takes damage. Unmodeled types are treated as fragile.
func WindGustDamageThreshold(id int32) float64 {
	switch FromID(id) {
	case ModeledSloop:
		return 45.0 / ktsInMps
	default:
		return 0.001
	}
}
