// Package polar drives the boat model to steady state across wind angles and
// speeds to produce a speed polar.
package polar

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/sailnavsim/advancedboats/pkg/boattype"
)

// Point is the settled state of a boat at one true wind angle and speed.
type Point struct {
	WindSpeed  float64 `csv:"wind_speed"`
	WindAngle  float64 `csv:"wind_angle"`
	SpeedAhead float64 `csv:"speed_ahead"`
	SpeedAbeam float64 `csv:"speed_abeam"`
	Heel       float64 `csv:"heel"`
	VMG        float64 `csv:"vmg"`
	Iterations int     `csv:"iterations"`
	Converged  bool    `csv:"converged"`
}

// SteadyState repeatedly updates a boat that starts at rest under a constant
// true wind until its speed stops changing.
func SteadyState(p *Plan, angle, windSpeed float64) (Point, error) {
	pt := Point{WindSpeed: windSpeed, WindAngle: angle}

	in := boattype.Input{WindAngle: angle, WindSpeed: windSpeed, SailArea: p.SailArea}
	var out boattype.Output
	for pt.Iterations < p.SteadyState.MaxIterations {
		var err error
		out, err = boattype.Update(p.BoatType, in)
		if err != nil {
			return Point{}, fmt.Errorf("angle %v speed %v: %w", angle, windSpeed, err)
		}
		pt.Iterations++

		settled := math.Abs(out.SpeedAhead-in.SpeedAhead) < p.SteadyState.Tolerance &&
			math.Abs(out.SpeedAbeam-in.SpeedAbeam) < p.SteadyState.Tolerance
		in.SpeedAhead, in.SpeedAbeam = out.SpeedAhead, out.SpeedAbeam
		if settled {
			pt.Converged = true
			break
		}
	}

	pt.SpeedAhead = out.SpeedAhead
	pt.SpeedAbeam = out.SpeedAbeam
	pt.Heel = out.Heel
	pt.VMG = VMG(angle, out.SpeedAbeam, out.SpeedAhead)
	return pt, nil
}

// VMG is the component of the boat's velocity towards the wind.
func VMG(windAngle, abeam, ahead float64) float64 {
	rad := windAngle * math.Pi / 180
	return abeam*math.Sin(rad) + ahead*math.Cos(rad)
}

// Sweep computes a polar point for every wind speed and angle in the plan.
func Sweep(ctx context.Context, p *Plan) ([]Point, error) {
	angles := p.Angles.Values()
	points := make([]Point, 0, len(angles)*len(p.WindSpeeds))

	for _, speed := range p.WindSpeeds {
		for _, angle := range angles {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pt, err := SteadyState(p, angle, speed)
			if err != nil {
				return nil, err
			}
			points = append(points, pt)
		}
	}
	return points, nil
}

// WriteCSV writes points with a header row.
func WriteCSV(w io.Writer, points []Point) error {
	if err := gocsv.Marshal(points, w); err != nil {
		return fmt.Errorf("writing polar: %w", err)
	}
	return nil
}

// coarseStep is the grid spacing used to seed the VMG search.
const coarseStep = 5.0

// BestUpwindVMG finds the true wind angle in [0, 90] that makes the most
// progress towards the wind at the given wind speed. A coarse grid picks the
// starting point for a Nelder-Mead refinement.
func BestUpwindVMG(p *Plan, windSpeed float64) (Point, error) {
	var firstErr error
	eval := func(angle float64) Point {
		pt, err := SteadyState(p, angle, windSpeed)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return pt
	}

	best := eval(0)
	for a := coarseStep; a <= 90; a += coarseStep {
		if pt := eval(a); pt.VMG > best.VMG {
			best = pt
		}
	}
	if firstErr != nil {
		return Point{}, firstErr
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return -eval(clampAngle(x[0])).VMG
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: 200,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-9,
			Iterations: 20,
		},
	}
	method := &optimize.NelderMead{
		SimplexSize: coarseStep,
	}

	result, err := optimize.Minimize(problem, []float64{best.WindAngle}, settings, method)
	if firstErr != nil {
		return Point{}, firstErr
	}
	if err != nil || result == nil {
		// the grid answer stands when the refinement fails
		return best, nil
	}

	if refined := eval(clampAngle(result.X[0])); refined.VMG > best.VMG {
		best = refined
	}
	return best, nil
}

func clampAngle(a float64) float64 {
	return math.Max(0, math.Min(90, a))
}

// Rate is a measured update throughput.
type Rate struct {
	Iterations int
	Elapsed    time.Duration
}

// PerSecond returns updates per second.
func (r Rate) PerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Iterations) / r.Elapsed.Seconds()
}

// Throughput runs single boat updates with varying inputs for roughly d and
// reports how many completed.
func Throughput(ctx context.Context, boatType int32, d time.Duration) (Rate, error) {
	const batch = 1000

	in := boattype.Input{SailArea: 30}
	start := time.Now()
	var r Rate
	for time.Since(start) < d {
		if err := ctx.Err(); err != nil {
			return Rate{}, err
		}
		for i := 0; i < batch; i++ {
			in.WindAngle = float64((r.Iterations + i) % 360)
			in.WindSpeed = float64((r.Iterations+i)%25) + 1
			out, err := boattype.Update(boatType, in)
			if err != nil {
				return Rate{}, err
			}
			in.SpeedAhead, in.SpeedAbeam = out.SpeedAhead, out.SpeedAbeam
		}
		r.Iterations += batch
	}
	r.Elapsed = time.Since(start)
	return r, nil
}
