package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/sailnavsim/advancedboats/internal/polar"
)

// runPolar sweeps the plan and writes the polar CSV, optionally followed by
// the best upwind VMG per wind speed and a kernel throughput figure.
func runPolar(args []string, stdout, stderr io.Writer, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("polar", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planPath := fs.String("plan", "", "Plan YAML file (empty = built-in defaults)")
	outPath := fs.String("out", "", "Polar CSV output file (empty = stdout)")
	vmg := fs.Bool("vmg", false, "Report the best upwind VMG angle per wind speed")
	perf := fs.Duration("perf", 0, "Measure kernel throughput for this long (0 = skip)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	plan, err := polar.LoadPlan(*planPath)
	if err != nil {
		return err
	}
	logger.Info().
		Int32("boat_type", plan.BoatType).
		Float64("sail_area", plan.SailArea).
		Int("angles", len(plan.Angles.Values())).
		Int("wind_speeds", len(plan.WindSpeeds)).
		Msg("Sweeping polar")

	ctx := context.Background()
	start := time.Now()
	points, err := polar.Sweep(ctx, plan)
	if err != nil {
		return err
	}

	unconverged := 0
	for _, p := range points {
		if !p.Converged {
			unconverged++
		}
	}
	logger.Info().Int("points", len(points)).Int("unconverged", unconverged).Dur("elapsed", time.Since(start)).Msg("Sweep complete")

	out := stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", *outPath, err)
		}
		defer f.Close()
		out = f
	}
	if err := polar.WriteCSV(out, points); err != nil {
		return err
	}

	if *vmg {
		for _, ws := range plan.WindSpeeds {
			best, err := polar.BestUpwindVMG(plan, ws)
			if err != nil {
				return err
			}
			logger.Info().
				Float64("wind_speed", ws).
				Float64("wind_angle", best.WindAngle).
				Float64("vmg", best.VMG).
				Float64("speed_ahead", best.SpeedAhead).
				Msg("Best upwind VMG")
		}
	}

	if *perf > 0 {
		rate, err := polar.Throughput(ctx, plan.BoatType, *perf)
		if err != nil {
			return err
		}
		logger.Info().
			Int("iterations", rate.Iterations).
			Dur("elapsed", rate.Elapsed).
			Float64("per_second", rate.PerSecond()).
			Msg("Kernel throughput")
	}

	return nil
}

// runPlan writes the built-in plan so it can be edited.
func runPlan(args []string, stderr io.Writer, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outPath := fs.String("out", "plan.yaml", "Plan YAML output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	plan, err := polar.LoadPlan("")
	if err != nil {
		return err
	}
	if err := plan.WriteYAML(*outPath); err != nil {
		return err
	}
	logger.Info().Str("path", *outPath).Msg("Wrote default plan")
	return nil
}
