// Package fleet advances every registered boat by one tick.
package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/sailnavsim/advancedboats/internal/registry"
	"github.com/sailnavsim/advancedboats/internal/trace"
	"github.com/sailnavsim/advancedboats/pkg/boattype"
)

// DefaultParallelThreshold is the fleet size below which a step runs on the
// calling goroutine.
const DefaultParallelThreshold = 64

// Wind reports the true wind a boat sees this tick: bearing relative to the
// boat in degrees and speed in m/s.
type Wind func(b registry.Boat) (angle, speed float64)

// Uniform returns a Wind that gives every boat the same wind.
func Uniform(angle, speed float64) Wind {
	return func(registry.Boat) (float64, float64) { return angle, speed }
}

// Sink receives the per-boat records of each step.
type Sink interface {
	Write(records []trace.Record) error
}

// Config tunes the stepper.
type Config struct {
	// Workers caps concurrent goroutines; 0 uses GOMAXPROCS.
	Workers int
	// ParallelThreshold is the minimum fleet size for a concurrent step.
	ParallelThreshold int
}

// Result is one boat's outcome for a tick.
type Result struct {
	Handle registry.Handle
	Boat   string
	Type   int32
	Input  boattype.Input
	Output boattype.Output
	Err    error
}

// Summary describes a completed step.
type Summary struct {
	Tick        uint64
	Stepped     int
	Unsupported int
	Results     []Result
}

// Stepper runs fleet ticks against a registry.
type Stepper struct {
	reg    *registry.Registry
	cfg    Config
	sink   Sink
	logger *slog.Logger
	tick   atomic.Uint64

	stepped     metric.Int64Counter
	unsupported metric.Int64Counter
}

// Option configures a Stepper.
type Option func(*Stepper)

// WithSink streams every step's records to sink.
func WithSink(sink Sink) Option {
	return func(s *Stepper) {
		s.sink = sink
	}
}

// New creates a Stepper. Uses the global OTel meter (no-op if not configured).
func New(reg *registry.Registry, cfg Config, logger *slog.Logger, opts ...Option) (*Stepper, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.ParallelThreshold <= 0 {
		cfg.ParallelThreshold = DefaultParallelThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Stepper{
		reg:    reg,
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	m := meter()

	var err error

	s.stepped, err = m.Int64Counter(
		"fleet.boats.stepped",
		metric.WithDescription("Total boat updates computed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stepped counter: %w", err)
	}

	s.unsupported, err = m.Int64Counter(
		"fleet.boats.unsupported",
		metric.WithDescription("Total boat updates rejected for an unsupported type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating unsupported counter: %w", err)
	}

	return s, nil
}

// Tick returns the number of completed steps.
func (s *Stepper) Tick() uint64 {
	return s.tick.Load()
}

// Step updates every boat in the registry once. Boats of unsupported types
// are reported in the summary and left untouched. Boats removed while the
// step runs are skipped on write-back.
func (s *Stepper) Step(ctx context.Context, wind Wind) (Summary, error) {
	entries := s.reg.All()
	results := make([]Result, len(entries))

	if err := s.compute(ctx, entries, wind, results); err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Tick:    s.tick.Add(1),
		Results: results,
	}

	for i := range results {
		r := &results[i]
		if r.Err != nil {
			sum.Unsupported++
			continue
		}
		err := s.reg.Update(r.Handle, func(b *registry.Boat) {
			b.SpeedAhead = r.Output.SpeedAhead
			b.SpeedAbeam = r.Output.SpeedAbeam
			b.Heel = r.Output.Heel
		})
		if err != nil {
			s.logger.Debug("boat removed during step", "boat", r.Boat, "tick", sum.Tick)
			continue
		}
		sum.Stepped++
	}

	s.stepped.Add(ctx, int64(sum.Stepped))
	if sum.Unsupported > 0 {
		s.unsupported.Add(ctx, int64(sum.Unsupported))
		s.logger.Warn("boats with unsupported type skipped", "count", sum.Unsupported, "tick", sum.Tick)
	}

	if s.sink != nil {
		if err := s.sink.Write(Records(sum)); err != nil {
			return sum, fmt.Errorf("writing step trace: %w", err)
		}
	}

	return sum, nil
}

func (s *Stepper) compute(ctx context.Context, entries []registry.Entry, wind Wind, results []Result) error {
	if len(entries) < s.cfg.ParallelThreshold || s.cfg.Workers == 1 {
		for i := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = stepOne(entries[i], wind)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	chunk := (len(entries) + s.cfg.Workers - 1) / s.cfg.Workers
	for start := 0; start < len(entries); start += chunk {
		end := min(start+chunk, len(entries))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = stepOne(entries[i], wind)
			}
			return nil
		})
	}

	return g.Wait()
}

func stepOne(e registry.Entry, wind Wind) Result {
	angle, speed := wind(e.Boat)
	in := boattype.Input{
		WindAngle:  angle,
		WindSpeed:  speed,
		SpeedAhead: e.Boat.SpeedAhead,
		SpeedAbeam: e.Boat.SpeedAbeam,
		SailArea:   e.Boat.SailArea,
	}
	out, err := boattype.Update(e.Boat.Type, in)
	if err != nil {
		err = fmt.Errorf("boat %q: %w", e.Boat.Name, err)
	}
	return Result{
		Handle: e.Handle,
		Boat:   e.Boat.Name,
		Type:   e.Boat.Type,
		Input:  in,
		Output: out,
		Err:    err,
	}
}

// Records converts a step summary into trace rows.
func Records(sum Summary) []trace.Record {
	records := make([]trace.Record, 0, len(sum.Results))
	for _, r := range sum.Results {
		records = append(records, trace.Record{
			Tick:       sum.Tick,
			Boat:       r.Boat,
			BoatType:   r.Type,
			WindAngle:  r.Input.WindAngle,
			WindSpeed:  r.Input.WindSpeed,
			SailArea:   r.Input.SailArea,
			SpeedAhead: r.Output.SpeedAhead,
			SpeedAbeam: r.Output.SpeedAbeam,
			Heel:       r.Output.Heel,
			Status:     boattype.Status(r.Err),
		})
	}
	return records
}
