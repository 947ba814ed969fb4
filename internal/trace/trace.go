// Package trace records per-boat step results as CSV rows.
package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
)

// FileName is the trace file created inside the output directory.
const FileName = "steps.csv"

// Record is one boat's result for one fleet tick.
type Record struct {
	Tick       uint64  `csv:"tick"`
	Boat       string  `csv:"boat"`
	BoatType   int32   `csv:"boat_type"`
	WindAngle  float64 `csv:"wind_angle"`
	WindSpeed  float64 `csv:"wind_speed"`
	SailArea   float64 `csv:"sail_area"`
	SpeedAhead float64 `csv:"speed_ahead"`
	SpeedAbeam float64 `csv:"speed_abeam"`
	Heel       float64 `csv:"heel"`
	Status     int32   `csv:"status"`
}

// Writer appends records to a CSV stream, emitting the header once.
// A nil *Writer discards everything.
type Writer struct {
	mu            sync.Mutex
	w             io.Writer
	closer        io.Closer
	headerWritten bool
}

// NewWriter writes to w. The caller keeps ownership of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Create opens dir/steps.csv, creating dir if needed. Returns nil when dir is
// empty (tracing disabled).
func Create(dir string) (*Writer, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating trace directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", FileName, err)
	}

	return &Writer{w: f, closer: f}, nil
}

// Write appends records.
func (tw *Writer) Write(records []Record) error {
	if tw == nil || len(records) == 0 {
		return nil
	}

	tw.mu.Lock()
	defer tw.mu.Unlock()

	if !tw.headerWritten {
		if err := gocsv.Marshal(records, tw.w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		tw.headerWritten = true
		return nil
	}

	if err := gocsv.MarshalWithoutHeaders(records, tw.w); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// Close closes the underlying file when the Writer owns one.
func (tw *Writer) Close() error {
	if tw == nil || tw.closer == nil {
		return nil
	}
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.closer.Close()
}

// Read parses a trace produced by Writer.
func Read(r io.Reader) ([]Record, error) {
	var records []Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return records, nil
}
