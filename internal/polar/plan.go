package polar

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Plan describes a polar sweep.
type Plan struct {
	BoatType    int32             `yaml:"boat_type"`
	SailArea    float64           `yaml:"sail_area"`
	Angles      AngleRange        `yaml:"angles"`
	WindSpeeds  []float64         `yaml:"wind_speeds"`
	SteadyState SteadyStateConfig `yaml:"steady_state"`
}

// AngleRange is an inclusive range of true wind angles in degrees.
type AngleRange struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
	Step float64 `yaml:"step"`
}

// SteadyStateConfig bounds the fixed-point iteration run at each polar point.
type SteadyStateConfig struct {
	MaxIterations int     `yaml:"max_iterations"` // updates before giving up
	Tolerance     float64 `yaml:"tolerance"`      // m/s change that counts as settled
}

// Values returns every angle in the range.
func (r AngleRange) Values() []float64 {
	var out []float64
	n := int((r.To-r.From)/r.Step + 1e-9)
	for i := 0; i <= n; i++ {
		out = append(out, r.From+float64(i)*r.Step)
	}
	return out
}

// LoadPlan reads a plan from a YAML file layered over the embedded defaults.
// An empty path yields the defaults.
func LoadPlan(path string) (*Plan, error) {
	p := &Plan{}
	if err := yaml.Unmarshal(defaultsYAML, p); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading plan file: %w", err)
		}
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("parsing plan file: %w", err)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that the plan describes a finite sweep.
func (p *Plan) Validate() error {
	var errs []error
	if p.SailArea <= 0 {
		errs = append(errs, fmt.Errorf("sail_area must be positive, got %v", p.SailArea))
	}
	if p.Angles.Step <= 0 {
		errs = append(errs, fmt.Errorf("angles.step must be positive, got %v", p.Angles.Step))
	}
	if p.Angles.To < p.Angles.From {
		errs = append(errs, fmt.Errorf("angles.to (%v) is below angles.from (%v)", p.Angles.To, p.Angles.From))
	}
	if len(p.WindSpeeds) == 0 {
		errs = append(errs, errors.New("wind_speeds is empty"))
	}
	if p.SteadyState.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("steady_state.max_iterations must be positive, got %d", p.SteadyState.MaxIterations))
	}
	if p.SteadyState.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("steady_state.tolerance must be positive, got %v", p.SteadyState.Tolerance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid plan: %w", errors.Join(errs...))
	}
	return nil
}

// WriteYAML saves the plan, so a sweep's output directory records what
// produced it.
func (p *Plan) WriteYAML(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing plan file: %w", err)
	}
	return nil
}
