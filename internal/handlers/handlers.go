// Package handlers implements the host text commands on top of the boat
// kernel, the registry and the fleet stepper.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sailnavsim/advancedboats/internal/dispatcher"
	"github.com/sailnavsim/advancedboats/internal/fleet"
	"github.com/sailnavsim/advancedboats/internal/registry"
	"github.com/sailnavsim/advancedboats/internal/util"
	"github.com/sailnavsim/advancedboats/pkg/boattype"
)

// logQueueSize bounds host log lines waiting to be written.
const logQueueSize = 500

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Registry *registry.Registry
	Fleet    *fleet.Stepper
	Logger   *slog.Logger

	// WriteLog receives :LOG: lines. Nil discards them.
	WriteLog func(source, data, level string)

	ExtensionVersion string
	BuildDate        string
}

// Service provides the command handlers.
type Service struct {
	deps   Dependencies
	logger *slog.Logger
}

// BoatState is the :REGISTRY:GET: reply.
type BoatState struct {
	Handle     uint64  `json:"handle"`
	Name       string  `json:"name"`
	Type       int32   `json:"type"`
	SailArea   float64 `json:"sailArea"`
	SpeedAhead float64 `json:"speedAhead"`
	SpeedAbeam float64 `json:"speedAbeam"`
	Heel       float64 `json:"heel"`
}

// StepReport is the :FLEET:STEP: reply.
type StepReport struct {
	Tick        uint64 `json:"tick"`
	Stepped     int    `json:"stepped"`
	Unsupported int    `json:"unsupported"`
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{deps: deps, logger: logger}
}

// Register installs every command on d.
func (s *Service) Register(d *dispatcher.Dispatcher) {
	d.Register(":VERSION:", func(e dispatcher.Event) (any, error) {
		return []string{s.deps.ExtensionVersion, s.deps.BuildDate}, nil
	})

	d.Register(":BOAT:TYPES:", func(e dispatcher.Event) (any, error) {
		return boattype.Count(), nil
	})
	d.Register(":BOAT:UPDATE:", s.BoatUpdate, dispatcher.MinArgs(6))
	d.Register(":BOAT:RATES:", s.BoatRates, dispatcher.MinArgs(1))

	d.Register(":REGISTRY:ADD:", s.RegistryAdd, dispatcher.MinArgs(3), dispatcher.Logged())
	d.Register(":REGISTRY:REMOVE:", s.RegistryRemove, dispatcher.MinArgs(1), dispatcher.Logged())
	d.Register(":REGISTRY:GET:", s.RegistryGet, dispatcher.MinArgs(1))
	d.Register(":REGISTRY:COUNT:", func(e dispatcher.Event) (any, error) {
		return s.deps.Registry.Len(), nil
	})

	d.Register(":GROUP:ADD:", s.GroupAdd, dispatcher.MinArgs(2))
	d.Register(":GROUP:REMOVE:", s.GroupRemove, dispatcher.MinArgs(2))
	d.Register(":GROUP:MEMBERS:", s.GroupMembers, dispatcher.MinArgs(1))
	d.Register(":GROUP:COUNT:", func(e dispatcher.Event) (any, error) {
		return s.deps.Registry.GroupCount(), nil
	})

	d.Register(":FLEET:STEP:", s.FleetStep, dispatcher.MinArgs(2), dispatcher.Logged())

	d.Register(":LOG:", s.Log, dispatcher.MinArgs(2), dispatcher.Buffered(logQueueSize))
}

// invalid marks a parse failure so the host sees the invalid argument status.
func invalid(err error) error {
	return fmt.Errorf("%w: %v", boattype.ErrInvalidArgument, err)
}

func parseFloats(args []string, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		v, err := util.ParseFloat(name, args[i])
		if err != nil {
			return nil, invalid(err)
		}
		out[i] = v
	}
	return out, nil
}

// BoatUpdate runs one kernel step.
// Args: boat type, wind angle, wind speed, speed ahead, speed abeam, sail area.
// Reply: [speed ahead, speed abeam, heel].
func (s *Service) BoatUpdate(e dispatcher.Event) (any, error) {
	id, err := util.ParseInt32("boat type", e.Args[0])
	if err != nil {
		return nil, invalid(err)
	}
	v, err := parseFloats(e.Args[1:], "wind angle", "wind speed", "speed ahead", "speed abeam", "sail area")
	if err != nil {
		return nil, err
	}

	out, err := boattype.Update(id, boattype.Input{
		WindAngle:  v[0],
		WindSpeed:  v[1],
		SpeedAhead: v[2],
		SpeedAbeam: v[3],
		SailArea:   v[4],
	})
	if err != nil {
		return nil, err
	}
	return []float64{out.SpeedAhead, out.SpeedAbeam, out.Heel}, nil
}

// BoatRates returns [course change rate, wave effect resistance, gust threshold].
func (s *Service) BoatRates(e dispatcher.Event) (any, error) {
	id, err := util.ParseInt32("boat type", e.Args[0])
	if err != nil {
		return nil, invalid(err)
	}
	return []float64{
		boattype.CourseChangeRate(id),
		boattype.WaveEffectResistance(id),
		boattype.WindGustDamageThreshold(id),
	}, nil
}

// RegistryAdd registers a boat and returns its handle.
// Args: name, boat type, sail area, then optionally speed ahead and abeam.
func (s *Service) RegistryAdd(e dispatcher.Event) (any, error) {
	name := util.CleanArg(e.Args[0])
	id, err := util.ParseInt32("boat type", e.Args[1])
	if err != nil {
		return nil, invalid(err)
	}
	area, err := util.ParseFloat("sail area", e.Args[2])
	if err != nil {
		return nil, invalid(err)
	}
	if area < 0 {
		return nil, invalid(fmt.Errorf("sail area %v is negative", area))
	}

	boat := registry.Boat{Type: id, SailArea: area}
	if len(e.Args) >= 5 {
		v, err := parseFloats(e.Args[3:], "speed ahead", "speed abeam")
		if err != nil {
			return nil, err
		}
		boat.SpeedAhead, boat.SpeedAbeam = v[0], v[1]
	}

	h, err := s.deps.Registry.Add(name, boat)
	if err != nil {
		return nil, err
	}
	if boattype.FromID(id) == boattype.Unmodeled {
		s.logger.Warn("Registered boat with unmodeled type", "boat", name, "type", id)
	}
	return uint64(h), nil
}

// RegistryRemove removes a boat by name.
func (s *Service) RegistryRemove(e dispatcher.Event) (any, error) {
	name := util.CleanArg(e.Args[0])
	if _, err := s.deps.Registry.Remove(name); err != nil {
		return nil, err
	}
	return nil, nil
}

// RegistryGet returns the stored state of a boat.
func (s *Service) RegistryGet(e dispatcher.Event) (any, error) {
	name := util.CleanArg(e.Args[0])
	h, b, ok := s.deps.Registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", registry.ErrNotFound, name)
	}
	return BoatState{
		Handle:     uint64(h),
		Name:       b.Name,
		Type:       b.Type,
		SailArea:   b.SailArea,
		SpeedAhead: b.SpeedAhead,
		SpeedAbeam: b.SpeedAbeam,
		Heel:       b.Heel,
	}, nil
}

// GroupAdd adds a boat to a group, with an optional alternate name.
// Reply is true when the boat was not already a member.
func (s *Service) GroupAdd(e dispatcher.Event) (any, error) {
	group := util.CleanArg(e.Args[0])
	boat := util.CleanArg(e.Args[1])
	if group == "" || boat == "" {
		return nil, invalid(errors.New("group and boat names must not be empty"))
	}

	var alt *string
	if len(e.Args) >= 3 {
		a := util.CleanArg(e.Args[2])
		alt = &a
	}
	return s.deps.Registry.AddToGroup(group, boat, alt), nil
}

// GroupRemove removes a boat from a group.
func (s *Service) GroupRemove(e dispatcher.Event) (any, error) {
	s.deps.Registry.RemoveFromGroup(util.CleanArg(e.Args[0]), util.CleanArg(e.Args[1]))
	return nil, nil
}

// GroupMembers returns the "boat,alt" member listing of a group.
func (s *Service) GroupMembers(e dispatcher.Event) (any, error) {
	return s.deps.Registry.GroupMembership(util.CleanArg(e.Args[0])), nil
}

// FleetStep advances every registered boat one tick in a uniform wind.
// Args: wind angle, wind speed.
func (s *Service) FleetStep(e dispatcher.Event) (any, error) {
	if s.deps.Fleet == nil {
		return nil, errors.New("fleet stepping is not available")
	}
	v, err := parseFloats(e.Args, "wind angle", "wind speed")
	if err != nil {
		return nil, err
	}

	sum, err := s.deps.Fleet.Step(context.Background(), fleet.Uniform(v[0], v[1]))
	if err != nil {
		return nil, err
	}
	return StepReport{Tick: sum.Tick, Stepped: sum.Stepped, Unsupported: sum.Unsupported}, nil
}

// Log forwards a host log line. Args: source, message, optional level.
func (s *Service) Log(e dispatcher.Event) (any, error) {
	if s.deps.WriteLog == nil {
		return nil, nil
	}
	level := "info"
	if len(e.Args) >= 3 {
		level = util.CleanArg(e.Args[2])
	}
	s.deps.WriteLog(util.CleanArg(e.Args[0]), util.CleanArg(e.Args[1]), level)
	return nil, nil
}
