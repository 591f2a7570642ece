package experiment

import (
	"fmt"
	"math"

	"github.com/san-kum/cruisesim/internal/config"
	"github.com/san-kum/cruisesim/internal/control"
	"github.com/san-kum/cruisesim/internal/cruise"
	"github.com/san-kum/cruisesim/internal/integrators"
	"github.com/san-kum/cruisesim/internal/metrics"
	"github.com/san-kum/cruisesim/internal/vehicle"
)

type Registry struct {
	plants      map[string]func(config.VehicleConfig) cruise.System
	integrators map[string]func() cruise.Integrator
	controllers map[string]func(config.GainConfig) cruise.Controller
	profiles    map[string]func(config.GradeConfig) cruise.GradeProfile
}

func NewRegistry() *Registry {
	r := &Registry{
		plants:      make(map[string]func(config.VehicleConfig) cruise.System),
		integrators: make(map[string]func() cruise.Integrator),
		controllers: make(map[string]func(config.GainConfig) cruise.Controller),
		profiles:    make(map[string]func(config.GradeConfig) cruise.GradeProfile),
	}

	// Plant parameters are taken verbatim from the config; invalid values
	// (mass=0, gear out of range) are rejected by Validate before the run.
	r.plants["force"] = func(vc config.VehicleConfig) cruise.System {
		p := vehicle.NewLongitudinal()
		p.Mass = vc.Mass
		p.RollingFriction = vc.RollingFriction
		p.AeroDrag = vc.AeroDrag
		return p
	}
	r.plants["drivetrain"] = func(vc config.VehicleConfig) cruise.System {
		p := vehicle.NewDrivetrain()
		p.Mass = vc.Mass
		p.RollingFriction = vc.RollingFriction
		p.Gear = vc.Gear
		return p
	}

	r.integrators["euler"] = func() cruise.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() cruise.Integrator { return integrators.NewRK4() }

	r.controllers["none"] = func(config.GainConfig) cruise.Controller {
		return control.NewNone()
	}
	r.controllers["pi"] = func(g config.GainConfig) cruise.Controller {
		c := control.NewPI(g.Kp, g.Ki)
		if g.Limited {
			c.Saturate(g.Min, g.Max, g.AntiWindup)
		}
		return c
	}
	r.controllers["pid"] = func(g config.GainConfig) cruise.Controller {
		c := control.NewPID(g.Kp, g.Ki, g.Kd)
		if g.Limited {
			c.Saturate(g.Min, g.Max, g.AntiWindup)
		}
		return c
	}

	r.profiles["flat"] = func(config.GradeConfig) cruise.GradeProfile {
		return vehicle.Flat{}
	}
	r.profiles["hill"] = func(gc config.GradeConfig) cruise.GradeProfile {
		return vehicle.HillRamp{Start: gc.Start, Rise: gc.Rise, Slope: gc.AngleDeg * math.Pi / 180}
	}
	r.profiles["rolling"] = func(gc config.GradeConfig) cruise.GradeProfile {
		return vehicle.Rolling{Amplitude: gc.AngleDeg * math.Pi / 180, Period: gc.Period, Start: gc.Start}
	}

	return r
}

func (r *Registry) GetPlant(name string, vc config.VehicleConfig) (cruise.System, error) {
	fn, ok := r.plants[name]
	if !ok {
		return nil, fmt.Errorf("unknown plant: %s", name)
	}
	return fn(vc), nil
}

func (r *Registry) GetIntegrator(name string) (cruise.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetController(name string, g config.GainConfig) (cruise.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(g), nil
}

func (r *Registry) GetProfile(name string, gc config.GradeConfig) (cruise.GradeProfile, error) {
	fn, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown grade profile: %s", name)
	}
	return fn(gc), nil
}

// DefaultMetrics are the figures reported for every run.
func (r *Registry) DefaultMetrics() []cruise.Metric {
	return []cruise.Metric{
		metrics.NewTrackingRMS(),
		metrics.NewControlEffort(),
		metrics.NewSettlingTime(0.5),
		metrics.NewMaxDip(),
	}
}
