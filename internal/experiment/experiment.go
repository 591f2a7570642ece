// Package experiment assembles simulations from declarative run
// configurations and runs them.
package experiment

import (
	"context"

	"github.com/san-kum/cruisesim/internal/config"
	"github.com/san-kum/cruisesim/internal/cruise"
	"github.com/san-kum/cruisesim/internal/vehicle"
)

type Experiment struct {
	cfg       *config.Config
	simulator *cruise.Simulator
}

// FromConfig builds a ready-to-run experiment: plant, integrator,
// controller and grade profile are looked up in the registry by name.
func FromConfig(cfg *config.Config) (*Experiment, error) {
	registry := NewRegistry()

	plant, err := registry.GetPlant(cfg.Plant, cfg.Vehicle)
	if err != nil {
		return nil, err
	}
	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	ctrl, err := registry.GetController(cfg.Controller, cfg.Gains)
	if err != nil {
		return nil, err
	}
	grade, err := registry.GetProfile(cfg.Grade.Profile, cfg.Grade)
	if err != nil {
		return nil, err
	}

	sim := cruise.New(plant, integ, ctrl, vehicle.ConstantRef(cfg.Speed), grade)
	for _, m := range registry.DefaultMetrics() {
		sim.AddMetric(m)
	}

	return &Experiment{cfg: cfg, simulator: sim}, nil
}

func (e *Experiment) Run(ctx context.Context) (*cruise.Result, error) {
	x0 := cruise.State{e.cfg.InitSpeed}
	return e.simulator.Run(ctx, x0, cruise.Config{Dt: e.cfg.Dt, Horizon: e.cfg.Horizon})
}

// Simulator exposes the underlying simulator for adding observers.
func (e *Experiment) Simulator() *cruise.Simulator { return e.simulator }
