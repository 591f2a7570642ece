package cruise

import (
	"context"
	"math"
)

// Simulator advances a plant and controller jointly over a fixed-step time
// horizon. The plant, controller, reference and grade profile are set once
// at construction and treated as immutable for the duration of a run.
type Simulator struct {
	plant      System
	integrator Integrator
	controller Controller
	ref        Reference
	grade      GradeProfile
	metrics    []Metric
	observers  []Observer
}

func New(plant System, integrator Integrator, controller Controller, ref Reference, grade GradeProfile) *Simulator {
	return &Simulator{
		plant:      plant,
		integrator: integrator,
		controller: controller,
		ref:        ref,
		grade:      grade,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run simulates from x0 for cfg.Horizon seconds and returns the recorded
// trajectory. The result holds floor(Horizon/Dt)+1 samples at times
// 0, Dt, 2*Dt, ... A non-finite state or control aborts the run with an
// *InstabilityError and no result; configuration problems are rejected with
// a *ConfigError before any sample is produced.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validate(cfg); err != nil {
		return nil, err
	}

	// Tolerate fp division shortfall when the horizon is an exact
	// multiple of the step, so the final sample lands on the horizon.
	steps := int(math.Floor(cfg.Horizon/cfg.Dt + 1e-9))

	result := &Result{
		Samples: make([]Sample, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	s.controller.Reset()

	x := x0.Clone()

	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		ref := s.ref.Speed(t)
		trackErr := ref - x[0]
		u := s.controller.Compute(trackErr, cfg.Dt)
		grade := s.grade.Angle(t)

		if !x.IsValid() || !finite(u) || !finite(grade) || !finite(ref) {
			return nil, &InstabilityError{Step: i, Time: t, LastValid: len(result.Samples) - 1}
		}

		sample := Sample{Time: t, Ref: ref, Speed: x[0], Control: u, Grade: grade}
		result.Samples = append(result.Samples, sample)

		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnStep(sample)
		}

		if i < steps {
			x = s.integrator.Step(s.plant, x, u, grade, t, cfg.Dt)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validate(cfg Config) error {
	if cfg.Dt <= 0 || !finite(cfg.Dt) {
		return &ConfigError{Field: "dt", Value: cfg.Dt, Err: ErrNonPositiveStep}
	}
	if cfg.Horizon <= 0 || !finite(cfg.Horizon) {
		return &ConfigError{Field: "horizon", Value: cfg.Horizon, Err: ErrNonPositiveHorizon}
	}
	if v, ok := s.plant.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if v, ok := s.controller.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
