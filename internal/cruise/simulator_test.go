package cruise

import (
	"context"
	"errors"
	"math"
	"testing"
)

// decayPlant: dv/dt = -v + u, enough structure to exercise the loop.
type decayPlant struct{}

func (decayPlant) Derive(x State, u, grade, t float64) State {
	return State{-x[0] + u}
}

func (decayPlant) StateDim() int { return 1 }

type badPlant struct{}

func (badPlant) Derive(x State, u, grade, t float64) State { return State{0} }
func (badPlant) StateDim() int                             { return 1 }
func (badPlant) Validate() error {
	return &ConfigError{Field: "mass", Value: 0, Err: ErrNonPositiveMass}
}

type eulerStep struct{}

func (eulerStep) Step(sys System, x State, u, grade, t, dt float64) State {
	dx := sys.Derive(x, u, grade, t)
	result := make(State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

type pCtrl struct{ k float64 }

func (c *pCtrl) Compute(err, dt float64) float64 { return c.k * err }
func (c *pCtrl) Reset()                          {}

type constRef float64

func (r constRef) Speed(t float64) float64 { return float64(r) }

type gradeFunc func(t float64) float64

func (f gradeFunc) Angle(t float64) float64 { return f(t) }

func flatGrade(t float64) float64 { return 0 }

func newTestSim() *Simulator {
	return New(decayPlant{}, eulerStep{}, &pCtrl{k: 1}, constRef(1), gradeFunc(flatGrade))
}

func TestRunSampleCount(t *testing.T) {
	sim := newTestSim()

	result, err := sim.Run(context.Background(), State{0}, Config{Dt: 0.1, Horizon: 60})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Len() != 601 {
		t.Fatalf("expected 601 samples, got %d", result.Len())
	}
	if result.Samples[0].Time != 0 {
		t.Errorf("first sample at t=%f, want 0", result.Samples[0].Time)
	}
	if got := result.Final().Time; math.Abs(got-60.0) > 1e-9 {
		t.Errorf("final sample at t=%f, want 60", got)
	}
	for i := 1; i < result.Len(); i++ {
		dt := result.Samples[i].Time - result.Samples[i-1].Time
		if math.Abs(dt-0.1) > 1e-9 {
			t.Fatalf("uneven spacing at sample %d: %f", i, dt)
		}
	}
}

func TestRunHorizonNotMultipleOfStep(t *testing.T) {
	sim := newTestSim()

	result, err := sim.Run(context.Background(), State{0}, Config{Dt: 0.3, Horizon: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// floor(1.0/0.3)+1 = 4 samples, last one at 0.9 <= horizon
	if result.Len() != 4 {
		t.Fatalf("expected 4 samples, got %d", result.Len())
	}
	if got := result.Final().Time; got > 1.0 {
		t.Errorf("final sample at t=%f exceeds horizon", got)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero dt", Config{Dt: 0, Horizon: 1}, ErrNonPositiveStep},
		{"negative dt", Config{Dt: -0.1, Horizon: 1}, ErrNonPositiveStep},
		{"nan dt", Config{Dt: math.NaN(), Horizon: 1}, ErrNonPositiveStep},
		{"zero horizon", Config{Dt: 0.1, Horizon: 0}, ErrNonPositiveHorizon},
		{"negative horizon", Config{Dt: 0.1, Horizon: -1}, ErrNonPositiveHorizon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSim()
			result, err := sim.Run(context.Background(), State{0}, tt.cfg)
			if result != nil {
				t.Error("expected nil result")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected *ConfigError, got %T", err)
			}
		})
	}
}

func TestRunPlantValidation(t *testing.T) {
	sim := New(badPlant{}, eulerStep{}, &pCtrl{k: 1}, constRef(1), gradeFunc(flatGrade))

	result, err := sim.Run(context.Background(), State{0}, Config{Dt: 0.1, Horizon: 1})
	if result != nil {
		t.Error("expected nil result for invalid plant")
	}
	if !errors.Is(err, ErrNonPositiveMass) {
		t.Errorf("got %v, want ErrNonPositiveMass", err)
	}
}

func TestRunInstabilityAborts(t *testing.T) {
	nanAfterOne := gradeFunc(func(t float64) float64 {
		if t >= 1.0 {
			return math.NaN()
		}
		return 0
	})
	sim := New(decayPlant{}, eulerStep{}, &pCtrl{k: 1}, constRef(1), nanAfterOne)

	result, err := sim.Run(context.Background(), State{0}, Config{Dt: 0.1, Horizon: 10})
	if result != nil {
		t.Error("failed run must not produce a result")
	}

	var instErr *InstabilityError
	if !errors.As(err, &instErr) {
		t.Fatalf("expected *InstabilityError, got %v", err)
	}
	if instErr.Step != 10 {
		t.Errorf("failed at step %d, want 10", instErr.Step)
	}
	if instErr.LastValid != 9 {
		t.Errorf("last valid sample %d, want 9", instErr.LastValid)
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := newTestSim()
	result, err := sim.Run(ctx, State{0}, Config{Dt: 0.1, Horizon: 10})
	if result != nil {
		t.Error("expected nil result on cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

type countMetric struct {
	count int
}

func (m *countMetric) Name() string     { return "count" }
func (m *countMetric) Observe(s Sample) { m.count++ }
func (m *countMetric) Value() float64   { return float64(m.count) }
func (m *countMetric) Reset()           { m.count = 0 }

func TestRunMetricsAndObservers(t *testing.T) {
	sim := newTestSim()

	metric := &countMetric{}
	sim.AddMetric(metric)

	observed := 0
	sim.AddObserver(observerFunc(func(s Sample) { observed++ }))

	result, err := sim.Run(context.Background(), State{0}, Config{Dt: 0.1, Horizon: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got := result.Metrics["count"]; got != float64(result.Len()) {
		t.Errorf("metric observed %v samples, want %d", got, result.Len())
	}
	if observed != result.Len() {
		t.Errorf("observer saw %d samples, want %d", observed, result.Len())
	}
}

type observerFunc func(s Sample)

func (f observerFunc) OnStep(s Sample) { f(s) }
