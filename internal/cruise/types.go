package cruise

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Sample is one record of the closed-loop trajectory. Grade is the road
// slope angle in radians; the grade force follows from the plant parameters.
type Sample struct {
	Time    float64 `json:"time"`
	Ref     float64 `json:"ref"`
	Speed   float64 `json:"speed"`
	Control float64 `json:"control"`
	Grade   float64 `json:"grade"`
}

type System interface {
	Derive(x State, u, grade, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, u, grade, t, dt float64) State
}

type Controller interface {
	Compute(err, dt float64) float64
	Reset()
}

// Reference supplies the desired speed at time t.
type Reference interface {
	Speed(t float64) float64
}

// GradeProfile supplies the road slope angle (radians) at time t.
// Profiles are immutable for the duration of a run.
type GradeProfile interface {
	Angle(t float64) float64
}

// Validator is implemented by plants and controllers that can reject
// their own configuration before a run starts.
type Validator interface {
	Validate() error
}

// Configurable is implemented by components that support live tuning.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

type Config struct {
	Dt      float64
	Horizon float64
}

func DefaultConfig() Config {
	return Config{
		Dt:      0.1,
		Horizon: 60.0,
	}
}

type Result struct {
	Samples []Sample
	Metrics map[string]float64
}

func (r *Result) Len() int { return len(r.Samples) }

func (r *Result) Final() Sample {
	if len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}

func (r *Result) Times() []float64 { return r.column(func(s Sample) float64 { return s.Time }) }

func (r *Result) Refs() []float64 { return r.column(func(s Sample) float64 { return s.Ref }) }

func (r *Result) Speeds() []float64 { return r.column(func(s Sample) float64 { return s.Speed }) }

func (r *Result) Controls() []float64 { return r.column(func(s Sample) float64 { return s.Control }) }

func (r *Result) Grades() []float64 { return r.column(func(s Sample) float64 { return s.Grade }) }

func (r *Result) column(get func(Sample) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = get(s)
	}
	return out
}
