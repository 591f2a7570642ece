package vehicle

import (
	"fmt"
	"math"

	"github.com/san-kum/cruisesim/internal/cruise"
)

const (
	Gravity = 9.8

	DefaultMass            = 1000.0
	DefaultRollingFriction = 0.01
	DefaultAeroDrag        = 1.2
)

// Longitudinal models m*dv/dt = u - Fr - Fa - Fg with a traction force
// input u in newtons. Rolling resistance is m*g*Cr*sgn(v), aero drag is
// Cd*v*|v|, and the grade force is m*g*sin(theta). Negative velocity
// (rollback on a hill) is a valid state.
type Longitudinal struct {
	Mass            float64
	RollingFriction float64
	AeroDrag        float64
}

func NewLongitudinal() *Longitudinal {
	return &Longitudinal{
		Mass:            DefaultMass,
		RollingFriction: DefaultRollingFriction,
		AeroDrag:        DefaultAeroDrag,
	}
}

func (p *Longitudinal) StateDim() int { return 1 }

func (p *Longitudinal) Derive(x cruise.State, u, grade, t float64) cruise.State {
	v := x[0]
	fr := p.Mass * Gravity * p.RollingFriction * sign(v)
	fa := p.AeroDrag * v * math.Abs(v)
	fg := p.Mass * Gravity * math.Sin(grade)
	return cruise.State{(u - fr - fa - fg) / p.Mass}
}

func (p *Longitudinal) Validate() error {
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return &cruise.ConfigError{Field: "mass", Value: p.Mass, Err: cruise.ErrNonPositiveMass}
	}
	if p.RollingFriction < 0 || math.IsNaN(p.RollingFriction) {
		return &cruise.ConfigError{Field: "rolling_friction", Value: p.RollingFriction, Err: cruise.ErrInvalidParameter}
	}
	if p.AeroDrag < 0 || math.IsNaN(p.AeroDrag) {
		return &cruise.ConfigError{Field: "aero_drag", Value: p.AeroDrag, Err: cruise.ErrInvalidParameter}
	}
	return nil
}

func (p *Longitudinal) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":             p.Mass,
		"rolling_friction": p.RollingFriction,
		"aero_drag":        p.AeroDrag,
	}
}

func (p *Longitudinal) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		p.Mass = value
	case "rolling_friction":
		p.RollingFriction = value
	case "aero_drag":
		p.AeroDrag = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

// sign is sgn(v): +/-1, or 0 when v = 0, so rolling resistance always
// opposes motion and vanishes at rest.
func sign(v float64) float64 {
	if v == 0 {
		return 0
	}
	return math.Copysign(1, v)
}
