package vehicle

import (
	"fmt"
	"math"

	"github.com/san-kum/cruisesim/internal/cruise"
)

const (
	DefaultTorquePeak = 190.0 // engine torque constant, N*m
	DefaultPeakSpeed  = 420.0 // peak engine angular speed, rad/s
	DefaultRolloff    = 0.4   // torque rolloff away from peak speed
)

// gear ratio over wheel radius, per gear
var gearRatios = [5]float64{40, 25, 16, 12, 10}

// Drivetrain is the throttle-input plant: the control is a throttle in
// [0,1] (clamped inside the plant), pushed through an engine torque curve
// and a fixed gear. Resistive forces match Longitudinal minus aero drag.
type Drivetrain struct {
	Mass            float64
	RollingFriction float64
	Gear            int
	TorquePeak      float64
	PeakSpeed       float64
	Rolloff         float64
}

func NewDrivetrain() *Drivetrain {
	return &Drivetrain{
		Mass:            DefaultMass,
		RollingFriction: DefaultRollingFriction,
		Gear:            4,
		TorquePeak:      DefaultTorquePeak,
		PeakSpeed:       DefaultPeakSpeed,
		Rolloff:         DefaultRolloff,
	}
}

func (p *Drivetrain) StateDim() int { return 1 }

func (p *Drivetrain) Derive(x cruise.State, u, grade, t float64) cruise.State {
	v := x[0]
	throttle := clamp(u, 0, 1)

	alpha := gearRatios[p.Gear-1]
	omega := alpha * v
	force := alpha * p.motorTorque(omega) * throttle

	fr := p.Mass * Gravity * p.RollingFriction * sign(v)
	fg := p.Mass * Gravity * math.Sin(grade)

	return cruise.State{(force - fr - fg) / p.Mass}
}

// motorTorque is the engine curve Tm*(1 - beta*(omega/omega_m - 1)^2),
// clipped at zero.
func (p *Drivetrain) motorTorque(omega float64) float64 {
	r := omega/p.PeakSpeed - 1
	tq := p.TorquePeak * (1 - p.Rolloff*r*r)
	if tq < 0 {
		return 0
	}
	return tq
}

func (p *Drivetrain) Validate() error {
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return &cruise.ConfigError{Field: "mass", Value: p.Mass, Err: cruise.ErrNonPositiveMass}
	}
	if p.Gear < 1 || p.Gear > len(gearRatios) {
		return &cruise.ConfigError{Field: "gear", Value: float64(p.Gear), Err: cruise.ErrInvalidParameter}
	}
	if !(p.PeakSpeed > 0) {
		return &cruise.ConfigError{Field: "peak_speed", Value: p.PeakSpeed, Err: cruise.ErrInvalidParameter}
	}
	return nil
}

func (p *Drivetrain) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":             p.Mass,
		"rolling_friction": p.RollingFriction,
		"gear":             float64(p.Gear),
		"torque_peak":      p.TorquePeak,
	}
}

func (p *Drivetrain) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		p.Mass = value
	case "rolling_friction":
		p.RollingFriction = value
	case "gear":
		g := int(value)
		if g < 1 || g > len(gearRatios) {
			return fmt.Errorf("gear out of range: %d", g)
		}
		p.Gear = g
	case "torque_peak":
		p.TorquePeak = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
