// Package control provides the feedback laws used to close the cruise
// loop. Controllers consume the tracking error directly and carry their
// own accumulator state between steps.
package control

import (
	"fmt"
	"math"

	"github.com/san-kum/cruisesim/internal/cruise"
)

// Limits is an output saturation range.
type Limits struct {
	Min float64
	Max float64
}

// PID computes u = Kp*e + Ki*int(e dt) + Kd*de/dt. With Kd = 0 it is the
// PI law of the cruise loop. When Limits is set the output is clamped to
// [Min, Max]; with AntiWindup enabled the integral accumulator is frozen
// while the output is saturated and the error would push it further.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	Limits     *Limits
	AntiWindup bool

	integral float64
	prevErr  float64
	first    bool
}

func NewPI(kp, ki float64) *PID {
	return &PID{Kp: kp, Ki: ki, first: true}
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, first: true}
}

// Saturate sets the output limits and the anti-windup policy.
func (c *PID) Saturate(min, max float64, antiWindup bool) *PID {
	c.Limits = &Limits{Min: min, Max: max}
	c.AntiWindup = antiWindup
	return c
}

func (c *PID) Compute(e, dt float64) float64 {
	integral := c.integral + e*dt

	derivative := 0.0
	if !c.first && dt > 0 {
		derivative = (e - c.prevErr) / dt
	}
	c.first = false
	c.prevErr = e

	u := c.Kp*e + c.Ki*integral + c.Kd*derivative
	if c.Limits == nil {
		c.integral = integral
		return u
	}

	clamped := u
	if clamped > c.Limits.Max {
		clamped = c.Limits.Max
	}
	if clamped < c.Limits.Min {
		clamped = c.Limits.Min
	}

	// Conditional integration: accumulate unless saturated with the
	// error still pushing into the limit.
	windingUp := (u > c.Limits.Max && e > 0) || (u < c.Limits.Min && e < 0)
	if !c.AntiWindup || !windingUp {
		c.integral = integral
	}

	return clamped
}

// Reset clears the accumulator and derivative state for a new run.
func (c *PID) Reset() {
	c.integral = 0
	c.prevErr = 0
	c.first = true
}

func (c *PID) Validate() error {
	for name, g := range map[string]float64{"kp": c.Kp, "ki": c.Ki, "kd": c.Kd} {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return &cruise.ConfigError{Field: name, Value: g, Err: cruise.ErrInvalidGain}
		}
	}
	if c.Limits != nil && !(c.Limits.Min < c.Limits.Max) {
		return &cruise.ConfigError{Field: "limits.min", Value: c.Limits.Min, Err: cruise.ErrInvalidLimits}
	}
	return nil
}

// GetParams returns tunable parameters for live adjustment.
func (c *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": c.Kp,
		"Ki": c.Ki,
		"Kd": c.Kd,
	}
}

// SetParam adjusts a gain.
func (c *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		c.Kp = value
	case "Ki":
		c.Ki = value
	case "Kd":
		c.Kd = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
