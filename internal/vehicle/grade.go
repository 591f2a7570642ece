package vehicle

import "math"

// ProfileFunc adapts a plain function to cruise.GradeProfile.
type ProfileFunc func(t float64) float64

func (f ProfileFunc) Angle(t float64) float64 { return f(t) }

// Flat is a level road.
type Flat struct{}

func (Flat) Angle(t float64) float64 { return 0 }

// HillRamp is a hill that starts at Start, ramps linearly to Slope
// (radians) over Rise seconds and stays there.
type HillRamp struct {
	Start float64
	Rise  float64
	Slope float64
}

func (h HillRamp) Angle(t float64) float64 {
	switch {
	case t <= h.Start:
		return 0
	case h.Rise <= 0 || t >= h.Start+h.Rise:
		return h.Slope
	default:
		return h.Slope * (t - h.Start) / h.Rise
	}
}

// Rolling is a sinusoidal grade starting at Start: terrain that
// alternates between climb and descent.
type Rolling struct {
	Amplitude float64
	Period    float64
	Start     float64
}

func (r Rolling) Angle(t float64) float64 {
	if t < r.Start || r.Period <= 0 {
		return 0
	}
	return r.Amplitude * math.Sin(2*math.Pi*(t-r.Start)/r.Period)
}
