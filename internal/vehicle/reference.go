package vehicle

// ConstantRef holds the reference speed fixed for the whole run.
type ConstantRef float64

func (c ConstantRef) Speed(t float64) float64 { return float64(c) }

// StepRef switches the reference speed from Before to After at time At.
type StepRef struct {
	At     float64
	Before float64
	After  float64
}

func (s StepRef) Speed(t float64) float64 {
	if t < s.At {
		return s.Before
	}
	return s.After
}
