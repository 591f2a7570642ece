package cruise

import (
	"errors"
	"fmt"
)

// Domain errors for simulation configuration and execution.
var (
	// ErrNonPositiveStep indicates a zero or negative integration step.
	ErrNonPositiveStep = errors.New("cruise: step size must be positive")

	// ErrNonPositiveHorizon indicates a zero or negative simulation horizon.
	ErrNonPositiveHorizon = errors.New("cruise: horizon must be positive")

	// ErrNonPositiveMass indicates a plant configured with mass <= 0.
	ErrNonPositiveMass = errors.New("cruise: vehicle mass must be positive")

	// ErrInvalidGain indicates a controller gain that is NaN or infinite.
	ErrInvalidGain = errors.New("cruise: controller gain is not finite")

	// ErrInvalidLimits indicates a saturation range with min >= max.
	ErrInvalidLimits = errors.New("cruise: saturation limits must satisfy min < max")

	// ErrInvalidParameter indicates any other out-of-range plant parameter.
	ErrInvalidParameter = errors.New("cruise: parameter out of valid bounds")
)

// ConfigError reports an invalid configuration value. It is returned before
// the simulation loop starts; a run that fails configuration produces no
// samples.
type ConfigError struct {
	Field string
	Value float64
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v (%s=%g)", e.Err, e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// InstabilityError reports a non-finite state or control value produced
// during the loop. LastValid is the index of the last recorded sample, or
// -1 when the very first step failed.
type InstabilityError struct {
	Step      int
	Time      float64
	LastValid int
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("cruise: non-finite value at step %d (t=%.4f), last valid sample %d",
		e.Step, e.Time, e.LastValid)
}
