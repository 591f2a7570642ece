// Package integrators provides fixed-step explicit integration rules.
// The control input and grade are held constant over a step (zero-order
// hold), matching how the simulator samples them.
package integrators

import "github.com/san-kum/cruisesim/internal/cruise"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys cruise.System, x cruise.State, u, grade, t, dt float64) cruise.State {
	dx := sys.Derive(x, u, grade, t)
	result := make(cruise.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
