// Package cruise provides the core primitives for closed-loop
// cruise-control simulation.
//
// The package defines the interfaces and types shared by every part of
// the simulator:
//
//   - [State]: vector representing plant state (velocity first)
//   - [System]: longitudinal plant dynamics (dX/dt = f(X, u, grade, t))
//   - [Integrator]: fixed-step explicit integration rule
//   - [Controller]: feedback law computing a control input from tracking error
//   - [Simulator]: owns the time loop and produces a [Result]
//
// # Example
//
//	plant := vehicle.NewLongitudinal()
//	pi := control.NewPI(600, 40)
//	sim := cruise.New(plant, integrators.NewRK4(), pi,
//		vehicle.ConstantRef(20), vehicle.HillRamp{Start: 10, Rise: 1, Slope: 4 * math.Pi / 180})
//	result, err := sim.Run(ctx, cruise.State{20}, cruise.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. A Result has exactly one writer
// (the running Simulator) and may be read freely once Run returns.
package cruise
