// Package vehicle implements longitudinal vehicle dynamics and the road
// profiles that disturb them.
//
// Two plants are provided:
//
//   - [Longitudinal]: traction force input in newtons
//   - [Drivetrain]: throttle input in [0,1] through an engine torque curve
//     and a fixed gear ratio
//
// Both expose velocity as the single measured output (state index 0) and
// convert a road slope angle into the gravity grade force m*g*sin(theta).
package vehicle
