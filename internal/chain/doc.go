// Package chain holds the physical state of one pendulum chain.
//
// A chain is an ordered sequence of one to three rigid links hanging from a
// fixed pivot:
//
//   - [LinkConfig]: rod length and bob mass, edited between steps
//   - [LinkState]: angle, angular velocity and angular acceleration
//   - [State]: the links plus the global gravity and damping constants
//
// Angles are radians measured from the downward vertical, clockwise
// positive, and are never wrapped. Lengths and gravity are stored in
// internal units (meters or m/s² multiplied by the simulator scale).
//
// # Thread Safety
//
// State is a plain value owned by one simulator. It is not safe for
// concurrent use.
package chain
