// Package analysis characterizes pendulum chain motion.
//
//   - [DominantPeriod]: strongest oscillation period of a sampled signal
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [Sweep]: turning-point amplitudes across a parameter range
//   - [GeneratePhasePortrait]: angle against angular velocity of one link
//   - [GeneratePoincareSection]: one link sampled as another swings through
//     the bottom
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(s, dt, duration, 1e-8)
//	if lambda > 0 {
//	    // chain is chaotic
//	}
package analysis
