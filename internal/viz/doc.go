// Package viz is the terminal front end for live chains.
//
// [Model] is a Bubble Tea program that serves as Renderer and Scheduler for
// a [sim.Group]: every chain's frame requests share one tea.Tick chain, and
// key presses are handled on the same loop. Chains are drawn on a braille
// [Canvas] with per-link colors from the active [Theme]. [Menu] picks a
// preset and opens the live view on it.
//
// # Key Bindings
//
//	Space     - Start/pause every chain
//	R         - Reset every chain to its panel angles
//	P         - Toggle the path display
//	[ ]       - Path points -/+ 100
//	Tab       - Next parameter (Shift+Tab back)
//	Up/Down   - Adjust the selected parameter
//	N         - Next chain
//	T         - Cycle color themes
//	?         - Show help overlay
package viz
