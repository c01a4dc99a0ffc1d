// Package viz renders a running fluid in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one driver, with a height chart and tunables
//   - [Canvas]: Braille-based dot canvas, 2x4 dots per terminal cell
//   - a preset menu started by [RunInteractive]
//
// # Key Bindings
//
//	Space   - Pause/Resume simulation
//	R       - Reset the fluid
//	Tab     - Cycle tunable (viscosity, tension, particles)
//	Up/Down - Adjust the selected tunable
//	P       - Toggle the pointer; WASD or the mouse move it
//	T       - Cycle color themes
//	?       - Show help overlay
package viz
