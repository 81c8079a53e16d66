// Package viz renders sweep results in the terminal.
//
//   - [PlotQuantities], [PlotHugoniot], [PlotConvergence]: asciigraph line plots
//   - [RenderReport], [RenderTable]: lipgloss-styled text output
//   - [LiveModel]: a Bubble Tea view of a sweep in progress
//
// # Key Bindings
//
//	q, Ctrl+C - stop the sweep and quit
package viz
