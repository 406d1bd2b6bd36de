// Package viz provides a live terminal view of a running simulation.
//
// The view is a Bubble Tea program that advances the experiment one
// generation at a time and shows the lineage heatmap next to the
// generation statistics.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	[ ]   - Browse earlier/later generations
//	C     - Cycle colormaps
//	Q     - Quit
package viz
