// Package population simulates barcode recordings accumulating in clonally
// dividing cell populations.
//
// The package defines the data model and the stochastic operations applied
// to it during one experimental generation:
//
//   - [ChooseBarcode]: uniform draw from the barcode space [1, n)
//   - [GenerateRecording]: one stochastic barcode sequence for one cell
//   - [Transfect]: append fresh recordings to every cell, r rounds
//   - [Incubate]: synchronous lossless division, 2^d copies, shuffled
//   - [Sample]: random retention of a fraction of the cells
//   - [Split]: contiguous chunking into clones
//   - [Simulator]: one Generation -> next Generation step
//
// # Example
//
//	src := population.NewSource(42)
//	s := population.NewSimulator(src, population.DefaultPolicy())
//	gen := population.NewGeneration(1, 1000)
//	for i := 0; i < k; i++ {
//	    gen, err = s.Step(gen, n)
//	}
//
// # Randomness
//
// All draws come from the [Source] passed in by the caller and are consumed
// in a fixed order, so a seeded source reproduces a run exactly. A Simulator
// is not safe for concurrent use.
package population
