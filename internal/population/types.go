package population

// Barcode is an identifier drawn from [1, n).
type Barcode int

// Recording is the append-only history of barcode insertions in one cell.
type Recording []Barcode

// Clone returns an independent copy of r.
func (r Recording) Clone() Recording {
	if r == nil {
		return nil
	}
	c := make(Recording, len(r))
	copy(c, r)
	return c
}

// Last returns the most recently appended barcode.
func (r Recording) Last() (Barcode, bool) {
	if len(r) == 0 {
		return 0, false
	}
	return r[len(r)-1], true
}

// Cell is identified with its recording.
type Cell struct {
	Recording Recording
}

// Clone returns a replica that shares no storage with c.
func (c Cell) Clone() Cell {
	return Cell{Recording: c.Recording.Clone()}
}

// Population is an ordered collection of cells.
type Population []Cell

// NewPopulation returns size cells with empty recordings.
func NewPopulation(size int) Population {
	return make(Population, size)
}

// Generation is the collection of wells (or clones) present at one step.
type Generation []Population

// NewGeneration returns wells independent wells of cells empty cells each.
func NewGeneration(wells, cells int) Generation {
	g := make(Generation, wells)
	for i := range g {
		g[i] = NewPopulation(cells)
	}
	return g
}

// Cells returns the total number of cells across all wells.
func (g Generation) Cells() int {
	total := 0
	for _, p := range g {
		total += len(p)
	}
	return total
}
