package population

import "math"

// Transfect appends r fresh recordings to every cell of pop, in place, and
// returns pop. Each call to GenerateRecording is independent of the cell's
// existing recording.
func Transfect(src Source, n int, p float64, r int, pop Population) (Population, error) {
	if r < 0 {
		return nil, invalid("round count %d is negative", r)
	}
	if n < 2 {
		return nil, invalid("barcode space size %d, need at least 2", n)
	}
	if err := checkProbability("continuation probability", p); err != nil {
		return nil, err
	}

	for round := 0; round < r; round++ {
		for i := range pop {
			rec, err := GenerateRecording(src, n, p)
			if err != nil {
				return nil, err
			}
			if len(rec) > 0 {
				pop[i].Recording = append(pop[i].Recording, rec...)
			}
		}
	}
	return pop, nil
}

// Incubate returns a new population holding 2^d independent copies of every
// cell of pop in uniformly random order. maxCells bounds the result size;
// zero means no bound.
func Incubate(src Source, pop Population, d, maxCells int) (Population, error) {
	if d < 0 {
		return nil, invalid("division count %d is negative", d)
	}
	size, err := grownSize(len(pop), d)
	if err != nil {
		return nil, err
	}
	if maxCells > 0 && size > maxCells {
		return nil, exhausted("incubation would produce %d cells, limit is %d", size, maxCells)
	}

	out := make(Population, 0, size)
	copies := size / max(len(pop), 1)
	for c := 0; c < copies; c++ {
		for _, cell := range pop {
			out = append(out, cell.Clone())
		}
	}
	src.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

func grownSize(size, d int) (int, error) {
	if size == 0 {
		return 0, nil
	}
	if d >= 63 || size > math.MaxInt>>d {
		return 0, exhausted("%d cells after %d divisions overflows", size, d)
	}
	return size << d, nil
}

// Sample permutes a copy of pop and keeps the first floor(len(pop)*(1-loss))
// cells. pop itself is left untouched.
func Sample(src Source, pop Population, loss float64) (Population, error) {
	if err := checkProbability("loss fraction", loss); err != nil {
		return nil, err
	}

	shuffled := make(Population, len(pop))
	copy(shuffled, pop)
	src.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	keep := int(math.Floor(float64(len(pop)) * (1 - loss)))
	return shuffled[:keep:keep], nil
}

// Split cuts pop, in the order received, into contiguous chunks of
// floor(len(pop)/k) cells taken at that stride from offset 0. When len(pop)
// is not a multiple of k the final chunk is short and the chunk count can
// exceed k. A population smaller than k is cut into single cells, and an
// empty population yields no chunks.
//
// Chunks share storage with pop but are capacity-limited, so appending to
// one never writes into its neighbour.
func Split(pop Population, k int) ([]Population, error) {
	if k <= 0 {
		return nil, invalid("part count %d, need at least 1", k)
	}
	if len(pop) == 0 {
		return []Population{}, nil
	}

	stride := max(len(pop)/k, 1)
	chunks := make([]Population, 0, (len(pop)+stride-1)/stride)
	for start := 0; start < len(pop); start += stride {
		end := min(start+stride, len(pop))
		chunks = append(chunks, pop[start:end:end])
	}
	return chunks, nil
}
