package population_test

// scriptedSource replays fixed draws. IntN returns the next scripted int
// reduced mod n; Shuffle is the identity.
type scriptedSource struct {
	floats []float64
	ints   []int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		panic("scriptedSource: out of floats")
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) IntN(n int) int {
	if len(s.ints) == 0 {
		panic("scriptedSource: out of ints")
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedSource) Shuffle(n int, swap func(i, j int)) {}

// barcodes converts barcode values into the IntN draws ChooseBarcode maps
// onto them.
func barcodes(bs ...int) []int {
	out := make([]int, len(bs))
	for i, b := range bs {
		out[i] = b - 1
	}
	return out
}
