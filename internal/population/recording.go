package population

import "math"

// SideBoundary splits the barcode space into a low and a high side. Two
// consecutive insertions must come from opposite sides. It does not scale
// with the barcode space size.
const SideBoundary Barcode = 7

// ChooseBarcode draws a barcode uniformly from [1, n).
func ChooseBarcode(src Source, n int) (Barcode, error) {
	if n < 2 {
		return 0, invalid("barcode space size %d, need at least 2", n)
	}
	return Barcode(1 + src.IntN(n-1)), nil
}

// GenerateRecording draws one recording for a single cell.
//
// An insertion happens only if the first uniform draw does not exceed p and
// the first barcode lies in the lower half of the space. Each further draw
// below p proposes another barcode, which is appended only when it lies on
// the opposite side of SideBoundary from the previous one; a same-side
// proposal ends the recording.
func GenerateRecording(src Source, n int, p float64) (Recording, error) {
	if err := checkProbability("continuation probability", p); err != nil {
		return nil, err
	}

	p0 := src.Float64()
	first, err := ChooseBarcode(src, n)
	if err != nil {
		return nil, err
	}
	if p0 > p || float64(first) > float64(n)/2 {
		return Recording{}, nil
	}

	rec := Recording{first}
	for src.Float64() < p {
		b, err := ChooseBarcode(src, n)
		if err != nil {
			return nil, err
		}
		last, _ := rec.Last()
		if sameSide(b, last) {
			break
		}
		rec = append(rec, b)
	}
	return rec, nil
}

// sameSide reports whether a and b are both strictly below or both strictly
// above SideBoundary. A barcode equal to the boundary is on neither side.
func sameSide(a, b Barcode) bool {
	return (a > SideBoundary && b > SideBoundary) || (a < SideBoundary && b < SideBoundary)
}

func checkProbability(name string, v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return invalid("%s %v outside [0, 1]", name, v)
	}
	return nil
}
