// Package encode turns a cell's recording into a fixed-width code.
//
// Every non-empty prefix of a recording is hashed into one bit of a
// parity-wide bit vector. Cells descended from a common ancestor share the
// ancestor's prefixes and therefore its bits.
package encode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash/v2"

	"github.com/mchu-1/barcode-simulator/internal/population"
)

var ErrInvalidParity = errors.New("encode: parity must be at least 1")

// Code is a fixed-width bit vector.
type Code struct {
	words []uint64
	width int
}

// NewCode returns an all-zero code of the given width.
func NewCode(width int) Code {
	return Code{words: make([]uint64, (width+63)/64), width: width}
}

func (c Code) Width() int { return c.width }

func (c Code) Set(i int) { c.words[i/64] |= 1 << (i % 64) }

func (c Code) Bit(i int) bool { return c.words[i/64]&(1<<(i%64)) != 0 }

// OnesCount returns the number of set bits.
func (c Code) OnesCount() int {
	n := 0
	for _, w := range c.words {
		n += bits.OnesCount64(w)
	}
	return n
}

func (c Code) String() string {
	b := make([]byte, c.width)
	for i := range b {
		if c.Bit(i) {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Encode hashes each prefix of r into a parity-wide code.
func Encode(r population.Recording, parity int) (Code, error) {
	if parity < 1 {
		return Code{}, fmt.Errorf("%w, got %d", ErrInvalidParity, parity)
	}

	code := NewCode(parity)
	h := xxhash.New()
	var buf [8]byte
	for _, b := range r {
		binary.LittleEndian.PutUint64(buf[:], uint64(b))
		_, _ = h.Write(buf[:])
		code.Set(int(h.Sum64() % uint64(parity)))
	}
	return code, nil
}

// EncodeGeneration encodes every cell of every clone, preserving order.
func EncodeGeneration(gen population.Generation, parity int) ([][]Code, error) {
	out := make([][]Code, len(gen))
	for i, clone := range gen {
		codes := make([]Code, len(clone))
		for j, cell := range clone {
			c, err := Encode(cell.Recording, parity)
			if err != nil {
				return nil, err
			}
			codes[j] = c
		}
		out[i] = codes
	}
	return out, nil
}
