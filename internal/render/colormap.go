// Package render draws lineage matrices as heatmaps: PNG and SVG files for
// the run directory and a block heatmap for the terminal.
package render

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Colormap maps [0, 1] onto a sequence of anchor colors blended in CIE-Lab.
type Colormap struct {
	Name    string
	anchors []colorful.Color
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func NewColormap(name string, hexes ...string) Colormap {
	cm := Colormap{Name: name, anchors: make([]colorful.Color, len(hexes))}
	for i, h := range hexes {
		cm.anchors[i] = mustHex(h)
	}
	return cm
}

var (
	// Mako runs from near-black through deep blue and teal to pale mint.
	Mako = NewColormap("mako", "#0b0405", "#382a54", "#395d9c", "#3496a9", "#5fceac", "#def5e5")

	// Greys is a plain black-to-white ramp.
	Greys = NewColormap("greys", "#000000", "#ffffff")
)

var colormaps = map[string]Colormap{
	Mako.Name:  Mako,
	Greys.Name: Greys,
}

// LookupColormap returns the named colormap, falling back to Mako.
func LookupColormap(name string) Colormap {
	if cm, ok := colormaps[name]; ok {
		return cm
	}
	return Mako
}

// At returns the color for t, clamped to [0, 1].
func (cm Colormap) At(t float64) colorful.Color {
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Max(0, math.Min(1, t))
	if len(cm.anchors) == 1 {
		return cm.anchors[0]
	}

	pos := t * float64(len(cm.anchors)-1)
	i := int(pos)
	if i >= len(cm.anchors)-1 {
		return cm.anchors[len(cm.anchors)-1]
	}
	frac := pos - float64(i)
	if frac == 0 {
		return cm.anchors[i]
	}
	return cm.anchors[i].BlendLab(cm.anchors[i+1], frac).Clamped()
}

// normalizer maps matrix values onto [0, 1] using the matrix's own range.
func normalizer(lo, hi float64) func(float64) float64 {
	span := hi - lo
	if span <= 0 {
		return func(v float64) float64 {
			if hi > 0 {
				return 1
			}
			return 0
		}
	}
	return func(v float64) float64 { return (v - lo) / span }
}
