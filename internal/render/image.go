package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/mchu-1/barcode-simulator/internal/lineage"
)

// Image rasterizes m with each entry drawn as a scale x scale square.
func Image(m lineage.Matrix, cm Colormap, scale int) *image.RGBA {
	scale = max(scale, 1)
	size := m.Size() * scale
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	norm := normalizer(m.MinMax())
	for i, row := range m {
		for j, v := range row {
			c := cm.At(norm(v))
			for y := i * scale; y < (i+1)*scale; y++ {
				for x := j * scale; x < (j+1)*scale; x++ {
					img.Set(x, y, c)
				}
			}
		}
	}
	return img
}

// WritePNG renders m to a PNG file at path.
func WritePNG(path string, m lineage.Matrix, cm Colormap, scale int) error {
	if m.Size() == 0 {
		return fmt.Errorf("render: empty matrix")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, Image(m, cm, scale)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SVG renders m as an SVG document with one rect per entry.
func SVG(m lineage.Matrix, cm Colormap, cell float64) string {
	size := float64(m.Size()) * cell
	norm := normalizer(m.MinMax())

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
`, size, size, size, size))

	for i, row := range m {
		for j, v := range row {
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(j)*cell, float64(i)*cell, cell, cell, cm.At(norm(v)).Hex()))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
