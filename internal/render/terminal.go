package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mchu-1/barcode-simulator/internal/lineage"
)

var (
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1)
	frameStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

// Downsample averages m into at most size x size blocks.
func Downsample(m lineage.Matrix, size int) lineage.Matrix {
	n := m.Size()
	if size <= 0 || n <= size {
		return m
	}

	out := make(lineage.Matrix, size)
	for i := range out {
		out[i] = make([]float64, size)
		r0, r1 := i*n/size, (i+1)*n/size
		for j := range out[i] {
			c0, c1 := j*n/size, (j+1)*n/size
			sum := 0.0
			for r := r0; r < r1; r++ {
				for c := c0; c < c1; c++ {
					sum += m[r][c]
				}
			}
			out[i][j] = sum / float64((r1-r0)*(c1-c0))
		}
	}
	return out
}

// Terminal renders m as colored blocks, two characters per entry, after
// shrinking it to at most maxSize entries per side.
func Terminal(m lineage.Matrix, cm Colormap, maxSize int) string {
	if m.Size() == 0 {
		return frameStyle.Render("(no clones)")
	}
	orig := m.Size()
	m = Downsample(m, maxSize)
	lo, hi := m.MinMax()
	norm := normalizer(lo, hi)

	rows := make([]string, len(m))
	for i, row := range m {
		var sb strings.Builder
		for _, v := range row {
			style := lipgloss.NewStyle().Background(lipgloss.Color(cm.At(norm(v)).Hex()))
			sb.WriteString(style.Render("  "))
		}
		rows[i] = sb.String()
	}

	caption := fmt.Sprintf("%d clones  min %.3f  max %.3f  (%s)", orig, lo, hi, cm.Name)
	return lipgloss.JoinVertical(lipgloss.Left,
		frameStyle.Render(strings.Join(rows, "\n")),
		captionStyle.Render(caption),
	)
}
