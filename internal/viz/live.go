package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/mchu-1/barcode-simulator/internal/experiment"
	"github.com/mchu-1/barcode-simulator/internal/lineage"
	"github.com/mchu-1/barcode-simulator/internal/render"
)

const heatmapSize = 32

var (
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// Advancer produces the next generation. *experiment.Experiment satisfies it.
type Advancer interface {
	Advance(ctx context.Context) (experiment.Snapshot, error)
}

// Frame is what the view keeps of each generation.
type Frame struct {
	Stats  experiment.Stats
	Matrix lineage.Matrix
}

type generationMsg struct {
	snap experiment.Snapshot
	err  error
}

type tickMsg time.Time

// Model is the Bubble Tea model for the live view.
type Model struct {
	ctx       context.Context
	exp       Advancer
	interval  time.Duration
	frames    []Frame
	playHead  int
	running   bool
	busy      bool
	done      bool
	err       error
	colormaps []render.Colormap
	cmIndex   int
}

func NewModel(ctx context.Context, exp Advancer, interval time.Duration) Model {
	return Model{
		ctx:       ctx,
		exp:       exp,
		interval:  interval,
		playHead:  -1,
		running:   true,
		busy:      true,
		colormaps: []render.Colormap{render.Mako, render.Greys},
	}
}

func (m Model) Init() tea.Cmd {
	return m.advance()
}

func (m Model) advance() tea.Cmd {
	exp, ctx := m.exp, m.ctx
	return func() tea.Msg {
		snap, err := exp.Advance(ctx)
		return generationMsg{snap: snap, err: err}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles key presses and finished generations.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			if m.running && !m.busy && !m.done {
				m.busy = true
				return m, m.advance()
			}
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "c":
			m.cmIndex = (m.cmIndex + 1) % len(m.colormaps)
		}
	case generationMsg:
		m.busy = false
		if msg.err != nil {
			m.done = true
			if !errors.Is(msg.err, experiment.ErrComplete) {
				m.err = msg.err
			}
			return m, nil
		}
		m.frames = append(m.frames, Frame{
			Stats:  msg.snap.Stats,
			Matrix: render.Downsample(msg.snap.Matrix, heatmapSize),
		})
		if m.running {
			return m, m.tick()
		}
	case tickMsg:
		if m.running && !m.busy && !m.done {
			m.busy = true
			return m, m.advance()
		}
	}
	return m, nil
}

// scrub moves the displayed generation; -1 follows the latest.
func (m *Model) scrub(dir int) {
	if len(m.frames) == 0 {
		return
	}
	if m.playHead == -1 {
		m.playHead = len(m.frames) - 1
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.frames) {
		m.playHead = -1
	}
}

// Current returns the frame on display, if any.
func (m Model) Current() (Frame, bool) {
	if len(m.frames) == 0 {
		return Frame{}, false
	}
	if m.playHead >= 0 {
		return m.frames[m.playHead], true
	}
	return m.frames[len(m.frames)-1], true
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("FAILED")
	case m.done:
		return "COMPLETE"
	case m.playHead >= 0:
		return fmt.Sprintf("BROWSING %d/%d", m.playHead+1, len(m.frames))
	case !m.running:
		return "PAUSED"
	default:
		return "RUNNING"
	}
}

func (m Model) View() string {
	frame, ok := m.Current()
	cm := m.colormaps[m.cmIndex]

	heat := render.Terminal(nil, cm, heatmapSize)
	if ok {
		heat = render.Terminal(frame.Matrix, cm, heatmapSize)
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("BARCODE LINEAGE") + "\n")
	s.WriteString(m.status() + "\n\n")
	if ok {
		st := frame.Stats
		s.WriteString(labelStyle.Render("Generation") + valueStyle.Render(fmt.Sprintf("%d", st.Generation)) + "\n")
		s.WriteString(labelStyle.Render("Clones") + valueStyle.Render(fmt.Sprintf("%d", st.Clones)) + "\n")
		s.WriteString(labelStyle.Render("Cells") + valueStyle.Render(fmt.Sprintf("%d", st.Cells)) + "\n")
		s.WriteString(labelStyle.Render("Mean length") + valueStyle.Render(fmt.Sprintf("%.3f", st.MeanRecordingLength)) + "\n")
		s.WriteString(labelStyle.Render("Max length") + valueStyle.Render(fmt.Sprintf("%d", st.MaxRecordingLength)) + "\n")
		s.WriteString(labelStyle.Render("Empty") + valueStyle.Render(fmt.Sprintf("%.1f%%", 100*st.EmptyFraction)) + "\n")
		s.WriteString(labelStyle.Render("Step time") + valueStyle.Render(st.Elapsed.Round(time.Millisecond).String()) + "\n")
	}
	if len(m.frames) > 1 {
		lengths := make([]float64, len(m.frames))
		for i, f := range m.frames {
			lengths[i] = f.Stats.MeanRecordingLength
		}
		chart := asciigraph.Plot(lengths, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("mean recording length"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause [ ]:Browse C:Colormap Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, heat, statsStyle.Render(s.String()))
}

// Run starts the live view and blocks until the user quits.
func Run(ctx context.Context, exp Advancer, interval time.Duration) error {
	_, err := tea.NewProgram(NewModel(ctx, exp, interval)).Run()
	return err
}
