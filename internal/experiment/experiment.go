// Package experiment drives a simulation across generations: it steps the
// population, encodes every cell, builds the lineage matrix and reports a
// Snapshot per generation to its observers.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mchu-1/barcode-simulator/internal/config"
	"github.com/mchu-1/barcode-simulator/internal/encode"
	"github.com/mchu-1/barcode-simulator/internal/lineage"
	"github.com/mchu-1/barcode-simulator/internal/population"
)

// Stats summarizes one generation.
type Stats struct {
	Generation          int           `json:"generation"`
	Clones              int           `json:"clones"`
	Cells               int           `json:"cells"`
	MeanRecordingLength float64       `json:"mean_recording_length"`
	MaxRecordingLength  int           `json:"max_recording_length"`
	EmptyFraction       float64       `json:"empty_fraction"`
	Elapsed             time.Duration `json:"elapsed"`
}

// Snapshot is delivered to observers after every generation.
type Snapshot struct {
	Stats
	Population population.Generation
	Matrix     lineage.Matrix
}

type Observer interface {
	OnGeneration(s Snapshot) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot) error

func (f ObserverFunc) OnGeneration(s Snapshot) error { return f(s) }

// ErrComplete is returned by Advance once every configured generation ran.
var ErrComplete = errors.New("experiment: all generations complete")

type Result struct {
	Generations []Stats
	Final       population.Generation
	Matrix      lineage.Matrix
}

type Experiment struct {
	cfg       config.Config
	simulator *population.Simulator
	observers []Observer
	logger    *slog.Logger

	current    population.Generation
	generation int
	result     *Result
}

// New validates cfg and prepares a simulator drawing from src. The
// experiment starts from cfg.Wells fresh wells of cfg.Cells cells.
func New(cfg config.Config, src population.Source, logger *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Experiment{
		cfg: cfg,
		simulator: population.NewSimulator(src, cfg.Policy,
			population.WithMaxCells(cfg.MaxCells),
			population.WithLogger(logger),
		),
		logger: logger,
	}
	e.Reset(population.NewGeneration(cfg.Wells, cfg.Cells))
	return e, nil
}

func (e *Experiment) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Experiment) Config() config.Config { return e.cfg }

// Generation returns the number of generations simulated since the last reset.
func (e *Experiment) Generation() int { return e.generation }

// Reset restarts the experiment from gen, which it takes ownership of.
func (e *Experiment) Reset(gen population.Generation) {
	e.current = gen
	e.generation = 0
	e.result = &Result{
		Generations: make([]Stats, 0, e.cfg.Generations),
		Final:       gen,
	}
}

// Run simulates cfg.Generations generations starting from fresh wells.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	gen := e.current
	if e.generation > 0 {
		gen = population.NewGeneration(e.cfg.Wells, e.cfg.Cells)
	}
	return e.RunFrom(ctx, gen)
}

// RunFrom simulates cfg.Generations generations starting from gen, which it
// takes ownership of. Cancellation is checked between generations.
func (e *Experiment) RunFrom(ctx context.Context, gen population.Generation) (*Result, error) {
	e.Reset(gen)
	for {
		if _, err := e.Advance(ctx); err != nil {
			if errors.Is(err, ErrComplete) {
				return e.result, nil
			}
			return e.result, err
		}
	}
}

// Advance simulates the next generation and notifies observers.
func (e *Experiment) Advance(ctx context.Context) (Snapshot, error) {
	if e.generation >= e.cfg.Generations {
		return Snapshot{}, ErrComplete
	}
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	default:
	}

	g := e.generation + 1
	snap, err := e.step(e.current, g)
	if err != nil {
		return Snapshot{}, fmt.Errorf("generation %d: %w", g, err)
	}
	e.current = snap.Population
	e.generation = g

	e.result.Generations = append(e.result.Generations, snap.Stats)
	e.result.Final = snap.Population
	e.result.Matrix = snap.Matrix

	e.logger.Info("generation complete",
		"generation", g,
		"clones", snap.Clones,
		"cells", snap.Cells,
		"mean_len", fmt.Sprintf("%.3f", snap.MeanRecordingLength),
		"elapsed", snap.Elapsed,
	)

	for _, o := range e.observers {
		if err := o.OnGeneration(snap); err != nil {
			return snap, fmt.Errorf("generation %d observer: %w", g, err)
		}
	}
	return snap, nil
}

func (e *Experiment) step(gen population.Generation, g int) (Snapshot, error) {
	start := time.Now()

	next, err := e.simulator.Step(gen, e.cfg.Barcodes)
	if err != nil {
		return Snapshot{}, err
	}

	e.logger.Debug("encoding", "generation", g, "parity", e.cfg.Parity)
	codes, err := encode.EncodeGeneration(next, e.cfg.Parity)
	if err != nil {
		return Snapshot{}, err
	}

	e.logger.Debug("building lineage matrix", "generation", g, "clones", len(next))
	m, err := lineage.Build(codes, e.cfg.Parity)
	if err != nil {
		return Snapshot{}, err
	}

	stats := Summarize(next)
	stats.Generation = g
	stats.Elapsed = time.Since(start)
	return Snapshot{Stats: stats, Population: next, Matrix: m}, nil
}

// Summarize computes size and recording-length statistics for gen.
func Summarize(gen population.Generation) Stats {
	s := Stats{Clones: len(gen)}
	total, empty := 0, 0
	for _, clone := range gen {
		for _, c := range clone {
			s.Cells++
			n := len(c.Recording)
			total += n
			if n == 0 {
				empty++
			}
			s.MaxRecordingLength = max(s.MaxRecordingLength, n)
		}
	}
	if s.Cells > 0 {
		s.MeanRecordingLength = float64(total) / float64(s.Cells)
		s.EmptyFraction = float64(empty) / float64(s.Cells)
	}
	return s
}
