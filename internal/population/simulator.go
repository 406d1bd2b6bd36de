package population

import (
	"fmt"
	"log/slog"
)

// Policy holds the per-generation constants applied to every well.
type Policy struct {
	Continuation float64 `yaml:"continuation" json:"continuation"`
	Rounds       int     `yaml:"rounds" json:"rounds"`
	Divisions    int     `yaml:"divisions" json:"divisions"`
	Loss         float64 `yaml:"loss" json:"loss"`
	Splits       int     `yaml:"splits" json:"splits"`
}

// DefaultPolicy returns p=0.2, one transfection round, two divisions, half
// the cells lost and a split into two clones.
func DefaultPolicy() Policy {
	return Policy{
		Continuation: 0.2,
		Rounds:       1,
		Divisions:    2,
		Loss:         0.5,
		Splits:       2,
	}
}

// Validate checks every field against its allowed range.
func (p Policy) Validate() error {
	if err := checkProbability("continuation probability", p.Continuation); err != nil {
		return err
	}
	if err := checkProbability("loss fraction", p.Loss); err != nil {
		return err
	}
	if p.Rounds < 0 {
		return invalid("round count %d is negative", p.Rounds)
	}
	if p.Divisions < 0 {
		return invalid("division count %d is negative", p.Divisions)
	}
	if p.Splits <= 0 {
		return invalid("part count %d, need at least 1", p.Splits)
	}
	return nil
}

// Simulator advances a Generation by one step. It keeps no state between
// calls other than what it draws from its Source.
type Simulator struct {
	src      Source
	policy   Policy
	maxCells int
	logger   *slog.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithMaxCells bounds the size of any single well after incubation.
func WithMaxCells(n int) Option {
	return func(s *Simulator) { s.maxCells = n }
}

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func NewSimulator(src Source, policy Policy, opts ...Option) *Simulator {
	s := &Simulator{
		src:    src,
		policy: policy,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Policy() Policy { return s.policy }

// Step transfects, incubates and samples every well of gen in order, then
// splits each well into clones. The clones of all wells, in well order,
// form the returned Generation. Step takes ownership of gen: cells of gen
// are mutated by transfection and must not be used afterwards.
//
// Any failure aborts the whole step.
func (s *Simulator) Step(gen Generation, n int) (Generation, error) {
	if err := s.policy.Validate(); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, invalid("barcode space size %d, need at least 2", n)
	}

	expanded := make(Generation, len(gen))
	for i, well := range gen {
		pop, err := s.expand(well, n)
		if err != nil {
			return nil, &StepError{Well: i, Stage: err.stage, Wrapped: err.err}
		}
		expanded[i] = pop
	}

	next := make(Generation, 0, len(gen)*s.policy.Splits)
	for i, well := range expanded {
		clones, err := Split(well, s.policy.Splits)
		if err != nil {
			return nil, &StepError{Well: i, Stage: "split", Wrapped: err}
		}
		next = append(next, clones...)
	}

	s.logger.Debug("generation step",
		"wells", len(gen),
		"clones", len(next),
		"cells", next.Cells(),
	)
	return next, nil
}

type stageErr struct {
	stage string
	err   error
}

func (s *Simulator) expand(well Population, n int) (Population, *stageErr) {
	pop, err := Transfect(s.src, n, s.policy.Continuation, s.policy.Rounds, well)
	if err != nil {
		return nil, &stageErr{"transfect", err}
	}
	pop, err = Incubate(s.src, pop, s.policy.Divisions, s.maxCells)
	if err != nil {
		return nil, &stageErr{"incubate", err}
	}
	pop, err = Sample(s.src, pop, s.policy.Loss)
	if err != nil {
		return nil, &stageErr{"sample", err}
	}
	return pop, nil
}

func (p Policy) String() string {
	return fmt.Sprintf("p=%.2f r=%d d=%d loss=%.2f k=%d",
		p.Continuation, p.Rounds, p.Divisions, p.Loss, p.Splits)
}
