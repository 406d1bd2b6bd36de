package population_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mchu-1/barcode-simulator/internal/population"
)

var _ = Describe("Simulator", func() {
	It("turns one well of 8 cells into two clones of 8", func() {
		s := population.NewSimulator(population.NewSource(99), population.DefaultPolicy())
		next, err := s.Step(population.NewGeneration(1, 8), 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(HaveLen(2))
		Expect(next[0]).To(HaveLen(8))
		Expect(next[1]).To(HaveLen(8))
	})

	It("keeps recordings empty when continuation never triggers", func() {
		policy := population.DefaultPolicy()
		policy.Continuation = 0
		s := population.NewSimulator(population.NewSource(1), policy)

		gen := population.NewGeneration(3, 10)
		for i := 0; i < 3; i++ {
			var err error
			gen, err = s.Step(gen, 10)
			Expect(err).NotTo(HaveOccurred())
		}
		// 10 -> 40 -> 20 -> 2x10 per well, for three generations.
		Expect(gen).To(HaveLen(3 * 8))
		for _, well := range gen {
			Expect(well).To(HaveLen(10))
			for _, c := range well {
				Expect(c.Recording).To(BeEmpty())
			}
		}
	})

	It("concatenates clones in well order", func() {
		policy := population.Policy{Continuation: 0, Rounds: 1, Divisions: 0, Loss: 0, Splits: 2}
		floats := make([]float64, 16)
		for i := range floats {
			floats[i] = 0.5
		}
		s := population.NewSimulator(&scriptedSource{floats: floats, ints: make([]int, 8)}, policy)

		gen := population.Generation{tagged(4), tagged(4)}
		for i := range gen[1] {
			gen[1][i].Recording[0] += 10
		}
		next, err := s.Step(gen, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(HaveLen(4))
		Expect(tags(next[0])).To(Equal([]int{1, 2}))
		Expect(tags(next[1])).To(Equal([]int{3, 4}))
		Expect(tags(next[2])).To(Equal([]int{11, 12}))
		Expect(tags(next[3])).To(Equal([]int{13, 14}))
	})

	It("drops every well after total loss", func() {
		policy := population.DefaultPolicy()
		policy.Loss = 1
		s := population.NewSimulator(population.NewSource(5), policy)
		next, err := s.Step(population.NewGeneration(2, 6), 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(BeEmpty())
	})

	It("reports the failing well and stage", func() {
		s := population.NewSimulator(population.NewSource(5), population.DefaultPolicy(),
			population.WithMaxCells(30))
		gen := population.Generation{population.NewPopulation(4), population.NewPopulation(8)}

		_, err := s.Step(gen, 10)
		Expect(err).To(MatchError(population.ErrResourceExhausted))

		var stepErr *population.StepError
		Expect(errors.As(err, &stepErr)).To(BeTrue())
		Expect(stepErr.Well).To(Equal(1))
		Expect(stepErr.Stage).To(Equal("incubate"))
	})

	It("rejects an invalid policy before touching any well", func() {
		policy := population.DefaultPolicy()
		policy.Splits = 0
		s := population.NewSimulator(&scriptedSource{}, policy)
		_, err := s.Step(population.NewGeneration(1, 4), 10)
		Expect(err).To(MatchError(population.ErrInvalidInput))
	})

	It("rejects a barcode space smaller than 2", func() {
		s := population.NewSimulator(&scriptedSource{}, population.DefaultPolicy())
		_, err := s.Step(population.NewGeneration(1, 4), 1)
		Expect(err).To(MatchError(population.ErrInvalidInput))
	})

	It("reproduces a run from the same seed", func() {
		run := func() population.Generation {
			s := population.NewSimulator(population.NewSource(1234), population.DefaultPolicy())
			gen := population.NewGeneration(2, 50)
			for i := 0; i < 3; i++ {
				var err error
				gen, err = s.Step(gen, 20)
				Expect(err).NotTo(HaveOccurred())
			}
			return gen
		}
		Expect(run()).To(Equal(run()))
	})
})
