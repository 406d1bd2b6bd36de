package population_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mchu-1/barcode-simulator/internal/population"
)

// tagged returns size cells whose recordings are {i+1}, making every cell
// distinguishable.
func tagged(size int) population.Population {
	pop := make(population.Population, size)
	for i := range pop {
		pop[i] = population.Cell{Recording: population.Recording{population.Barcode(i + 1)}}
	}
	return pop
}

func tags(pop population.Population) []int {
	out := make([]int, len(pop))
	for i, c := range pop {
		out[i] = int(c.Recording[0])
	}
	return out
}

var _ = Describe("Transfect", func() {
	It("only appends to existing recordings", func() {
		src := population.NewSource(21)
		pop := tagged(200)
		before := make([]population.Recording, len(pop))
		for i, c := range pop {
			before[i] = c.Recording.Clone()
		}

		out, err := population.Transfect(src, 10, 0.9, 3, pop)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(200))
		for i, c := range out {
			Expect(len(c.Recording)).To(BeNumerically(">=", len(before[i])))
			Expect(c.Recording[:len(before[i])]).To(Equal(before[i]))
		}
	})

	It("is a no-op for zero rounds", func() {
		src := &scriptedSource{}
		pop := tagged(4)
		out, err := population.Transfect(src, 10, 0.5, 0, pop)
		Expect(err).NotTo(HaveOccurred())
		Expect(tags(out)).To(Equal([]int{1, 2, 3, 4}))
	})

	It("appends the generated sequence to each cell", func() {
		src := &scriptedSource{
			floats: []float64{0.1, 0.9, 0.9},
			ints:   barcodes(2, 3),
		}
		pop := population.NewPopulation(2)
		out, err := population.Transfect(src, 10, 0.5, 1, pop)
		Expect(err).NotTo(HaveOccurred())
		Expect(out[0].Recording).To(Equal(population.Recording{2}))
		Expect(out[1].Recording).To(BeEmpty())
	})

	It("rejects a negative round count", func() {
		_, err := population.Transfect(population.NewSource(1), 10, 0.5, -1, tagged(2))
		Expect(err).To(MatchError(population.ErrInvalidInput))
	})
})

var _ = Describe("Incubate", func() {
	DescribeTable("multiplies the population by 2^d",
		func(size, d int) {
			out, err := population.Incubate(population.NewSource(4), tagged(size), d, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(size << d))

			counts := map[int]int{}
			for _, t := range tags(out) {
				counts[t]++
			}
			Expect(counts).To(HaveLen(size))
			for _, c := range counts {
				Expect(c).To(Equal(1 << d))
			}
		},
		Entry("no divisions", 5, 0),
		Entry("one division", 5, 1),
		Entry("two divisions", 8, 2),
		Entry("empty", 0, 3),
	)

	It("produces independent replicas", func() {
		out, err := population.Incubate(population.NewSource(2), tagged(1), 1, 0)
		Expect(err).NotTo(HaveOccurred())
		out[0].Recording = append(out[0].Recording, 9)
		out[0].Recording[0] = 42
		Expect(out[1].Recording).To(Equal(population.Recording{1}))
	})

	It("refuses to grow past the cell limit", func() {
		_, err := population.Incubate(population.NewSource(2), tagged(10), 3, 50)
		Expect(err).To(MatchError(population.ErrResourceExhausted))
	})

	It("refuses sizes that overflow", func() {
		_, err := population.Incubate(population.NewSource(2), tagged(4), 62, 0)
		Expect(err).To(MatchError(population.ErrResourceExhausted))
	})

	It("rejects a negative division count", func() {
		_, err := population.Incubate(population.NewSource(2), tagged(4), -1, 0)
		Expect(err).To(MatchError(population.ErrInvalidInput))
	})
})

var _ = Describe("Sample", func() {
	DescribeTable("keeps floor(N*(1-loss)) distinct cells of the input",
		func(size int, loss float64, want int) {
			pop := tagged(size)
			out, err := population.Sample(population.NewSource(8), pop, loss)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(want))

			seen := map[int]bool{}
			for _, t := range tags(out) {
				Expect(t).To(BeNumerically(">=", 1))
				Expect(t).To(BeNumerically("<=", size))
				Expect(seen[t]).To(BeFalse())
				seen[t] = true
			}
		},
		Entry("half of 32", 32, 0.5, 16),
		Entry("no loss", 10, 0.0, 10),
		Entry("total loss", 10, 1.0, 0),
		Entry("rounds down", 7, 0.5, 3),
		Entry("empty input", 0, 0.3, 0),
	)

	It("does not reorder its input", func() {
		pop := tagged(20)
		_, err := population.Sample(population.NewSource(8), pop, 0.25)
		Expect(err).NotTo(HaveOccurred())
		Expect(tags(pop)).To(Equal(tags(tagged(20))))
	})

	It("rejects a loss outside [0, 1]", func() {
		_, err := population.Sample(population.NewSource(8), tagged(2), 1.2)
		Expect(err).To(MatchError(population.ErrInvalidInput))
	})
})

var _ = Describe("Split", func() {
	DescribeTable("chunks at stride floor(N/k)",
		func(size, k int, sizes []int) {
			pop := tagged(size)
			chunks, err := population.Split(pop, k)
			Expect(err).NotTo(HaveOccurred())

			got := make([]int, len(chunks))
			var joined []int
			for i, c := range chunks {
				got[i] = len(c)
				joined = append(joined, tags(c)...)
			}
			Expect(got).To(Equal(sizes))
			Expect(joined).To(Equal(tags(pop)))
		},
		Entry("even", 16, 2, []int{8, 8}),
		Entry("single part", 5, 1, []int{5}),
		Entry("remainder adds a short chunk", 7, 2, []int{3, 3, 1}),
		Entry("remainder of several", 10, 3, []int{3, 3, 3, 1}),
		Entry("fewer cells than parts", 3, 5, []int{1, 1, 1}),
	)

	It("returns no clones for an empty population", func() {
		chunks, err := population.Split(population.Population{}, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(BeEmpty())
	})

	It("keeps neighbouring chunks isolated on append", func() {
		chunks, err := population.Split(tagged(4), 2)
		Expect(err).NotTo(HaveOccurred())
		_ = append(chunks[0], population.Cell{Recording: population.Recording{99}})
		Expect(tags(chunks[1])).To(Equal([]int{3, 4}))
	})

	DescribeTable("rejects non-positive part counts",
		func(k int) {
			_, err := population.Split(tagged(4), k)
			Expect(err).To(MatchError(population.ErrInvalidInput))
		},
		Entry("zero", 0),
		Entry("negative", -2),
	)
})
