package population_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mchu-1/barcode-simulator/internal/population"
)

var _ = Describe("ChooseBarcode", func() {
	It("stays within [1, n)", func() {
		src := population.NewSource(7)
		for _, n := range []int{2, 3, 10, 100} {
			for i := 0; i < 500; i++ {
				b, err := population.ChooseBarcode(src, n)
				Expect(err).NotTo(HaveOccurred())
				Expect(int(b)).To(BeNumerically(">=", 1))
				Expect(int(b)).To(BeNumerically("<", n))
			}
		}
	})

	It("always yields 1 when n is 2", func() {
		src := population.NewSource(3)
		for i := 0; i < 50; i++ {
			Expect(population.ChooseBarcode(src, 2)).To(Equal(population.Barcode(1)))
		}
	})

	DescribeTable("rejects a barcode space smaller than 2",
		func(n int) {
			_, err := population.ChooseBarcode(population.NewSource(1), n)
			Expect(err).To(MatchError(population.ErrInvalidInput))
		},
		Entry("one", 1),
		Entry("zero", 0),
		Entry("negative", -4),
	)
})

var _ = Describe("GenerateRecording", func() {
	It("returns empty when the entry draw exceeds p", func() {
		src := &scriptedSource{floats: []float64{0.9}, ints: barcodes(2)}
		rec, err := population.GenerateRecording(src, 20, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec).To(BeEmpty())
	})

	It("returns empty when the first barcode is above the midpoint", func() {
		src := &scriptedSource{floats: []float64{0.1}, ints: barcodes(11)}
		rec, err := population.GenerateRecording(src, 20, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec).To(BeEmpty())
	})

	It("accepts a first barcode exactly at the midpoint", func() {
		src := &scriptedSource{floats: []float64{0.1, 0.9}, ints: barcodes(10)}
		rec, err := population.GenerateRecording(src, 20, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec).To(Equal(population.Recording{10}))
	})

	It("alternates sides of the boundary and stops on a same-side proposal", func() {
		src := &scriptedSource{
			floats: []float64{0.1, 0.2, 0.3, 0.4},
			ints:   barcodes(3, 12, 2, 5),
		}
		rec, err := population.GenerateRecording(src, 20, 0.5)
		Expect(err).NotTo(HaveOccurred())
		// 3 low, 12 high, 2 low, then 5 is low like 2: discarded.
		Expect(rec).To(Equal(population.Recording{3, 12, 2}))
	})

	It("ends naturally once a draw reaches p", func() {
		src := &scriptedSource{
			floats: []float64{0.1, 0.2, 0.5},
			ints:   barcodes(4, 9),
		}
		rec, err := population.GenerateRecording(src, 20, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec).To(Equal(population.Recording{4, 9}))
	})

	It("treats the boundary value as neither side", func() {
		src := &scriptedSource{
			floats: []float64{0.1, 0.2, 0.3, 0.9},
			ints:   barcodes(7, 7, 7),
		}
		rec, err := population.GenerateRecording(src, 20, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec).To(Equal(population.Recording{7, 7, 7}))
	})

	It("never inserts when p is zero", func() {
		src := population.NewSource(11)
		for i := 0; i < 1000; i++ {
			rec, err := population.GenerateRecording(src, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec).To(BeEmpty())
		}
	})

	It("starts every non-empty recording in the lower half", func() {
		src := population.NewSource(5)
		for i := 0; i < 2000; i++ {
			rec, err := population.GenerateRecording(src, 15, 0.8)
			Expect(err).NotTo(HaveOccurred())
			if len(rec) > 0 {
				Expect(int(rec[0])).To(BeNumerically("<=", 15/2))
			}
			for _, b := range rec {
				Expect(int(b)).To(BeNumerically(">=", 1))
				Expect(int(b)).To(BeNumerically("<", 15))
			}
		}
	})

	DescribeTable("rejects invalid parameters",
		func(n int, p float64) {
			_, err := population.GenerateRecording(population.NewSource(1), n, p)
			Expect(err).To(MatchError(population.ErrInvalidInput))
		},
		Entry("p below zero", 10, -0.1),
		Entry("p above one", 10, 1.5),
		Entry("n too small", 1, 0.5),
	)
})
