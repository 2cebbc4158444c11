package pagerange_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/listing-go/pagerange"
)

const E = pagerange.Ellipsis

var _ = Describe("Build", func() {
	DescribeTable("default boundary and sibling counts",
		func(total, current int, expected []pagerange.Entry) {
			Expect(pagerange.Build(total, current)).To(Equal(expected))
		},
		Entry("gaps on both sides", 20, 10, []pagerange.Entry{1, E, 9, 10, 11, E, 20}),
		Entry("everything fits", 7, 4, []pagerange.Entry{1, 2, 3, 4, 5, 6, 7}),
		Entry("left bridge", 10, 2, []pagerange.Entry{1, 2, 3, E, 10}),
		Entry("first page", 10, 1, []pagerange.Entry{1, 2, E, 10}),
		Entry("left bridge from the middle", 10, 4, []pagerange.Entry{1, 2, 3, 4, 5, E, 10}),
		Entry("right bridge", 10, 7, []pagerange.Entry{1, E, 6, 7, 8, 9, 10}),
		Entry("last page", 10, 10, []pagerange.Entry{1, E, 9, 10}),
		Entry("single page", 1, 1, []pagerange.Entry{1}),
		Entry("zero pages", 0, 1, []pagerange.Entry{1}),
		Entry("current below range", 20, -3, []pagerange.Entry{1, 2, E, 20}),
		Entry("current above range", 20, 99, []pagerange.Entry{1, E, 19, 20}),
	)

	It("honours boundary and sibling counts", func() {
		Expect(pagerange.Build(30, 15, pagerange.WithBoundaryCount(2), pagerange.WithSiblingCount(2))).
			To(Equal([]pagerange.Entry{1, 2, E, 13, 14, 15, 16, 17, E, 29, 30}))
	})

	It("returns the full range up to the ellipsis threshold", func() {
		for total := 1; total <= 9; total++ {
			entries := pagerange.Build(total, 1, pagerange.WithSiblingCount(2))
			Expect(entries).To(HaveLen(total))
			for i, e := range entries {
				Expect(e).To(Equal(pagerange.Entry(i + 1)))
			}
		}
	})

	It("holds its invariants for every input", func() {
		for boundary := 0; boundary <= 3; boundary++ {
			for sibling := 0; sibling <= 3; sibling++ {
				for total := 1; total <= 40; total++ {
					for current := 1; current <= total; current++ {
						entries := pagerange.Build(total, current,
							pagerange.WithBoundaryCount(boundary),
							pagerange.WithSiblingCount(sibling),
						)

						Expect(entries).To(ContainElement(pagerange.Entry(current)))
						for i, e := range entries {
							if !e.IsEllipsis() {
								Expect(int(e)).To(BeNumerically(">=", 1))
								Expect(int(e)).To(BeNumerically("<=", total))
							}
							if i == 0 {
								continue
							}
							prev := entries[i-1]
							Expect(prev.IsEllipsis() && e.IsEllipsis()).To(BeFalse(), "adjacent ellipses")
							if !prev.IsEllipsis() && !e.IsEllipsis() {
								Expect(e).To(Equal(prev + 1))
							}
							if e.IsEllipsis() && i+1 < len(entries) {
								Expect(int(entries[i+1] - prev)).To(BeNumerically(">", 2), "ellipsis hiding one page")
							}
						}
					}
				}
			}
		}
	})
})

var _ = Describe("Entry", func() {
	It("renders the ellipsis", func() {
		Expect(pagerange.Strings(pagerange.Build(20, 10))).
			To(Equal([]string{"1", "…", "9", "10", "11", "…", "20"}))
	})
})

var _ = Describe("Window", func() {
	DescribeTable("windows",
		func(current, last, maxVisible int, expected []int) {
			Expect(pagerange.Window(current, last, maxVisible)).To(Equal(expected))
		},
		Entry("at the start", 1, 10, 5, []int{1, 2, 3, 4, 5}),
		Entry("centred", 6, 10, 5, []int{4, 5, 6, 7, 8}),
		Entry("at the end", 10, 10, 5, []int{6, 7, 8, 9, 10}),
		Entry("near the end", 9, 10, 5, []int{6, 7, 8, 9, 10}),
		Entry("fewer pages than slots", 2, 3, 5, []int{1, 2, 3}),
		Entry("even width", 6, 10, 4, []int{4, 5, 6, 7}),
		Entry("unknown page count", 1, 0, 5, []int{}),
		Entry("no slots", 1, 10, 0, []int{}),
	)
})
