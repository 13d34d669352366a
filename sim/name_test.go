package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Name", func() {
	It("should parse indexed names", func() {
		n := ParseName("Fabric.Queue[3][1]")

		Expect(n.Tokens).To(HaveLen(2))
		Expect(n.Tokens[1].ElemName).To(Equal("Queue"))
		Expect(n.Tokens[1].Index).To(Equal([]int{3, 1}))
	})

	DescribeTable("invalid names",
		func(name string) {
			Expect(func() { NameMustBeValid(name) }).To(Panic())
		},
		Entry("empty element", "A..B"),
		Entry("trailing dot", "A.B."),
		Entry("lower case", "A.b"),
		Entry("underscore", "A.B_C"),
		Entry("unmatched bracket", "A.B[1"),
		Entry("non-integer index", "A.B[x]"),
	)

	It("should accept valid names", func() {
		Expect(func() { NameMustBeValid("Fabric.Former.Queue[2]") }).
			NotTo(Panic())
	})

	It("should build names", func() {
		Expect(BuildName("", "Top")).To(Equal("Top"))
		Expect(BuildName("Top", "In")).To(Equal("Top.In"))
		Expect(BuildNameWithIndex("Top", "Port", 4)).To(Equal("Top.Port[4]"))
	})
})
