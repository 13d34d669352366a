package stream

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	It("should validate the default config", func() {
		Expect(DefaultConfig().Validate()).To(Succeed())
	})

	DescribeTable("invalid configs",
		func(mutate func(c *Config)) {
			c := DefaultConfig()
			mutate(&c)

			err := c.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(&ConfigError{}))
		},
		Entry("no items", func(c *Config) { c.NumItems = 0 }),
		Entry("too many items", func(c *Config) { c.NumItems = 65 }),
		Entry("item too wide", func(c *Config) { c.ItemBits = 65 }),
		Entry("tag too wide", func(c *Config) { c.IDBits = 33 }),
		Entry("user too wide", func(c *Config) { c.UserBits = 65 }),
	)

	It("should tell if a number of streams can be tagged", func() {
		c := DefaultConfig()
		c.IDBits = 2

		Expect(c.CanTag(4)).To(BeTrue())
		Expect(c.CanTag(5)).To(BeFalse())

		c.IgnoreID = true
		Expect(c.CanTag(1)).To(BeTrue())
		Expect(c.CanTag(2)).To(BeFalse())
	})

	It("should trim ignored and oversized fields without touching the input",
		func() {
			c := Config{NumItems: 2, ItemBits: 4, IDBits: 2, UserBits: 3,
				IgnoreDest: true}
			in := Transfer{
				Data: []uint64{0xff, 0x12, 0x34},
				Keep: 0x7, Strb: 0x5, ID: 7, Dest: 3, User: 0xf,
			}

			out := c.Trim(in)

			Expect(out.Data).To(Equal([]uint64{0xf, 0x2}))
			Expect(out.Keep).To(Equal(uint64(0x3)))
			Expect(out.Strb).To(Equal(uint64(0x1)))
			Expect(out.ID).To(Equal(uint32(3)))
			Expect(out.Dest).To(BeZero())
			Expect(out.User).To(Equal(uint64(0x7)))
			Expect(in.Data[0]).To(Equal(uint64(0xff)))
		})

	It("should compute bit widths", func() {
		Expect(BitsFor(0)).To(Equal(0))
		Expect(BitsFor(1)).To(Equal(1))
		Expect(BitsFor(4)).To(Equal(3))
		Expect(CeilLog2(1)).To(Equal(0))
		Expect(CeilLog2(5)).To(Equal(3))
		Expect(CeilLog2(8)).To(Equal(3))
	})
})
