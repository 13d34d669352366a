package stream

import "math/bits"

// MaxItems is the largest number of items a transfer can carry; keep and
// strobe masks are 64 bits wide.
const MaxItems = 64

// Config describes the shape of a channel. Ignored fields are not stored or
// forwarded by blocks that trim their input.
type Config struct {
	NumItems   int
	ItemBits   int
	IDBits     int
	DestBits   int
	UserBits   int
	IgnoreID   bool
	IgnoreDest bool
	IgnoreUser bool
}

// DefaultConfig returns a channel of eight 8-bit items with an 8-bit stream
// tag, no destination, and a 16-bit side channel.
func DefaultConfig() Config {
	return Config{
		NumItems:   8,
		ItemBits:   8,
		IDBits:     8,
		UserBits:   16,
		IgnoreDest: true,
	}
}

// Validate checks that the field widths are representable.
func (c Config) Validate() error {
	if c.NumItems < 1 || c.NumItems > MaxItems {
		return NewConfigError("", "items per transfer must be in [1, %d], got %d",
			MaxItems, c.NumItems)
	}

	if c.ItemBits < 1 || c.ItemBits > 64 {
		return NewConfigError("", "item width must be in [1, 64], got %d",
			c.ItemBits)
	}

	if c.IDBits < 0 || c.IDBits > 32 {
		return NewConfigError("", "stream tag width must be in [0, 32], got %d",
			c.IDBits)
	}

	if c.DestBits < 0 || c.DestBits > 32 {
		return NewConfigError("", "destination width must be in [0, 32], got %d",
			c.DestBits)
	}

	if c.UserBits < 0 || c.UserBits > 64 {
		return NewConfigError("", "side-channel width must be in [0, 64], got %d",
			c.UserBits)
	}

	return nil
}

// BusBytes returns the payload width in bytes, rounded up.
func (c Config) BusBytes() int {
	return (c.NumItems*c.ItemBits + 7) / 8
}

// CanTag reports whether n distinct stream tags fit in the tag field.
func (c Config) CanTag(n int) bool {
	if c.IgnoreID {
		return n <= 1
	}

	return BitsFor(n-1) <= c.IDBits
}

// Trim masks every field to its configured width and zeroes ignored fields.
func (c Config) Trim(t Transfer) Transfer {
	t = t.Clone()
	t.Keep &= FullMask(c.NumItems)
	t.Strb &= t.Keep

	if len(t.Data) > c.NumItems {
		t.Data = t.Data[:c.NumItems]
	}

	itemMask := FullMask(c.ItemBits)
	for i := range t.Data {
		t.Data[i] &= itemMask
	}

	t.ID = trimField(t.ID, c.IDBits, c.IgnoreID)
	t.Dest = trimField(t.Dest, c.DestBits, c.IgnoreDest)

	if c.IgnoreUser {
		t.User = 0
	} else {
		t.User &= FullMask(c.UserBits)
	}

	return t
}

func trimField(v uint32, width int, ignore bool) uint32 {
	if ignore {
		return 0
	}

	return v & uint32(FullMask(width))
}

// BitsFor returns the number of bits needed to represent v.
func BitsFor(v int) int {
	if v <= 0 {
		return 0
	}

	return bits.Len(uint(v))
}

// CeilLog2 returns the smallest k with 1<<k >= v.
func CeilLog2(v int) int {
	if v <= 1 {
		return 0
	}

	return bits.Len(uint(v - 1))
}
