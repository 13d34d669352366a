// Package mmbridge turns a stream of address-setup and data transfers into
// memory-mapped address-phase and data-phase requests.
//
// The low bit of the side channel marks an address-setup transfer. The next
// eight bits carry the burst length field L; the burst that follows has L+1
// data transfers. The address is the little-endian concatenation of the kept
// items of the address-setup transfer and must be aligned to the bus width.
package mmbridge

import (
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

const (
	addressFlag   = 1
	burstLenShift = 1
	burstLenMask  = 0xff
	userBits      = 9
)

// An AddressReq is the address phase of one burst.
type AddressReq struct {
	ID        string
	Address   uint64
	NumBeats  int
	StreamTag uint32
}

// A DataReq is one data phase of a burst.
type DataReq struct {
	ID      string
	BurstID string
	Address uint64
	Data    []uint64
	Strb    uint64
	Last    bool
}

// Bridge is the stream sink side of a memory-mapped port. It accepts only
// when both request buffers have room.
type Bridge struct {
	name    string
	config  stream.Config
	addrBuf sim.Buffer
	dataBuf sim.Buffer

	burst     *AddressReq
	address   uint64
	remaining int
	numBursts uint64
}

// NewBridge creates a bridge that writes requests to the given buffers.
func NewBridge(
	name string,
	config stream.Config,
	addrBuf, dataBuf sim.Buffer,
) *Bridge {
	sim.NameMustBeValid(name)

	if err := config.Validate(); err != nil {
		panic(err)
	}

	if config.IgnoreUser || config.UserBits < userBits {
		panic(stream.NewConfigError(name,
			"side channel of %d bits cannot carry the burst header",
			config.UserBits))
	}

	if config.NumItems*config.ItemBits > 64 {
		panic(stream.NewConfigError(name,
			"addresses wider than 64 bits are not supported"))
	}

	return &Bridge{
		name:    name,
		config:  config,
		addrBuf: addrBuf,
		dataBuf: dataBuf,
	}
}

// Name returns the name of the bridge.
func (b *Bridge) Name() string {
	return b.name
}

// InConfig returns the shape of the consumed channel.
func (b *Bridge) InConfig() stream.Config {
	return b.config
}

// Ready reports whether the bridge accepts on this tick.
func (b *Bridge) Ready() bool {
	return b.addrBuf.CanPush() && b.dataBuf.CanPush()
}

// Commit converts a fired transfer into a request. It panics with a
// *stream.ProtocolError on a misaligned address, on data outside of a burst,
// and on an address setup inside a burst.
func (b *Bridge) Commit(in stream.Beat, accepted bool) {
	if in.T.Reset {
		b.burst = nil
		b.remaining = 0

		return
	}

	if !stream.Fires(in, accepted) {
		return
	}

	t := b.config.Trim(in.T)
	if t.User&addressFlag != 0 {
		b.startBurst(t)
		return
	}

	b.sendData(t)
}

func (b *Bridge) startBurst(t stream.Transfer) {
	if b.remaining > 0 {
		panic(stream.NewProtocolError(b.name, t,
			"address setup with %d data transfers of the burst outstanding",
			b.remaining))
	}

	addr := b.assembleAddress(t)
	busBytes := uint64(b.config.BusBytes())

	if addr%busBytes != 0 {
		panic(stream.NewProtocolError(b.name, t,
			"address %#x is not aligned to the %d-byte bus", addr, busBytes))
	}

	req := &AddressReq{
		ID:        sim.GetIDGenerator().Generate(),
		Address:   addr,
		NumBeats:  int((t.User>>burstLenShift)&burstLenMask) + 1,
		StreamTag: t.ID,
	}

	b.addrBuf.Push(req)
	b.burst = req
	b.address = addr
	b.remaining = req.NumBeats
	b.numBursts++
}

func (b *Bridge) assembleAddress(t stream.Transfer) uint64 {
	var addr uint64

	for i := 0; i < b.config.NumItems && i < len(t.Data); i++ {
		if t.Keep&(1<<uint(i)) == 0 {
			continue
		}

		addr |= t.Data[i] << uint(i*b.config.ItemBits)
	}

	return addr
}

func (b *Bridge) sendData(t stream.Transfer) {
	if b.remaining == 0 {
		panic(stream.NewProtocolError(b.name, t,
			"data transfer outside of a burst"))
	}

	b.remaining--

	b.dataBuf.Push(&DataReq{
		ID:      sim.GetIDGenerator().Generate(),
		BurstID: b.burst.ID,
		Address: b.address,
		Data:    t.Data,
		Strb:    t.Strb,
		Last:    b.remaining == 0,
	})

	b.address += uint64(b.config.BusBytes())
}

// InBurst reports whether data transfers of a burst are outstanding.
func (b *Bridge) InBurst() bool {
	return b.remaining > 0
}

// NumBursts returns the number of address phases issued.
func (b *Bridge) NumBursts() uint64 {
	return b.numBursts
}
