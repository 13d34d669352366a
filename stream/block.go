package stream

import (
	"github.com/sarchlab/streamsim/sim"
)

// A Block is one synchronous element on a stream path.
//
// On every tick the owner first evaluates the block, then commits it. Forward
// and Backward must only read the state committed on the previous tick, plus
// the upstream beat and the downstream acceptance respectively, so that every
// block of a path observes the same snapshot. Commit moves the block to its
// next state; it is called exactly once per tick with the same values the
// evaluation used.
type Block interface {
	sim.Named

	// Forward returns the beat presented downstream on this tick.
	Forward(in Beat) Beat

	// Backward returns the acceptance presented upstream on this tick.
	Backward(downReady bool) bool

	// Commit latches the next state.
	Commit(in Beat, downReady bool)

	// Busy reports whether the block holds transfers that can still move
	// without new input.
	Busy() bool
}

// Shaped is implemented by blocks whose input and output channels have a
// fixed shape. Adjacent shaped blocks of a Path must agree on the data width.
type Shaped interface {
	InConfig() Config
	OutConfig() Config
}

// A Source produces the beats that enter a path.
type Source interface {
	// Present returns the beat offered on this tick.
	Present() Beat

	// Commit tells the source whether the offered beat was accepted.
	Commit(accepted bool)

	// Done reports whether the source has nothing more to offer.
	Done() bool
}

// A Sink consumes the beats that leave a path.
type Sink interface {
	// Ready returns the acceptance offered on this tick.
	Ready() bool

	// Commit delivers the beat presented on this tick and whether it fired.
	Commit(b Beat, accepted bool)
}

// Path chains blocks so that the output of one is the input of the next. A
// Path is itself a Block.
type Path struct {
	name    string
	blocks  []Block
	beats   []Beat
	readies []bool
}

// NewPath creates a path from the given blocks, upstream first. It panics
// with a *ConfigError if two adjacent shaped blocks disagree on data width.
func NewPath(name string, blocks ...Block) *Path {
	sim.NameMustBeValid(name)

	for i := 0; i+1 < len(blocks); i++ {
		mustMatchShape(name, blocks[i], blocks[i+1])
	}

	return &Path{
		name:    name,
		blocks:  blocks,
		beats:   make([]Beat, len(blocks)+1),
		readies: make([]bool, len(blocks)+1),
	}
}

func mustMatchShape(pathName string, up, down Block) {
	upShape, ok := up.(Shaped)
	if !ok {
		return
	}

	downShape, ok := down.(Shaped)
	if !ok {
		return
	}

	out := upShape.OutConfig()
	in := downShape.InConfig()

	if out.NumItems != in.NumItems || out.ItemBits != in.ItemBits {
		panic(NewConfigError(pathName,
			"%s emits %dx%d-bit items but %s expects %dx%d-bit items",
			up.Name(), out.NumItems, out.ItemBits,
			down.Name(), in.NumItems, in.ItemBits))
	}
}

// Name returns the name of the path.
func (p *Path) Name() string {
	return p.name
}

// Blocks returns the blocks of the path, upstream first.
func (p *Path) Blocks() []Block {
	return p.blocks
}

// Forward propagates the upstream beat through every block.
func (p *Path) Forward(in Beat) Beat {
	b := in
	for _, blk := range p.blocks {
		b = blk.Forward(b)
	}

	return b
}

// Backward propagates the downstream acceptance through every block.
func (p *Path) Backward(downReady bool) bool {
	r := downReady
	for i := len(p.blocks) - 1; i >= 0; i-- {
		r = p.blocks[i].Backward(r)
	}

	return r
}

// Commit evaluates every block against the same snapshot and then commits
// all of them.
func (p *Path) Commit(in Beat, downReady bool) {
	n := len(p.blocks)

	p.beats[0] = in
	for i, blk := range p.blocks {
		p.beats[i+1] = blk.Forward(p.beats[i])
	}

	p.readies[n] = downReady
	for i := n - 1; i >= 0; i-- {
		p.readies[i] = p.blocks[i].Backward(p.readies[i+1])
	}

	for i, blk := range p.blocks {
		blk.Commit(p.beats[i], p.readies[i+1])
	}
}

// Busy reports whether any block of the path is busy.
func (p *Path) Busy() bool {
	for _, blk := range p.blocks {
		if blk.Busy() {
			return true
		}
	}

	return false
}
