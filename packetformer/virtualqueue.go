package packetformer

import "log"

// virtualQueues are ring buffers that share one address space. Queue k owns
// the addresses whose high bits equal k.
type virtualQueues struct {
	depth     int
	shift     uint
	threshold int

	wr    []int
	rd    []int
	level []int
}

func newVirtualQueues(n, depth, margin int) *virtualQueues {
	shift := uint(0)
	for 1<<shift < depth {
		shift++
	}

	return &virtualQueues{
		depth:     depth,
		shift:     shift,
		threshold: depth - margin,
		wr:        make([]int, n),
		rd:        make([]int, n),
		level:     make([]int, n),
	}
}

// Address concatenates the queue index and the local pointer.
func (q *virtualQueues) Address(k, ptr int) int {
	return k<<q.shift | ptr&(q.depth-1)
}

// Level returns the number of transfers held by queue k.
func (q *virtualQueues) Level(k int) int {
	return q.level[k]
}

// AlmostFull reports whether queue k reached its threshold.
func (q *virtualQueues) AlmostFull(k int) bool {
	return q.level[k] >= q.threshold
}

// AnyAlmostFull reports whether any queue reached its threshold.
func (q *virtualQueues) AnyAlmostFull() bool {
	for k := range q.level {
		if q.AlmostFull(k) {
			return true
		}
	}

	return false
}

// Push reserves the slot at the write pointer of queue k and returns its
// address.
func (q *virtualQueues) Push(k int) int {
	if q.level[k] == q.depth {
		log.Panicf("virtual queue %d overflow", k)
	}

	addr := q.Address(k, q.wr[k])
	q.wr[k] = (q.wr[k] + 1) & (q.depth - 1)
	q.level[k]++

	return addr
}

// Pop releases the slot at the read pointer of queue k and returns its
// address.
func (q *virtualQueues) Pop(k int) int {
	if q.level[k] == 0 {
		log.Panicf("virtual queue %d underflow", k)
	}

	addr := q.Address(k, q.rd[k])
	q.rd[k] = (q.rd[k] + 1) & (q.depth - 1)
	q.level[k]--

	return addr
}

// Clear empties every queue.
func (q *virtualQueues) Clear() {
	for k := range q.level {
		q.wr[k] = 0
		q.rd[k] = 0
		q.level[k] = 0
	}
}
