package packetformer

import "github.com/sarchlab/streamsim/fifo"

// A PacketRecord describes one completed packet.
type PacketRecord struct {
	Stream int
	Length int
}

// completionTracker keeps packet records in the order packets completed.
type completionTracker struct {
	records *fifo.Ring[PacketRecord]
}

func newCompletionTracker(capacity int) *completionTracker {
	return &completionTracker{records: fifo.NewRing[PacketRecord](capacity)}
}

func (t *completionTracker) Full() bool {
	return t.records.Full()
}

func (t *completionTracker) Empty() bool {
	return t.records.Empty()
}

func (t *completionTracker) Len() int {
	return t.records.Size()
}

func (t *completionTracker) Push(r PacketRecord) {
	t.records.Push(r)
}

func (t *completionTracker) Pop() PacketRecord {
	return t.records.Pop()
}

func (t *completionTracker) Clear() {
	t.records.Clear()
}
