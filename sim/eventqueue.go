package sim

import "container/heap"

// eventQueue orders events by time. Events of the same time leave in the
// order they arrived, so a run is reproducible.
type eventQueue struct {
	entries []queuedEvent
	seq     uint64
}

type queuedEvent struct {
	evt Event
	seq uint64
}

func (q *eventQueue) push(evt Event) {
	q.seq++
	heap.Push(q, queuedEvent{evt: evt, seq: q.seq})
}

func (q *eventQueue) pop() Event {
	return heap.Pop(q).(queuedEvent).evt
}

func (q *eventQueue) Len() int {
	return len(q.entries)
}

func (q *eventQueue) Less(i, j int) bool {
	ti, tj := q.entries[i].evt.Time(), q.entries[j].evt.Time()
	if ti != tj {
		return ti < tj
	}

	return q.entries[i].seq < q.entries[j].seq
}

func (q *eventQueue) Swap(i, j int) {
	q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
}

func (q *eventQueue) Push(x any) {
	q.entries = append(q.entries, x.(queuedEvent))
}

func (q *eventQueue) Pop() any {
	last := len(q.entries) - 1
	e := q.entries[last]
	q.entries[last] = queuedEvent{}
	q.entries = q.entries[:last]

	return e
}
