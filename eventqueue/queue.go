// Package eventqueue provides a time-ordered queue of simulation events.
package eventqueue

import (
	"container/heap"

	"gitlab.com/akita/akita/v3/sim"
)

// Queue holds pending events ordered by time. Events that happen at the same
// time are popped in the order they were pushed.
type Queue struct {
	events eventHeap
	seq    uint64
}

// New creates and returns an empty Queue.
func New() *Queue {
	q := new(Queue)
	q.events = make(eventHeap, 0)
	heap.Init(&q.events)

	return q
}

// Push adds an event to the queue.
func (q *Queue) Push(evt sim.Event) {
	q.seq++
	heap.Push(&q.events, entry{evt: evt, seq: q.seq})
}

// Pop removes and returns the earliest event. It panics if the queue is
// empty.
func (q *Queue) Pop() sim.Event {
	if q.events.Len() == 0 {
		panic("popping from an empty event queue")
	}

	return heap.Pop(&q.events).(entry).evt
}

// Peek returns the earliest event without removing it from the queue.
func (q *Queue) Peek() sim.Event {
	if q.events.Len() == 0 {
		panic("peeking into an empty event queue")
	}

	return q.events[0].evt
}

// Len returns the number of events in the queue.
func (q *Queue) Len() int {
	return q.events.Len()
}

type entry struct {
	evt sim.Event
	seq uint64
}

type eventHeap []entry

func (h eventHeap) Len() int {
	return len(h)
}

// Less orders by time first and by insertion sequence for ties.
func (h eventHeap) Less(i, j int) bool {
	ti, tj := h[i].evt.Time(), h[j].evt.Time()
	if ti != tj {
		return ti < tj
	}

	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(entry))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[0 : n-1]

	return e
}
