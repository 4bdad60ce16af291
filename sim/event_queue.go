package sim

import "container/heap"

// EventQueue is the future-event list. It implements heap.Interface and orders
// events by time, then by insertion order, so events scheduled for the same
// instant are processed first-in first-out.
type EventQueue struct {
	events  []*Event
	nextSeq uint64
	// pending counts queued events per resource so HasPending does not scan.
	pending [NumResources]int
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{events: make([]*Event, 0)}
	heap.Init(q)
	return q
}

// Len implements heap.Interface
func (q *EventQueue) Len() int { return len(q.events) }

// Less implements heap.Interface: time first, insertion sequence second.
func (q *EventQueue) Less(i, j int) bool {
	ei, ej := q.events[i], q.events[j]
	if ei.time != ej.time {
		return ei.time < ej.time
	}
	return ei.seq < ej.seq
}

// Swap implements heap.Interface
func (q *EventQueue) Swap(i, j int) { q.events[i], q.events[j] = q.events[j], q.events[i] }

// Push implements heap.Interface. Use Schedule instead.
func (q *EventQueue) Push(x any) {
	q.events = append(q.events, x.(*Event))
}

// Pop implements heap.Interface. Use PopNext instead.
func (q *EventQueue) Pop() any {
	old := q.events
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.events = old[0 : n-1]
	return item
}

// Schedule stamps the event with the next insertion sequence and adds it to the queue.
func (q *EventQueue) Schedule(e *Event) {
	q.nextSeq++
	e.seq = q.nextSeq
	q.pending[e.Resource()]++
	heap.Push(q, e)
}

// PopNext removes and returns the earliest event, or nil when the queue is empty.
func (q *EventQueue) PopNext() *Event {
	if q.Len() == 0 {
		return nil
	}
	e := heap.Pop(q).(*Event)
	q.pending[e.Resource()]--
	return e
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() *Event {
	if q.Len() == 0 {
		return nil
	}
	return q.events[0]
}

// HasPending reports whether any queued event belongs to r.
func (q *EventQueue) HasPending(r Resource) bool {
	return q.pending[r] > 0
}

// Events returns a copy of the queued events in heap order (not sorted).
func (q *EventQueue) Events() []*Event {
	out := make([]*Event, len(q.events))
	copy(out, q.events)
	return out
}
