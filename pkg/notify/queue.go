// Package notify carries best-effort state updates to a UI consumer.
package notify

import "mutter/pkg/dictation"

const defaultCapacity = 16

// Queue is a single-producer/single-consumer signal path. Publishing never
// blocks: with no consumer or a full buffer, updates are silently dropped.
// Consumer absence never affects producer correctness.
type Queue struct {
	ch chan dictation.State
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{ch: make(chan dictation.State, capacity)}
}

// Publish offers a state update without blocking. The return value reports
// whether the update was enqueued; callers are free to ignore it.
func (q *Queue) Publish(s dictation.State) bool {
	select {
	case q.ch <- s:
		return true
	default:
		return false
	}
}

// Shutdown enqueues the StateShutdown sentinel, evicting the oldest pending
// update if the buffer is full so the consumer is guaranteed to see it.
func (q *Queue) Shutdown() {
	for {
		if q.Publish(dictation.StateShutdown) {
			return
		}
		select {
		case <-q.ch:
		default:
			return
		}
	}
}

// Updates is the consumer side of the queue.
func (q *Queue) Updates() <-chan dictation.State {
	return q.ch
}
