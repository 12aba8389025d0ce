// Package alerts queues the blocking messages a screen shows to the operator.
package alerts

import "sync"

type Queue struct {
	mu   sync.Mutex
	msgs []string
}

func (q *Queue) Alert(msg string) {
	q.mu.Lock()
	q.msgs = append(q.msgs, msg)
	q.mu.Unlock()
}

// Drain returns queued messages oldest first and empties the queue.
func (q *Queue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.msgs
	q.msgs = nil

	if out == nil {
		return []string{}
	}

	return out
}
