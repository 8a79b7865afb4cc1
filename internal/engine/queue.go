package engine

import (
	"context"
)

// MainQueue hands work from loader goroutines to the render thread, which
// owns the GL context. Functions run in the order they were posted.
type MainQueue struct {
	ch chan func()
}

func NewMainQueue(size int) *MainQueue {
	if size < 1 {
		size = 1
	}
	return &MainQueue{ch: make(chan func(), size)}
}

// Post queues fn for the next Drain. It blocks while the queue is full and
// gives up, returning false, once ctx is done.
func (q *MainQueue) Post(ctx context.Context, fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case q.ch <- fn:
		return true
	case <-ctx.Done():
		return false
	}
}

// Drain runs everything queued so far and reports how many functions ran.
// Functions posted while draining wait for the next call.
func (q *MainQueue) Drain() int {
	pending := len(q.ch)
	for i := 0; i < pending; i++ {
		fn := <-q.ch
		fn()
	}
	return pending
}

// Len is the number of queued functions.
func (q *MainQueue) Len() int {
	return len(q.ch)
}
