package api

import (
	"sync"
)

// Dispatcher posts work onto the execution context that owns the UI.  Post must not run fn on the calling goroutine
// before returning.
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a plain function to the Dispatcher interface
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Post(fn func()) {
	f(fn)
}

// MainQueue is a Dispatcher that runs every posted function, in order, on a single dedicated goroutine.  It stands in
// for a UI thread when there is no UI, such as the headless exchange command.
type MainQueue struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	closed  bool
	done    chan struct{}
}

// NewMainQueue creates a queue and starts its goroutine.  Close must be called to stop it.
func NewMainQueue() *MainQueue {
	q := &MainQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

// Post queues fn to run on the queue goroutine.  Functions posted after Close are dropped.
func (q *MainQueue) Post(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting new work, waits for already queued functions to finish, then stops the goroutine.  It must not
// be called from a posted function: that function would wait on itself and never return.
func (q *MainQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}

func (q *MainQueue) loop() {
	defer close(q.done)
	for range q.wake {
		for {
			q.mu.Lock()
			if len(q.pending) == 0 {
				closed := q.closed
				q.mu.Unlock()
				if closed {
					return
				}
				break
			}
			fn := q.pending[0]
			q.pending = q.pending[1:]
			q.mu.Unlock()

			fn()
		}
	}
}
