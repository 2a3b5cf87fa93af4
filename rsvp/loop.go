package rsvp

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// EventLoop is a Loop backed by a goroutine running Run. Tasks run in the
// order they were posted.
type EventLoop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewEventLoop creates an event loop. Call Run to start processing.
func NewEventLoop() *EventLoop {
	return &EventLoop{wake: make(chan struct{}, 1)}
}

// Post queues fn. It never blocks, even when called from the loop itself.
func (l *EventLoop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After posts fn once d has elapsed. Cancelling also drops a task that was
// already posted but has not run.
func (l *EventLoop) After(d time.Duration, fn func()) func() {
	var canceled atomic.Bool
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !canceled.Load() {
				fn()
			}
		})
	})
	return func() {
		canceled.Store(true)
		t.Stop()
	}
}

// Now returns the wall clock time.
func (l *EventLoop) Now() time.Time {
	return time.Now()
}

// Run processes tasks until ctx is done.
func (l *EventLoop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			l.drain()
		}
	}
}

// Ready receives a value whenever tasks are queued. Together with Drain it
// lets another event loop, such as a terminal UI, run the tasks on its own
// goroutine instead of Run.
func (l *EventLoop) Ready() <-chan struct{} {
	return l.wake
}

// Drain runs every queued task, including tasks they post.
func (l *EventLoop) Drain() {
	l.drain()
}

func (l *EventLoop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
	}
}
