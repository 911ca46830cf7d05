// Package eventloop serialises callbacks onto one goroutine so that state
// owned by a session never needs a lock.
package eventloop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samirrijal/campusmap/internal/core/ports"
)

// Loop runs posted funcs one at a time, in order, on the goroutine that
// calls Run.
type Loop struct {
	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a loop with the given task buffer.
func New(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Post queues f. It returns false once the loop is closed.
func (l *Loop) Post(f func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- f:
		return true
	case <-l.done:
		return false
	}
}

// Run executes tasks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case f := <-l.tasks:
			f()
		}
	}
}

// Close stops the loop. Queued tasks are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

// AfterFunc schedules f on the loop after d. A timer stopped from the loop
// goroutine never runs, even if it already expired and its task is queued.
func (l *Loop) AfterFunc(d time.Duration, f func()) ports.Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if lt.stopped.Load() {
				return
			}
			f()
		})
	})
	return lt
}

type loopTimer struct {
	t       *time.Timer
	stopped atomic.Bool
}

func (lt *loopTimer) Stop() bool {
	if lt.stopped.Swap(true) {
		return false
	}
	lt.t.Stop()
	return true
}
