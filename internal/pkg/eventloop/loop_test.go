package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLoop_RunsInOrder(t *testing.T) {
	l := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var (
		mu  sync.Mutex
		got []int
		wg  sync.WaitGroup
	)
	wg.Add(3)
	for i := 0; i < 3; i++ {
		i := i
		l.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()

	for i, v := range got {
		if v != i {
			t.Fatalf("expected in-order execution, got %v", got)
		}
	}
}

func TestLoop_PostAfterClose(t *testing.T) {
	l := New(1)
	l.Close()
	if l.Post(func() {}) {
		t.Error("expected Post to fail after Close")
	}
}

func TestLoop_StoppedTimerNeverRuns(t *testing.T) {
	l := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	fired := make(chan struct{}, 1)
	timer := l.AfterFunc(10*time.Millisecond, func() { fired <- struct{}{} })
	if !timer.Stop() {
		t.Fatal("expected first Stop to report true")
	}
	if timer.Stop() {
		t.Error("expected second Stop to report false")
	}

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoop_TimerRunsOnLoop(t *testing.T) {
	l := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	fired := make(chan struct{})
	l.AfterFunc(time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestManual_Advance(t *testing.T) {
	m := NewManual()
	var order []string

	m.AfterFunc(300*time.Millisecond, func() { order = append(order, "b") })
	m.AfterFunc(100*time.Millisecond, func() {
		order = append(order, "a")
		m.AfterFunc(100*time.Millisecond, func() { order = append(order, "a2") })
	})
	stopped := m.AfterFunc(200*time.Millisecond, func() { order = append(order, "never") })
	stopped.Stop()

	m.Advance(250 * time.Millisecond)
	if len(order) != 2 || order[0] != "a" || order[1] != "a2" {
		t.Fatalf("unexpected order after 250ms: %v", order)
	}
	if m.Pending() != 1 {
		t.Errorf("expected 1 pending timer, got %d", m.Pending())
	}

	m.Advance(50 * time.Millisecond)
	if len(order) != 3 || order[2] != "b" {
		t.Fatalf("unexpected order after 300ms: %v", order)
	}
	if m.Now() != 300*time.Millisecond {
		t.Errorf("expected now 300ms, got %v", m.Now())
	}
}
