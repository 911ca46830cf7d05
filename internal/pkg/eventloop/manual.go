package eventloop

import (
	"time"

	"github.com/samirrijal/campusmap/internal/core/ports"
)

// Manual is a scheduler driven by Advance instead of wall-clock time.
// Callbacks run synchronously inside Advance, in due order. It is meant for
// tests and offline replay.
type Manual struct {
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	seq     uint64
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManual creates a scheduler at time zero.
func NewManual() *Manual { return &Manual{} }

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration { return m.now }

// AfterFunc registers f to run once virtual time reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, f func()) ports.Timer {
	if d < 0 {
		d = 0
	}
	t := &manualTimer{at: m.now + d, seq: m.seq, f: f}
	m.seq++
	m.timers = append(m.timers, t)
	return t
}

// Advance moves time forward by d, firing every timer that comes due.
// Timers scheduled by a callback fire too if they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.next(target)
		if next == nil {
			break
		}
		m.now = next.at
		next.fired = true
		next.f()
	}
	m.now = target
	m.prune()
}

// Pending counts timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (m *Manual) next(limit time.Duration) *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if t.stopped || t.fired || t.at > limit {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (m *Manual) prune() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(m.timers); i++ {
		m.timers[i] = nil
	}
	m.timers = live
}
