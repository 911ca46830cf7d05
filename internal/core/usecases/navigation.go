package usecases

import (
	"strings"
	"time"

	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/ports"
	"github.com/samirrijal/campusmap/internal/pkg/metrics"
)

// DefaultDebounce is the quiet period after the last keystroke before ranking.
const DefaultDebounce = 300 * time.Millisecond

// Navigator is the suggestion list state machine (Hidden / Listing).
// It is not safe for concurrent use; callers drive it from one logical thread.
type Navigator struct {
	locations []domain.Location
	sink      ports.RenderSink
	sched     ports.Scheduler
	debounce  time.Duration
	limit     int

	state   domain.SearchSession
	pending ports.Timer
	gen     uint64 // invalidates a debounce callback that already fired
}

// NewNavigator creates a navigator in the Hidden state.
func NewNavigator(locations []domain.Location, sink ports.RenderSink, sched ports.Scheduler, debounce time.Duration, limit int) *Navigator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	return &Navigator{
		locations: locations,
		sink:      sink,
		sched:     sched,
		debounce:  debounce,
		limit:     limit,
		state:     domain.SearchSession{ActiveIndex: -1},
	}
}

// State returns a snapshot of the session state.
func (n *Navigator) State() domain.SearchSession {
	s := n.state
	s.Candidates = append([]domain.RankedCandidate(nil), n.state.Candidates...)
	return s
}

// Pending reports whether a debounce timer is armed.
func (n *Navigator) Pending() bool { return n.pending != nil }

// OnQueryChanged restarts the debounce window. Only the last call within
// the window ranks. A blank query hides the list right away.
func (n *Navigator) OnQueryChanged(query string) {
	n.cancelPending()
	n.state.Query = query

	if strings.TrimSpace(query) == "" {
		n.Hide()
		return
	}

	gen := n.gen
	n.pending = n.sched.AfterFunc(n.debounce, func() {
		if gen != n.gen {
			return
		}
		n.pending = nil
		metrics.DebounceFired.Inc()
		n.list(query)
	})
}

func (n *Navigator) list(query string) {
	ranked := Top(Rank(query, n.locations), n.limit)
	n.state = domain.SearchSession{
		Query:       query,
		Candidates:  ranked,
		ActiveIndex: -1,
		Visible:     true,
		NoResults:   len(ranked) == 0,
	}
	n.sink.ShowList(n.State())
}

// OnArrowDown moves the selection down, wrapping to the first entry.
func (n *Navigator) OnArrowDown() {
	count := n.selectable()
	if count == 0 {
		return
	}
	n.state.ActiveIndex = (n.state.ActiveIndex + 1) % count
	n.sink.ShowList(n.State())
}

// OnArrowUp moves the selection up, wrapping to the last entry. With nothing
// selected it goes straight to the last entry.
func (n *Navigator) OnArrowUp() {
	count := n.selectable()
	if count == 0 {
		return
	}
	if n.state.ActiveIndex < 0 {
		n.state.ActiveIndex = count - 1
	} else {
		n.state.ActiveIndex = (n.state.ActiveIndex - 1 + count) % count
	}
	n.sink.ShowList(n.State())
}

// Select makes index the active entry. Out-of-range indexes are ignored.
func (n *Navigator) Select(index int) bool {
	if index < 0 || index >= n.selectable() {
		return false
	}
	n.state.ActiveIndex = index
	return true
}

// Commit resolves the location to frame: the active entry when there is
// one, otherwise the best match for raw. The list is hidden either way.
func (n *Navigator) Commit(raw string) (domain.Location, bool) {
	n.cancelPending()

	var (
		loc domain.Location
		ok  bool
	)
	if n.state.Visible && n.state.ActiveIndex >= 0 && n.state.ActiveIndex < len(n.state.Candidates) {
		loc, ok = n.state.Candidates[n.state.ActiveIndex].Location, true
	} else {
		loc, ok = Best(raw, n.locations)
	}

	n.Hide()
	return loc, ok
}

// CommitQuery resolves raw directly, ignoring any active entry.
func (n *Navigator) CommitQuery(raw string) (domain.Location, bool) {
	n.state.ActiveIndex = -1
	return n.Commit(raw)
}

// OnEscape hides the list and discards candidates.
func (n *Navigator) OnEscape() { n.dismiss() }

// OnBlurOutside hides the list and discards candidates.
func (n *Navigator) OnBlurOutside() { n.dismiss() }

func (n *Navigator) dismiss() {
	n.cancelPending()
	n.Hide()
}

// Hide moves to Hidden unconditionally. The typed query is kept.
func (n *Navigator) Hide() {
	n.state = domain.SearchSession{Query: n.state.Query, ActiveIndex: -1}
	n.sink.HideList()
}

func (n *Navigator) selectable() int {
	if !n.state.Visible || n.state.NoResults {
		return 0
	}
	return len(n.state.Candidates)
}

func (n *Navigator) cancelPending() {
	n.gen++
	if n.pending != nil {
		n.pending.Stop()
		n.pending = nil
	}
}
