package usecases_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/samirrijal/campusmap/internal/core/domain"
)

// --- Mock RenderSink ---

type fakeSink struct {
	calls      []string
	lists      []domain.SearchSession
	transforms []domain.ViewportTransform
	markers    []domain.Point
	labels     []string
	notFound   []string
	speechErrs []error
}

func (s *fakeSink) ShowList(session domain.SearchSession) {
	s.calls = append(s.calls, "show")
	s.lists = append(s.lists, session)
}
func (s *fakeSink) HideList() { s.calls = append(s.calls, "hide") }
func (s *fakeSink) SetTransform(t domain.ViewportTransform) {
	s.calls = append(s.calls, "transform")
	s.transforms = append(s.transforms, t)
}
func (s *fakeSink) PlaceMarker(pos domain.Point, label string) {
	s.calls = append(s.calls, "marker")
	s.markers = append(s.markers, pos)
	s.labels = append(s.labels, label)
}
func (s *fakeSink) ClearMarker() { s.calls = append(s.calls, "clear_marker") }
func (s *fakeSink) ClearHighlight(label string) {
	s.calls = append(s.calls, "clear_highlight:"+label)
}
func (s *fakeSink) NotifyNotFound(query string) {
	s.calls = append(s.calls, "not_found")
	s.notFound = append(s.notFound, query)
}
func (s *fakeSink) NotifySpeechUnavailable(err error) {
	s.calls = append(s.calls, "speech_unavailable")
	s.speechErrs = append(s.speechErrs, err)
}

func (s *fakeSink) count(call string) int {
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (s *fakeSink) lastList() domain.SearchSession {
	if len(s.lists) == 0 {
		return domain.SearchSession{}
	}
	return s.lists[len(s.lists)-1]
}

// --- Mock GeometryProvider ---

type fakeGeometry struct {
	size domain.Size
	ok   bool
}

func (g *fakeGeometry) ContainerSize() (domain.Size, bool) { return g.size, g.ok }

// --- Mock SpeechSource ---

type fakeSpeech struct {
	startFn func() error
	starts  int
	stops   int
}

func (s *fakeSpeech) Start() error {
	s.starts++
	if s.startFn != nil {
		return s.startFn()
	}
	return nil
}
func (s *fakeSpeech) Stop() { s.stops++ }

// --- Mock EventPublisher ---

type fakePublisher struct {
	publishFn func(ctx context.Context, ev domain.SearchEvent) error
	events    []domain.SearchEvent
}

func (p *fakePublisher) PublishSearchEvent(ctx context.Context, ev domain.SearchEvent) error {
	p.events = append(p.events, ev)
	if p.publishFn != nil {
		return p.publishFn(ctx, ev)
	}
	return nil
}

// --- Mock LocationRegistry ---

type fakeRegistry struct {
	locs []domain.Location
}

func (r *fakeRegistry) All() []domain.Location { return r.locs }
func (r *fakeRegistry) Fingerprint() string    { return "campus" }
func (r *fakeRegistry) FindByName(name string) (domain.Location, error) {
	for _, l := range r.locs {
		if strings.EqualFold(l.Name, name) {
			return l, nil
		}
	}
	return domain.Location{}, fmt.Errorf("%q: %w", name, domain.ErrNotFound)
}

// --- Mock CacheService ---

type mockCache struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	setFn    func(ctx context.Context, key string, value []byte, ttl int) error
	deleteFn func(ctx context.Context, key string) error
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, fmt.Errorf("miss")
}
func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}
func (m *mockCache) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}
