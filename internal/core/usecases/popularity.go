package usecases

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/ports"
)

// PopularityService tallies committed searches per location and the queries
// that found nothing. It is safe for concurrent use.
type PopularityService struct {
	mu     sync.RWMutex
	counts map[string]int
	misses map[string]int
	total  int
}

// NewPopularityService creates an empty tally.
func NewPopularityService() *PopularityService {
	return &PopularityService{
		counts: make(map[string]int),
		misses: make(map[string]int),
	}
}

// Record adds one event to the tally.
func (p *PopularityService) Record(ev domain.SearchEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total++
	if ev.Found && ev.Location != "" {
		p.counts[ev.Location]++
		return
	}
	if q := strings.ToLower(strings.TrimSpace(ev.Query)); q != "" {
		p.misses[q]++
	}
}

// PublishSearchEvent records ev directly, so the service can stand in for a
// broker when none is configured.
func (p *PopularityService) PublishSearchEvent(_ context.Context, ev domain.SearchEvent) error {
	p.Record(ev)
	return nil
}

// Consume feeds events from sub into the tally until ctx is done.
func (p *PopularityService) Consume(ctx context.Context, sub ports.EventSubscriber) error {
	return sub.SubscribeSearchEvents(ctx, func(_ context.Context, ev domain.SearchEvent) error {
		p.Record(ev)
		return nil
	})
}

// Total returns how many events have been recorded.
func (p *PopularityService) Total() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.total
}

// Top returns the n most committed locations, ties broken by name.
func (p *PopularityService) Top(n int) []domain.Popularity {
	p.mu.RLock()
	out := make([]domain.Popularity, 0, len(p.counts))
	for name, c := range p.counts {
		out = append(out, domain.Popularity{Location: name, Count: c})
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Location < out[j].Location
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopMisses returns the n most frequent queries that matched nothing.
func (p *PopularityService) TopMisses(n int) []domain.MissedQuery {
	p.mu.RLock()
	out := make([]domain.MissedQuery, 0, len(p.misses))
	for q, c := range p.misses {
		out = append(out, domain.MissedQuery{Query: q, Count: c})
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
