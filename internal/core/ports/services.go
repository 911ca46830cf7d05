package ports

import (
	"context"
	"time"

	"github.com/samirrijal/campusmap/internal/core/domain"
)

// RenderSink receives presentation instructions from the orchestrator.
// Visual rendering (styling, easing, DOM/canvas work) happens behind it.
type RenderSink interface {
	ShowList(session domain.SearchSession)
	HideList()
	SetTransform(t domain.ViewportTransform)
	PlaceMarker(pos domain.Point, label string)
	ClearMarker()
	ClearHighlight(label string)
	NotifyNotFound(query string)
	NotifySpeechUnavailable(err error)
}

// SpeechSource controls an external speech-to-text capture. Transcripts and
// failures come back through Orchestrator.OnTranscript / OnSpeechError.
type SpeechSource interface {
	Start() error
	Stop()
}

// GeometryProvider reports the current container size in pixels.
// ok is false when no size is available.
type GeometryProvider interface {
	ContainerSize() (size domain.Size, ok bool)
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d on the caller's logical thread.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// EventPublisher publishes search outcomes to a message broker.
type EventPublisher interface {
	PublishSearchEvent(ctx context.Context, event domain.SearchEvent) error
}

// EventSubscriber subscribes to search outcomes from a message broker.
type EventSubscriber interface {
	SubscribeSearchEvents(ctx context.Context, handler func(ctx context.Context, event domain.SearchEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
