package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/ports"
	"github.com/samirrijal/campusmap/internal/pkg/metrics"
)

// Commit stage delays.
const (
	DefaultSettleDelay  = 1000 * time.Millisecond // transform transition before the pin drops
	DefaultHighlightFor = 3000 * time.Millisecond // how long the framed shape stays highlighted
)

// Search sources reported in domain.SearchEvent.
const (
	SourceText       = "text"
	SourceSuggestion = "suggestion"
	SourceVoice      = "voice"
)

// OrchestratorConfig holds timing and geometry settings.
type OrchestratorConfig struct {
	Debounce        time.Duration
	SettleDelay     time.Duration
	HighlightFor    time.Duration
	SuggestionLimit int
	Canvas          domain.Size
	Fit             FitParams
	MarkerOffset    float64
}

// DefaultOrchestratorConfig mirrors the defaults of the individual components.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Debounce:        DefaultDebounce,
		SettleDelay:     DefaultSettleDelay,
		HighlightFor:    DefaultHighlightFor,
		SuggestionLimit: DefaultSuggestionLimit,
		Canvas:          DefaultCanvas,
		Fit:             DefaultFitParams(),
		MarkerOffset:    DefaultMarkerOffset,
	}
}

// OrchestratorDeps are the collaborators injected at construction.
// Speech and Publisher may be nil.
type OrchestratorDeps struct {
	Registry  ports.LocationRegistry
	Sink      ports.RenderSink
	Geometry  ports.GeometryProvider
	Speech    ports.SpeechSource
	Scheduler ports.Scheduler
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

// Orchestrator sequences input events into ranking, navigation, framing and
// pin placement for one interactive session. It keeps at most one pending
// debounce, one pending pin and one placed marker. Not safe for concurrent
// use: every method and every scheduled callback must run on the same
// logical thread.
type Orchestrator struct {
	deps OrchestratorDeps
	cfg  OrchestratorConfig
	log  *slog.Logger

	nav      *Navigator
	viewport *ViewportController
	mapper   *CoordinateMapper

	marker     *domain.Marker
	pendingPin ports.Timer
	pendingHL  ports.Timer

	listening      bool
	speechDisabled bool
}

// NewOrchestrator wires the core components for one session.
func NewOrchestrator(deps OrchestratorDeps, cfg OrchestratorConfig) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	return &Orchestrator{
		deps:     deps,
		cfg:      cfg,
		log:      deps.Logger,
		nav:      NewNavigator(deps.Registry.All(), deps.Sink, deps.Scheduler, cfg.Debounce, cfg.SuggestionLimit),
		viewport: NewViewportController(cfg.Canvas, cfg.Fit),
		mapper:   NewCoordinateMapper(cfg.Canvas, cfg.MarkerOffset, deps.Logger),
	}
}

// Session returns the suggestion list state.
func (o *Orchestrator) Session() domain.SearchSession { return o.nav.State() }

// Transform returns the applied viewport transform.
func (o *Orchestrator) Transform() domain.ViewportTransform { return o.viewport.Current() }

// Marker returns the placed marker, if any.
func (o *Orchestrator) Marker() (domain.Marker, bool) {
	if o.marker == nil {
		return domain.Marker{}, false
	}
	return *o.marker, true
}

// Listening reports whether a speech capture is active.
func (o *Orchestrator) Listening() bool { return o.listening }

// OnInput handles a text-change event.
func (o *Orchestrator) OnInput(query string) { o.nav.OnQueryChanged(query) }

// OnArrowDown moves the suggestion selection down.
func (o *Orchestrator) OnArrowDown() { o.nav.OnArrowDown() }

// OnArrowUp moves the suggestion selection up.
func (o *Orchestrator) OnArrowUp() { o.nav.OnArrowUp() }

// OnEscape dismisses the suggestion list.
func (o *Orchestrator) OnEscape() { o.nav.OnEscape() }

// OnBlurOutside dismisses the suggestion list.
func (o *Orchestrator) OnBlurOutside() { o.nav.OnBlurOutside() }

// Submit commits the active suggestion, or the best match for raw.
func (o *Orchestrator) Submit(ctx context.Context, raw string) (domain.Location, error) {
	source := SourceText
	if s := o.nav.State(); s.Visible && s.ActiveIndex >= 0 {
		source = SourceSuggestion
	} else if strings.TrimSpace(raw) == "" {
		o.nav.Hide()
		return domain.Location{}, domain.ErrEmptyQuery
	}
	loc, ok := o.nav.Commit(raw)
	return o.commit(ctx, raw, source, loc, ok)
}

// Select commits the suggestion at index (a click on the list).
func (o *Orchestrator) Select(ctx context.Context, index int) (domain.Location, error) {
	if !o.nav.Select(index) {
		return domain.Location{}, fmt.Errorf("select %d: %w", index, domain.ErrNotFound)
	}
	raw := o.nav.State().Query
	loc, ok := o.nav.Commit(raw)
	return o.commit(ctx, raw, SourceSuggestion, loc, ok)
}

// OnTranscript commits a final speech transcript.
func (o *Orchestrator) OnTranscript(ctx context.Context, text string) (domain.Location, error) {
	o.listening = false
	if strings.TrimSpace(text) == "" {
		return domain.Location{}, domain.ErrEmptyQuery
	}
	loc, ok := o.nav.CommitQuery(text)
	return o.commit(ctx, text, SourceVoice, loc, ok)
}

// Reset returns the view to identity and removes any marker.
func (o *Orchestrator) Reset() domain.ViewportTransform {
	o.cancelPin()
	o.clearMarker()
	t := o.viewport.Reset()
	o.deps.Sink.SetTransform(t)
	return t
}

func (o *Orchestrator) commit(ctx context.Context, raw, source string, loc domain.Location, ok bool) (domain.Location, error) {
	metrics.SearchesTotal.WithLabelValues(source).Inc()

	if !ok {
		o.cancelPin()
		o.clearMarker()
		o.deps.Sink.NotifyNotFound(raw)
		metrics.SearchNotFound.Inc()
		o.publish(ctx, domain.SearchEvent{Query: raw, Found: false, Source: source})
		return domain.Location{}, fmt.Errorf("%q: %w", raw, domain.ErrNotFound)
	}

	o.frame(loc)
	o.publish(ctx, domain.SearchEvent{Query: raw, Location: loc.Name, Found: true, Source: source})
	return loc, nil
}

// frame runs the commit stages: clear the previous marker, apply the fit,
// then drop the pin once the transition has settled.
func (o *Orchestrator) frame(loc domain.Location) {
	o.cancelPin()
	o.clearMarker()

	size, ok := o.deps.Geometry.ContainerSize()
	if !ok {
		o.placeUnscaled(loc, domain.ErrContainerUnavailable)
		return
	}
	t, err := o.viewport.FitToBoundingBox(loc.BoundingBox, size)
	if err != nil {
		o.placeUnscaled(loc, err)
		return
	}
	o.deps.Sink.SetTransform(t)

	version := o.viewport.Version()
	o.pendingPin = o.deps.Scheduler.AfterFunc(o.cfg.SettleDelay, func() {
		if o.viewport.Version() != version {
			metrics.StalePinsDropped.Inc()
			o.log.Debug("dropping stale pin", "location", loc.Name, "version", version)
			return
		}
		o.pendingPin = nil
		o.placeMarker(loc, o.mapper.ToScreen(loc.BoundingBox, o.viewport.Current()), version)
	})
}

func (o *Orchestrator) placeUnscaled(loc domain.Location, cause error) {
	o.log.Warn("skipping transform", "location", loc.Name, "error", cause)
	o.placeMarker(loc, o.mapper.ToScreen(loc.BoundingBox, domain.IdentityTransform), o.viewport.Version())
}

func (o *Orchestrator) placeMarker(loc domain.Location, pos domain.Point, version uint64) {
	m := &domain.Marker{Location: loc.Name, Position: pos, Version: version}
	o.marker = m
	o.deps.Sink.PlaceMarker(pos, loc.Name)

	if o.cfg.HighlightFor <= 0 {
		return
	}
	o.pendingHL = o.deps.Scheduler.AfterFunc(o.cfg.HighlightFor, func() {
		if o.marker != m {
			return
		}
		o.pendingHL = nil
		o.deps.Sink.ClearHighlight(m.Location)
	})
}

func (o *Orchestrator) clearMarker() {
	if o.pendingHL != nil {
		o.pendingHL.Stop()
		o.pendingHL = nil
	}
	if o.marker == nil {
		return
	}
	o.marker = nil
	o.deps.Sink.ClearMarker()
}

func (o *Orchestrator) cancelPin() {
	if o.pendingPin != nil {
		o.pendingPin.Stop()
		o.pendingPin = nil
	}
}

func (o *Orchestrator) publish(ctx context.Context, ev domain.SearchEvent) {
	if o.deps.Publisher == nil {
		return
	}
	if err := o.deps.Publisher.PublishSearchEvent(ctx, ev); err != nil {
		metrics.EventsPublishErrors.Inc()
		o.log.Warn("publish search event", "error", err, "query", ev.Query)
	}
}

// StartSpeech begins a capture, stopping an active one first. Once speech
// has been reported unavailable or denied it returns ErrSpeechUnavailable
// without notifying again.
func (o *Orchestrator) StartSpeech() error {
	if o.speechDisabled {
		return domain.ErrSpeechUnavailable
	}
	if o.deps.Speech == nil {
		o.OnSpeechError(domain.ErrSpeechUnavailable)
		return domain.ErrSpeechUnavailable
	}
	if o.listening {
		o.StopSpeech()
	}
	if err := o.deps.Speech.Start(); err != nil {
		o.OnSpeechError(err)
		return err
	}
	o.listening = true
	return nil
}

// StopSpeech ends an active capture.
func (o *Orchestrator) StopSpeech() {
	if !o.listening {
		return
	}
	o.listening = false
	if o.deps.Speech != nil {
		o.deps.Speech.Stop()
	}
}

// ToggleSpeech starts a capture, or stops the active one.
func (o *Orchestrator) ToggleSpeech() error {
	if o.listening {
		o.StopSpeech()
		return nil
	}
	return o.StartSpeech()
}

// OnSpeechError handles a failed capture. Capability and permission
// failures are surfaced once and disable speech for the session.
func (o *Orchestrator) OnSpeechError(err error) {
	o.listening = false
	if errors.Is(err, domain.ErrSpeechUnavailable) || errors.Is(err, domain.ErrSpeechDenied) {
		if !o.speechDisabled {
			o.speechDisabled = true
			o.deps.Sink.NotifySpeechUnavailable(err)
		}
		return
	}
	o.log.Warn("speech capture failed", "error", err)
}
