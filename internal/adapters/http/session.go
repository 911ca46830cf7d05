package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/ports"
	"github.com/samirrijal/campusmap/internal/core/usecases"
)

// ClientMessage is an input event sent by a browser session.
//
//	{"type":"input","query":"lib"}
//	{"type":"key","key":"ArrowDown"}
//	{"type":"submit","query":"library"}
//	{"type":"select","index":0}
//	{"type":"container","width":800,"height":600}
//	{"type":"transcript","text":"admin office"}
//	{"type":"speech_error","reason":"denied"}
//	{"type":"hello","speech":false}
//
// speech_error carries reason unavailable, denied or other. Raw Web Speech
// error codes are also accepted in reason or error.
type ClientMessage struct {
	Type   string  `json:"type"`
	Query  string  `json:"query,omitempty"`
	Text   string  `json:"text,omitempty"`
	Key    string  `json:"key,omitempty"`
	Index  int     `json:"index,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Speech *bool   `json:"speech,omitempty"` // hello: whether the client can capture speech
	Reason string  `json:"reason,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// ServerMessage is a presentation instruction sent to the browser.
type ServerMessage struct {
	Type        string                    `json:"type"`
	Query       string                    `json:"query,omitempty"`
	Suggestions []Suggestion              `json:"suggestions,omitempty"`
	ActiveIndex *int                      `json:"active_index,omitempty"`
	NoResults   bool                      `json:"no_results,omitempty"`
	Transform   *domain.ViewportTransform `json:"transform,omitempty"`
	Position    *domain.Point             `json:"position,omitempty"`
	Label       string                    `json:"label,omitempty"`
	Message     string                    `json:"message,omitempty"`
}

// Suggestion is one rendered list entry.
type Suggestion struct {
	Name                string           `json:"name"`
	Category            string           `json:"category,omitempty"`
	Icon                string           `json:"icon,omitempty"`
	Description         string           `json:"description,omitempty"`
	Segments            []domain.Segment `json:"segments"`
	DescriptionSegments []domain.Segment `json:"description_segments,omitempty"`
}

// Server message types.
const (
	msgShowList          = "show_list"
	msgHideList          = "hide_list"
	msgSetTransform      = "set_transform"
	msgPlaceMarker       = "place_marker"
	msgClearMarker       = "clear_marker"
	msgClearHighlight    = "clear_highlight"
	msgNotFound          = "not_found"
	msgSpeechUnavailable = "speech_unavailable"
	msgSpeechStart       = "speech_start"
	msgSpeechStop        = "speech_stop"
	msgError             = "error"
)

// Session adapts one browser connection to an Orchestrator. It is the
// orchestrator's RenderSink, GeometryProvider and SpeechSource. Handle and
// every scheduler callback must run on the same goroutine.
type Session struct {
	orch *usecases.Orchestrator
	send func(ServerMessage) error
	log  *slog.Logger

	container    domain.Size
	hasContainer bool
	speechOK     bool
}

// NewSession creates a session. send delivers one message to the client.
func NewSession(deps *Dependencies, sched ports.Scheduler, send func(ServerMessage) error) *Session {
	s := &Session{
		send:     send,
		log:      deps.logger(),
		speechOK: true,
	}
	s.orch = usecases.NewOrchestrator(usecases.OrchestratorDeps{
		Registry:  deps.Registry,
		Sink:      s,
		Geometry:  s,
		Speech:    s,
		Scheduler: sched,
		Publisher: deps.Publisher,
		Logger:    s.log,
	}, deps.Session)
	return s
}

// Orchestrator exposes the underlying state machine.
func (s *Session) Orchestrator() *usecases.Orchestrator { return s.orch }

// Handle decodes and dispatches one client message.
func (s *Session) Handle(ctx context.Context, raw []byte) {
	var m ClientMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		s.emit(ServerMessage{Type: msgError, Message: "invalid JSON"})
		return
	}
	s.Dispatch(ctx, m)
}

// Dispatch routes a decoded message into the orchestrator.
func (s *Session) Dispatch(ctx context.Context, m ClientMessage) {
	switch m.Type {
	case "hello":
		if m.Speech != nil {
			s.speechOK = *m.Speech
		}
	case "input":
		s.orch.OnInput(m.Query)
	case "key":
		s.handleKey(ctx, m)
	case "submit":
		s.commitResult(s.orch.Submit(ctx, m.Query))
	case "select":
		s.commitResult(s.orch.Select(ctx, m.Index))
	case "blur":
		s.orch.OnBlurOutside()
	case "container":
		s.container = domain.Size{Width: m.Width, Height: m.Height}
		s.hasContainer = s.container.Usable()
	case "reset":
		s.orch.Reset()
	case "speech_start":
		s.speechResult(s.orch.ToggleSpeech())
	case "transcript":
		s.commitResult(s.orch.OnTranscript(ctx, m.Text))
	case "speech_error":
		reason := m.Reason
		if reason == "" {
			reason = m.Error
		}
		s.orch.OnSpeechError(speechError(reason))
	default:
		s.emit(ServerMessage{Type: msgError, Message: "unknown message type: " + m.Type})
	}
}

func (s *Session) handleKey(ctx context.Context, m ClientMessage) {
	switch m.Key {
	case "ArrowDown":
		s.orch.OnArrowDown()
	case "ArrowUp":
		s.orch.OnArrowUp()
	case "Escape":
		s.orch.OnEscape()
	case "Enter":
		s.commitResult(s.orch.Submit(ctx, m.Query))
	}
}

// commitResult logs unexpected commit failures. Not-found has already been
// rendered through the sink and an empty query is silently ignored.
func (s *Session) commitResult(_ domain.Location, err error) {
	if err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrEmptyQuery) {
		return
	}
	s.log.Warn("commit failed", "error", err)
}

// speechResult logs a capture request that failed for a reason other than
// the capability ones, which the sink has already rendered.
func (s *Session) speechResult(err error) {
	if err == nil || errors.Is(err, domain.ErrSpeechUnavailable) || errors.Is(err, domain.ErrSpeechDenied) {
		return
	}
	s.log.Warn("speech start failed", "error", err)
}

// speechError maps a speech_error reason, or a raw Web Speech API error
// code, onto domain errors.
func speechError(reason string) error {
	switch reason {
	case "denied", "not-allowed", "service-not-allowed":
		return domain.ErrSpeechDenied
	case "unavailable", "not-supported", "audio-capture":
		return domain.ErrSpeechUnavailable
	default:
		return fmt.Errorf("speech: %s", reason)
	}
}

func (s *Session) emit(m ServerMessage) {
	if err := s.send(m); err != nil {
		s.log.Debug("ws send failed", "type", m.Type, "error", err)
	}
}

// ShowList implements ports.RenderSink.
func (s *Session) ShowList(session domain.SearchSession) {
	items := make([]Suggestion, 0, len(session.Candidates))
	for _, c := range session.Candidates {
		item := Suggestion{
			Name:     c.Location.Name,
			Category: c.Location.Category,
			Icon:     c.Location.Icon,
			Segments: usecases.Highlight(c.Location.Name, session.Query),
		}
		if d := c.Location.Description; d != "" {
			item.Description = d
			item.DescriptionSegments = usecases.Highlight(d, session.Query)
		}
		items = append(items, item)
	}
	active := session.ActiveIndex
	s.emit(ServerMessage{
		Type:        msgShowList,
		Query:       session.Query,
		Suggestions: items,
		ActiveIndex: &active,
		NoResults:   session.NoResults,
	})
}

// HideList implements ports.RenderSink.
func (s *Session) HideList() { s.emit(ServerMessage{Type: msgHideList}) }

// SetTransform implements ports.RenderSink.
func (s *Session) SetTransform(t domain.ViewportTransform) {
	s.emit(ServerMessage{Type: msgSetTransform, Transform: &t})
}

// PlaceMarker implements ports.RenderSink.
func (s *Session) PlaceMarker(pos domain.Point, label string) {
	s.emit(ServerMessage{Type: msgPlaceMarker, Position: &pos, Label: label})
}

// ClearMarker implements ports.RenderSink.
func (s *Session) ClearMarker() { s.emit(ServerMessage{Type: msgClearMarker}) }

// ClearHighlight implements ports.RenderSink.
func (s *Session) ClearHighlight(label string) {
	s.emit(ServerMessage{Type: msgClearHighlight, Label: label})
}

// NotifyNotFound implements ports.RenderSink.
func (s *Session) NotifyNotFound(query string) {
	s.emit(ServerMessage{Type: msgNotFound, Query: query, Message: "Location not found"})
}

// NotifySpeechUnavailable implements ports.RenderSink.
func (s *Session) NotifySpeechUnavailable(err error) {
	s.emit(ServerMessage{Type: msgSpeechUnavailable, Message: err.Error()})
}

// ContainerSize implements ports.GeometryProvider.
func (s *Session) ContainerSize() (domain.Size, bool) {
	return s.container, s.hasContainer
}

// Start implements ports.SpeechSource by asking the client to capture.
func (s *Session) Start() error {
	if !s.speechOK {
		return domain.ErrSpeechUnavailable
	}
	if err := s.send(ServerMessage{Type: msgSpeechStart}); err != nil {
		return fmt.Errorf("request capture: %w", err)
	}
	return nil
}

// Stop implements ports.SpeechSource.
func (s *Session) Stop() { s.emit(ServerMessage{Type: msgSpeechStop}) }
