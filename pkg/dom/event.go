package dom

import (
	"log/slog"
	"sync"
)

// DefaultEventTypes are the event types delegated by NewDocument.
var DefaultEventTypes = []string{
	"click", "dblclick", "input", "change", "submit",
	"keydown", "keyup", "focus", "blur",
	"mouseenter", "mouseleave",
}

// Event is a delegated event in flight.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	Detail        any

	stopped bool
}

// StopPropagation ends the walk towards the root after the current handler.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool {
	return e.stopped
}

// Document owns the root node and its delegated listeners.
type Document struct {
	root *Node

	mu        sync.RWMutex
	listeners map[string]bool

	logger *slog.Logger
}

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithDocumentLogger sets the logger used for dispatch diagnostics.
func WithDocumentLogger(l *slog.Logger) DocumentOption {
	return func(d *Document) {
		d.logger = l
	}
}

// NewDocument creates a document rooted at a <body> element with the
// default event types delegated.
func NewDocument(opts ...DocumentOption) *Document {
	d := &Document{
		root:      NewElement("body"),
		listeners: make(map[string]bool),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Delegate(DefaultEventTypes...)
	return d
}

// Root returns the document root.
func (d *Document) Root() *Node {
	return d.root
}

// Delegate installs a root listener for each event type. Installing a type
// twice is a no-op.
func (d *Document) Delegate(types ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range types {
		d.listeners[t] = true
	}
}

// Delegated reports whether a root listener exists for the event type.
func (d *Document) Delegated(eventType string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.listeners[eventType]
}

// Dispatch delivers an event at target. Handlers are looked up on target and
// each ancestor up to, but excluding, the root. It returns the number of
// handlers called.
func (d *Document) Dispatch(target *Node, eventType string, detail any) int {
	if target == nil || !d.Delegated(eventType) {
		return 0
	}
	ev := &Event{Type: eventType, Target: target, Detail: detail}
	called := 0
	for n := target; n != nil && n != d.root; n = n.parent {
		h := n.handlers[eventType]
		if h == nil {
			continue
		}
		ev.CurrentTarget = n
		if invoke(h, ev) {
			called++
		} else {
			d.logger.Debug("unsupported handler type", "event", eventType, "tag", n.Tag)
		}
		if ev.stopped {
			break
		}
	}
	return called
}

func invoke(h any, ev *Event) bool {
	switch fn := h.(type) {
	case func():
		fn()
	case func(*Event):
		fn(ev)
	case func(any):
		fn(ev.Detail)
	default:
		return false
	}
	return true
}
