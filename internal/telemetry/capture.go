package telemetry

import (
	"errors"
	"sync"
)

// RawEvent is one loosely-typed host observation, usually decoded from a
// browser batch payload. Missing fields decode to zero values and are
// tolerated; the capture layer never rejects an event.
type RawEvent struct {
	Kind         string  `json:"kind"`
	Key          string  `json:"key,omitempty"`
	X            float64 `json:"x,omitempty"`
	Y            float64 `json:"y,omitempty"`
	Timestamp    int64   `json:"timestamp,omitempty"`
	Target       string  `json:"target,omitempty"`
	Source       string  `json:"source,omitempty"`
	Text         string  `json:"text,omitempty"`
	Visible      bool    `json:"visible,omitempty"`
	Position     float64 `json:"position,omitempty"`
	Duration     int64   `json:"duration,omitempty"`
	Content      string  `json:"content,omitempty"`
	ResponseTime int64   `json:"responseTime,omitempty"`
}

// Source is anything that can push raw events to a handler. Subscribe
// returns the detach func that Stop calls on teardown.
type Source interface {
	Subscribe(handler func(RawEvent)) (detach func(), err error)
}

// ErrCaptureActive is returned when Start is called on a capture that has
// not been torn down.
var ErrCaptureActive = errors.New("telemetry: capture already started")

// Capture translates raw host events into the collector's typed logs. It
// owns zero business logic. Stop is idempotent and must run on every exit
// path of the owning session; a forgotten Stop leaks subscriptions across
// session restarts.
type Capture struct {
	mu      sync.Mutex
	col     *Collector
	detach  []func()
	started bool
}

func NewCapture(col *Collector) *Capture {
	return &Capture{col: col}
}

// Start subscribes the capture to the given sources. Restarting requires a
// prior Stop.
func (c *Capture) Start(sources ...Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrCaptureActive
	}
	for _, src := range sources {
		detach, err := src.Subscribe(c.Ingest)
		if err != nil {
			for _, d := range c.detach {
				d()
			}
			c.detach = nil
			return err
		}
		c.detach = append(c.detach, detach)
	}
	c.started = true
	return nil
}

// Stop detaches every subscription. Safe to call repeatedly and on a
// capture that never started.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.detach {
		d()
	}
	c.detach = nil
	c.started = false
}

// Ingest routes one raw event to the collector. Unknown kinds are dropped;
// malformed events degrade to zero values rather than failing, because
// losing one telemetry field must not abort the session.
func (c *Capture) Ingest(ev RawEvent) {
	switch ev.Kind {
	case "keydown":
		c.col.RecordKeyDown(ev.Key, ev.Timestamp)
	case "keyup":
		c.col.RecordKeyUp(ev.Key, ev.Timestamp)
	case "mousemove", "move":
		c.col.RecordPointerMove(ev.X, ev.Y, ev.Timestamp, ev.Target)
	case "click":
		c.col.RecordClick(ev.X, ev.Y, ev.Timestamp, ev.Target)
	case "wheel", "scroll":
		c.col.RecordWheel(ev.X, ev.Y, ev.Timestamp, ev.Target)
	case "focus":
		c.col.RecordFocus(ev.Timestamp)
	case "blur":
		c.col.RecordBlur(ev.Timestamp)
	case "visibilitychange":
		c.col.RecordVisibility(ev.Visible, ev.Timestamp)
	case "pagescroll":
		c.col.RecordPageScroll(ev.Position, ev.Timestamp)
	case "copy":
		c.col.RecordCopyPaste(ClipboardCopy, copySource(ev.Source), ev.Text, ev.Timestamp)
	case "paste":
		c.col.RecordCopyPaste(ClipboardPaste, copySource(ev.Source), ev.Text, ev.Timestamp)
	case "message_start":
		c.col.StartMessage()
	case "message_update":
		c.col.UpdateMessage(ev.Content)
	case "message_complete":
		c.col.CompleteMessage()
	case "ai_response":
		c.col.RecordAIResponse(ev.ResponseTime)
	case "pause":
		c.col.RecordPause(ev.Duration)
	case "navigation":
		c.col.RecordNavigation(ev.Target)
	}
}

// copySource maps the nearest-ancestor marker reported by the client onto
// the source classification, defaulting to external-page.
func copySource(s string) CopySource {
	switch s {
	case string(SourceChatPane), "chat-pane":
		return SourceChatPane
	case string(SourceTaskInput), "task-input":
		return SourceTaskInput
	default:
		return SourceExternal
	}
}
