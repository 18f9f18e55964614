package telemetry

import (
	"sync"
	"time"
)

// Collector owns the event logs of one task session. It performs no I/O and
// never blocks; every derivation it exposes is a total function over the
// logs. The browser host is single threaded, but event batches reach a
// server host on request goroutines, so mutation is guarded by a mutex.
type Collector struct {
	mu sync.Mutex

	cfg   Config
	probe EnvironmentProbe
	clock func() int64

	sessionID     string
	participantID string
	task          TaskKind
	startMS       int64

	keystrokes []KeystrokeEvent
	pointer    []PointerEvent
	copyPaste  []CopyPasteEvent
	steps      []InteractionStep
	focus      []FocusEvent
	visibility []VisibilityChange
	scroll     []ScrollEvent

	currentMessage string
	firstMessage   string
	hasFirst       bool
	messageStartMS int64
	lastPointerMS  int64
	sequence       int
	totalMessages  int

	responseLatencies []float64
	messageIntervals  []float64
	lastAIResponseMS  int64

	matcher *Matcher
	help    *HelpTracker
}

// Option configures a Collector at construction.
type Option func(*Collector)

// WithConfig overrides the default derivation thresholds.
func WithConfig(cfg Config) Option {
	return func(c *Collector) { c.cfg = cfg.withDefaults() }
}

// WithProbe injects the environment probe used at snapshot time.
func WithProbe(p EnvironmentProbe) Option {
	return func(c *Collector) { c.probe = p }
}

// WithClock injects the epoch-millisecond clock. Tests use this to drive
// session time deterministically.
func WithClock(clock func() int64) Option {
	return func(c *Collector) { c.clock = clock }
}

// NewCollector creates a collector for one session. participantID falls
// back to the session ID when empty.
func NewCollector(sessionID, participantID string, task TaskKind, opts ...Option) *Collector {
	c := &Collector{
		cfg:           DefaultConfig(),
		probe:         StaticProbe{Env: unknownEnvironment()},
		clock:         func() int64 { return time.Now().UnixMilli() },
		sessionID:     sessionID,
		participantID: participantID,
		task:          task,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.participantID == "" {
		c.participantID = sessionID
	}
	c.startMS = c.clock()
	c.matcher = newMatcher(c.cfg)
	c.help = newHelpTracker(c.cfg, c.clock)
	return c
}

func (c *Collector) SessionID() string     { return c.sessionID }
func (c *Collector) ParticipantID() string { return c.participantID }
func (c *Collector) Task() TaskKind        { return c.task }

func (c *Collector) stamp(ts int64) int64 {
	if ts <= 0 {
		return c.clock()
	}
	return ts
}

// RecordKeyDown appends one key-down observation.
func (c *Collector) RecordKeyDown(key string, ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	isBackspace := key == "Backspace"
	c.keystrokes = append(c.keystrokes, KeystrokeEvent{
		Key:       key,
		Timestamp: c.stamp(ts),
		Direction: KeyDown,
		Backspace: isBackspace,
		Special:   len([]rune(key)) > 1 && !isBackspace,
	})
}

// RecordKeyUp appends a key-up observation and fills the held duration of
// the most recent unmatched key-down for the same key.
func (c *Collector) RecordKeyUp(key string, ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts = c.stamp(ts)
	for i := len(c.keystrokes) - 1; i >= 0; i-- {
		e := &c.keystrokes[i]
		if e.Key == key && e.Direction == KeyDown && e.Duration == 0 {
			if d := ts - e.Timestamp; d > 0 {
				e.Duration = d
			}
			break
		}
	}
	isBackspace := key == "Backspace"
	c.keystrokes = append(c.keystrokes, KeystrokeEvent{
		Key:       key,
		Timestamp: ts,
		Direction: KeyUp,
		Backspace: isBackspace,
		Special:   len([]rune(key)) > 1 && !isBackspace,
	})
}

// RecordPointerMove appends a move observation with instantaneous velocity
// derived from the previous position, then evicts the oldest entries past
// the configured cap.
func (c *Collector) RecordPointerMove(x, y float64, ts int64, target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts = c.stamp(ts)
	var velocity float64
	if c.lastPointerMS > 0 && ts > c.lastPointerMS {
		if n := len(c.pointer); n > 0 {
			dx := x - c.pointer[n-1].X
			dy := y - c.pointer[n-1].Y
			velocity = sqrtHypot(dx, dy) / float64(ts-c.lastPointerMS)
		}
	}
	c.pointer = append(c.pointer, PointerEvent{
		X: x, Y: y, Timestamp: ts, Kind: PointerMove, Target: target, Velocity: velocity,
	})
	c.lastPointerMS = ts
	if over := len(c.pointer) - c.cfg.PointerMoveCap; over > 0 {
		c.pointer = append(c.pointer[:0], c.pointer[over:]...)
	}
}

// RecordClick appends a click observation.
func (c *Collector) RecordClick(x, y float64, ts int64, target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pointer = append(c.pointer, PointerEvent{
		X: x, Y: y, Timestamp: c.stamp(ts), Kind: PointerClick, Target: target,
	})
}

// RecordWheel appends a scroll-wheel observation.
func (c *Collector) RecordWheel(x, y float64, ts int64, target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pointer = append(c.pointer, PointerEvent{
		X: x, Y: y, Timestamp: c.stamp(ts), Kind: PointerScroll, Target: target,
	})
}

func (c *Collector) RecordFocus(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus = append(c.focus, FocusEvent{Timestamp: c.stamp(ts), Kind: FocusGained})
}

func (c *Collector) RecordBlur(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus = append(c.focus, FocusEvent{Timestamp: c.stamp(ts), Kind: FocusLost})
}

func (c *Collector) RecordVisibility(visible bool, ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visibility = append(c.visibility, VisibilityChange{Timestamp: c.stamp(ts), Visible: visible})
}

func (c *Collector) RecordPageScroll(position float64, ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scroll = append(c.scroll, ScrollEvent{Position: position, Timestamp: c.stamp(ts)})
}

// RecordCopyPaste appends a clipboard observation. Only a bounded preview
// of the text is retained. A copy out of the chat pane also counts toward
// the AI-responses-copied aggregate.
func (c *Collector) RecordCopyPaste(dir ClipboardDirection, source CopySource, text string, ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch source {
	case SourceChatPane, SourceTaskInput, SourceExternal:
	default:
		source = SourceExternal
	}
	preview := text
	if runes := []rune(preview); len(runes) > c.cfg.PreviewLength {
		preview = string(runes[:c.cfg.PreviewLength])
	}
	c.copyPaste = append(c.copyPaste, CopyPasteEvent{
		Timestamp:   c.stamp(ts),
		Direction:   dir,
		Source:      source,
		TextLength:  len(text),
		TextPreview: preview,
	})
	if dir == ClipboardCopy && source == SourceChatPane {
		c.matcher.markResponseCopied()
	}
}

// StartMessage marks the beginning of a message composition. The gap since
// the last AI response, when one exists, is recorded as a response latency.
func (c *Collector) StartMessage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock()
	if c.lastAIResponseMS > 0 {
		c.responseLatencies = append(c.responseLatencies, float64(now-c.lastAIResponseMS))
	}
	c.messageStartMS = now
	c.currentMessage = ""
	c.addStep(StepMessageStart, 0, map[string]any{})
}

// UpdateMessage replaces the in-flight message text.
func (c *Collector) UpdateMessage(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentMessage = content
}

// CompleteMessage closes the current composition and records its duration
// and size in the interaction sequence.
func (c *Collector) CompleteMessage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock()
	var duration int64
	if c.messageStartMS > 0 {
		duration = now - c.messageStartMS
	}
	c.addStep(StepMessageComplete, duration, map[string]any{
		"messageLength": len(c.currentMessage),
		"wordCount":     countWords(c.currentMessage),
	})
	if !c.hasFirst {
		c.firstMessage = c.currentMessage
		c.hasFirst = true
	}
	c.totalMessages++
	if c.totalMessages > 1 && c.messageStartMS > 0 {
		c.messageIntervals = append(c.messageIntervals, float64(c.messageStartMS-c.startMS))
	}
}

// RecordAIResponse marks the arrival of an assistant reply. responseTimeMS
// is the provider round-trip as measured by the caller.
func (c *Collector) RecordAIResponse(responseTimeMS int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastAIResponseMS = c.clock()
	c.addStep(StepAIResponse, responseTimeMS, map[string]any{})
}

// RecordPause and RecordNavigation append explicit lifecycle milestones
// reported by the host.
func (c *Collector) RecordPause(durationMS int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addStep(StepPause, durationMS, map[string]any{})
}

func (c *Collector) RecordNavigation(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addStep(StepNavigation, 0, map[string]any{"target": target})
}

// addStep appends to the interaction sequence. Callers hold c.mu.
func (c *Collector) addStep(kind StepKind, duration int64, context map[string]any) {
	c.steps = append(c.steps, InteractionStep{
		SessionID: c.sessionID,
		Sequence:  c.sequence,
		Kind:      kind,
		Duration:  duration,
		Context:   context,
	})
	c.sequence++
}

// RecordAssistantText feeds a successful assistant reply into the AI-usage
// matcher's observed-response list.
func (c *Collector) RecordAssistantText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matcher.RecordAssistantText(text)
}

// AttributeAnswer estimates how much of a submitted answer overlaps
// previously observed assistant text and folds the result into the running
// aggregate.
func (c *Collector) AttributeAnswer(answer string) Attribution {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matcher.Attribute(answer)
}

// AIUsage returns a copy of the running attribution aggregate.
func (c *Collector) AIUsage() AIUsageTracking {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matcher.Tracking()
}

// Help-seeking delegation. The tracker's clock is shared with the
// collector so latencies line up.

func (c *Collector) RecordQuery() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.help.RecordQuery()
}

func (c *Collector) RecordSubmission(wasAIAssisted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.help.RecordSubmission(wasAIAssisted)
}

func (c *Collector) RecordRoundComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.help.RecordRoundComplete()
}

func (c *Collector) ResetHelpSeeking() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.help.Reset()
}

func (c *Collector) HelpSeeking() HelpSeekingMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.help.Metrics()
}

// EngagementData bundles the aggregates persisted alongside a completion.
type EngagementData struct {
	CopyPasteCount         int                `json:"copyPasteCount"`
	ChatbotEngagementCount int                `json:"chatbotEngagementCount"`
	ChatbotUsagePercentage float64            `json:"chatbotUsagePercentage"`
	CopyPasteEvents        []CopyPasteEvent   `json:"copyPasteEvents"`
	AIUsage                AIUsageTracking    `json:"aiUsageTracking"`
	HelpSeeking            HelpSeekingMetrics `json:"helpSeekingMetrics"`
}

// Engagement assembles the engagement aggregate for the completion payload.
func (c *Collector) Engagement() EngagementData {
	c.mu.Lock()
	defer c.mu.Unlock()
	usage := c.matcher.Tracking()
	return EngagementData{
		CopyPasteCount:         len(c.copyPaste),
		ChatbotEngagementCount: c.help.totalQueries,
		ChatbotUsagePercentage: usage.AIUsagePercentage,
		CopyPasteEvents:        append([]CopyPasteEvent(nil), c.copyPaste...),
		AIUsage:                usage,
		HelpSeeking:            c.help.Metrics(),
	}
}
