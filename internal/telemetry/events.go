package telemetry

// Event timestamps are epoch milliseconds as reported by the host
// (the browser's Date.now()). Events arriving without a timestamp are
// stamped with the server clock, and windowed derivations anchor on the
// first host timestamp so host clock skew does not push events out of
// their windows.

type TaskKind string

const (
	TaskAlternateUses        TaskKind = "alternate-uses"
	TaskRemoteAssociates     TaskKind = "remote-associates"
	TaskDivergentAssociation TaskKind = "divergent-association"
)

type KeyDirection string

const (
	KeyDown KeyDirection = "keydown"
	KeyUp   KeyDirection = "keyup"
)

// KeystrokeEvent is one key-down or key-up observation. Duration is zero
// until the matching key-up arrives. The log is append-only and unbounded
// within a session; very long sessions grow it without eviction.
type KeystrokeEvent struct {
	Key       string       `json:"key"`
	Timestamp int64        `json:"timestamp"`
	Direction KeyDirection `json:"type"`
	Duration  int64        `json:"duration,omitempty"`
	Backspace bool         `json:"isBackspace"`
	Special   bool         `json:"isSpecialKey"`
}

type PointerKind string

const (
	PointerMove   PointerKind = "move"
	PointerClick  PointerKind = "click"
	PointerScroll PointerKind = "scroll"
)

// PointerEvent is one mouse/pointer observation. Velocity is only set for
// move events and is derived from successive positions.
type PointerEvent struct {
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Timestamp int64       `json:"timestamp"`
	Kind      PointerKind `json:"type"`
	Target    string      `json:"element,omitempty"`
	Velocity  float64     `json:"velocity,omitempty"`
}

type ClipboardDirection string

const (
	ClipboardCopy  ClipboardDirection = "copy"
	ClipboardPaste ClipboardDirection = "paste"
)

// CopySource classifies where a clipboard event originated, determined by
// the nearest ancestor marker on the event target.
type CopySource string

const (
	SourceChatPane  CopySource = "chat"
	SourceTaskInput CopySource = "task"
	SourceExternal  CopySource = "external"
)

// CopyPasteEvent records a clipboard observation. TextPreview holds at most
// the first 50 characters of the text; the full content is never retained.
type CopyPasteEvent struct {
	Timestamp   int64              `json:"timestamp"`
	Direction   ClipboardDirection `json:"type"`
	Source      CopySource         `json:"source"`
	TextLength  int                `json:"textLength"`
	TextPreview string             `json:"textPreview"`
}

type StepKind string

const (
	StepMessageStart    StepKind = "message_start"
	StepMessageComplete StepKind = "message_complete"
	StepAIResponse      StepKind = "ai_response"
	StepPause           StepKind = "pause"
	StepNavigation      StepKind = "navigation"
)

// InteractionStep marks one composition-lifecycle milestone. Sequence
// numbers increase monotonically per session and reconstruct temporal
// ordering across event kinds.
type InteractionStep struct {
	SessionID string         `json:"sessionId"`
	Sequence  int            `json:"sequenceNumber"`
	Kind      StepKind       `json:"interactionType"`
	Duration  int64          `json:"duration"`
	Context   map[string]any `json:"context"`
}

type FocusKind string

const (
	FocusGained FocusKind = "focus"
	FocusLost   FocusKind = "blur"
)

type FocusEvent struct {
	Timestamp int64     `json:"timestamp"`
	Kind      FocusKind `json:"type"`
}

type VisibilityChange struct {
	Timestamp int64 `json:"timestamp"`
	Visible   bool  `json:"visible"`
}

type ScrollEvent struct {
	Position  float64 `json:"position"`
	Timestamp int64   `json:"timestamp"`
}
