package telemetry

// Stimulus is the current task item shown to the participant (for the
// remote-associates task, the three cue words and their solution).
type Stimulus struct {
	Words  []string `json:"words"`
	Answer string   `json:"answer"`
}

// SnapshotRequest carries the task context only the caller knows at the
// moment a snapshot is taken.
type SnapshotRequest struct {
	Round       *int
	Stimulus    *Stimulus
	Progress    float64 // 0-100
	Completed   bool
	LastMessage string
}

type MessageMetrics struct {
	ResponseTime                   float64 `json:"responseTime"`
	MessageLength                  int     `json:"messageLength"`
	EditCount                      int     `json:"editCount"`
	FinalMessageDifferentFromFirst bool    `json:"finalMessageDifferentFromFirst"`
}

type QualityMetrics struct {
	RelevanceScore  float64 `json:"relevanceScore"`
	CreativityScore float64 `json:"creativityScore"`
	CoherenceScore  float64 `json:"coherenceScore"`
}

type AttentionTracking struct {
	FocusEvents       []FocusEvent       `json:"focusEvents"`
	VisibilityChanges []VisibilityChange `json:"visibilityChanges"`
	ScrollBehavior    []ScrollEvent      `json:"scrollBehavior"`
}

// Snapshot is one immutable, fully derived behavioral record. Event logs
// are copied by value at assembly time, so a caller holding a snapshot
// never observes later session mutation.
type Snapshot struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"userId"`
	Timestamp     int64  `json:"timestamp"`

	Environment Environment `json:"environment"`

	Task       TaskKind  `json:"taskType"`
	Round      *int      `json:"currentRound"`
	Stimulus   *Stimulus `json:"currentWordSet"`
	Progress   float64   `json:"taskProgress"`
	Completion bool      `json:"taskCompletion"`

	TypingPattern TypingPattern    `json:"typingPattern"`
	PointerLog    []PointerEvent   `json:"mouseActivity"`
	KeystrokeLog  []KeystrokeEvent `json:"keystrokeSequence"`
	CognitiveLoad CognitiveLoad    `json:"cognitiveLoad"`

	Linguistic     LinguisticFeatures `json:"linguisticFeatures"`
	MessageMetrics MessageMetrics     `json:"messageMetrics"`

	InteractionSequence []InteractionStep `json:"interactionSequence"`
	SessionDurationMS   int64             `json:"sessionDuration"`
	TotalMessages       int               `json:"totalMessages"`
	AvgMessageInterval  float64           `json:"avgMessageInterval"`

	Quality   QualityMetrics    `json:"qualityMetrics"`
	Attention AttentionTracking `json:"attentionTracking"`

	// FeatureVector's element order is a consumer contract; changing it is
	// a breaking change. See featureVector.
	FeatureVector    []float64   `json:"featureVector"`
	TemporalFeatures [][]float64 `json:"temporalFeatures"`
}

// Snapshot assembles the full telemetry record at the current instant.
// It is safe before any event has been recorded and cheap enough to call
// per message; derivation is linear in the number of events and not cached.
func (c *Collector) Snapshot(req SnapshotRequest) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	typing := deriveTypingPattern(c.keystrokes, c.cfg)
	cognitive := deriveCognitiveLoad(c.keystrokes, c.responseLatencies, c.blurCount(), c.cfg)
	linguistic := deriveLinguisticFeatures(req.LastMessage)
	duration := now - c.startMS

	var lastLatency float64
	if n := len(c.responseLatencies); n > 0 {
		lastLatency = c.responseLatencies[n-1]
	}

	var creativityScore float64
	if linguistic.WordCount > 0 {
		creativityScore = float64(linguistic.Creativity.UniqueWords) / float64(linguistic.WordCount)
	}
	coherence := linguistic.AvgSentenceLength / 20
	if coherence > 1 {
		coherence = 1
	}

	return Snapshot{
		SessionID:     c.sessionID,
		ParticipantID: c.participantID,
		Timestamp:     now,
		Environment:   c.probe.Environment(),
		Task:          c.task,
		Round:         req.Round,
		Stimulus:      req.Stimulus,
		Progress:      clampProgress(req.Progress),
		Completion:    req.Completed,
		TypingPattern: typing,
		PointerLog:    append([]PointerEvent(nil), c.pointer...),
		KeystrokeLog:  append([]KeystrokeEvent(nil), c.keystrokes...),
		CognitiveLoad: cognitive,
		Linguistic:    linguistic,
		MessageMetrics: MessageMetrics{
			ResponseTime:                   lastLatency,
			MessageLength:                  len(req.LastMessage),
			EditCount:                      typing.BackspaceCount,
			FinalMessageDifferentFromFirst: c.hasFirst && req.LastMessage != c.firstMessage,
		},
		InteractionSequence: append([]InteractionStep(nil), c.steps...),
		SessionDurationMS:   duration,
		TotalMessages:       c.totalMessages,
		AvgMessageInterval:  mean(c.messageIntervals),
		Quality: QualityMetrics{
			RelevanceScore:  0.5,
			CreativityScore: creativityScore,
			CoherenceScore:  coherence,
		},
		Attention: AttentionTracking{
			FocusEvents:       append([]FocusEvent(nil), c.focus...),
			VisibilityChanges: append([]VisibilityChange(nil), c.visibility...),
			ScrollBehavior:    append([]ScrollEvent(nil), c.scroll...),
		},
		FeatureVector:    c.featureVector(typing, cognitive, linguistic, duration),
		TemporalFeatures: c.temporalFeatures(now),
	}
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func (c *Collector) blurCount() int {
	n := 0
	for _, e := range c.focus {
		if e.Kind == FocusLost {
			n++
		}
	}
	return n
}

// featureVector flattens the derived groups into a fixed-order numeric
// array for ML consumers. The order is part of the contract:
// typing (5), cognitive (5), linguistic (5), behavioral (4).
func (c *Collector) featureVector(typing TypingPattern, cognitive CognitiveLoad, linguistic LinguisticFeatures, durationMS int64) []float64 {
	return []float64{
		typing.AvgTypingSpeed,
		typing.PeakTypingSpeed,
		typing.CorrectionRatio,
		float64(typing.PauseCount),
		typing.Dynamics.Rhythm,

		float64(cognitive.ThinkingPauses),
		cognitive.AvgThinkingTime,
		cognitive.ResponseLatency,
		float64(cognitive.TaskSwitching),
		float64(cognitive.Editing.Revisions),

		float64(linguistic.WordCount),
		linguistic.VocabularyRichness,
		linguistic.ReadabilityScore / 100,
		linguistic.SemanticComplexity,
		float64(linguistic.Creativity.UniqueWords),

		float64(len(c.pointer)),
		float64(c.blurCount()),
		float64(durationMS) / 60_000,
		float64(c.totalMessages),
	}
}

// hostAnchor returns the earliest host timestamp across the windowed
// event logs, falling back to construction time when no events exist.
// Event timestamps come from the host clock, which can be skewed from
// the server's, so windows must anchor on host time or skewed events
// land outside every window.
func (c *Collector) hostAnchor() int64 {
	anchor := int64(0)
	if len(c.keystrokes) > 0 {
		anchor = c.keystrokes[0].Timestamp
	}
	if len(c.pointer) > 0 && (anchor == 0 || c.pointer[0].Timestamp < anchor) {
		anchor = c.pointer[0].Timestamp
	}
	if anchor == 0 {
		return c.startMS
	}
	return anchor
}

// temporalFeatures produces one row per fixed-size window covering the
// session duration, with windows anchored at the first host timestamp.
// Rows are [keystrokes, pointer events, pauses, offset from anchor];
// windows with no events still produce an all-zero row, so the matrix
// length always equals ceil(duration/window).
func (c *Collector) temporalFeatures(now int64) [][]float64 {
	window := c.cfg.TemporalWindowMS
	duration := now - c.startMS
	if duration <= 0 || window <= 0 {
		return [][]float64{}
	}
	rows := int((duration + window - 1) / window)
	anchor := c.hostAnchor()
	features := make([][]float64, 0, rows)

	for i := 0; i < rows; i++ {
		start := anchor + int64(i)*window
		end := start + window

		var keystrokes, pauses int
		for j, e := range c.keystrokes {
			if e.Timestamp < start || e.Timestamp >= end {
				continue
			}
			keystrokes++
			if j > 0 && e.Timestamp-c.keystrokes[j-1].Timestamp > c.cfg.PauseThresholdMS {
				pauses++
			}
		}

		var pointerEvents int
		for _, e := range c.pointer {
			if e.Timestamp >= start && e.Timestamp < end {
				pointerEvents++
			}
		}

		features = append(features, []float64{
			float64(keystrokes),
			float64(pointerEvents),
			float64(pauses),
			float64(start - anchor),
		})
	}
	return features
}
