package telemetry

import "strings"

// MatchedSegment is one phrase of a submitted answer found verbatim in an
// observed assistant response. Similarity is binary for exact n-gram
// containment.
type MatchedSegment struct {
	Phrase     string  `json:"phrase"`
	Similarity float64 `json:"similarity"`
}

// AIUsageTracking is the running attribution aggregate persisted with the
// completion record.
type AIUsageTracking struct {
	AIResponsesCopied     int              `json:"aiResponsesCopied"`
	AITextUsedInAnswers   int              `json:"aiTextUsedInAnswers"`
	TotalAITextLength     int              `json:"totalAiTextLength"`
	TotalUserAnswerLength int              `json:"totalUserAnswerLength"`
	AIUsagePercentage     float64          `json:"aiUsagePercentage"`
	MatchedSegments       []MatchedSegment `json:"matchedSegments"`
}

// Attribution is the per-answer result of a matcher run.
type Attribution struct {
	Percentage   float64
	MatchedChars int
	Segments     []MatchedSegment
}

// Matcher estimates lexical overlap between submitted answers and
// previously observed assistant text. It is a conservative heuristic:
// paraphrase is missed, but beyond coincidental short-phrase overlap it
// does not over-attribute.
type Matcher struct {
	cfg       Config
	responses []string
	lowered   []string
	tracking  AIUsageTracking
}

func newMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg.withDefaults()}
}

// RecordAssistantText appends an observed assistant reply. The stored list
// is never mutated by attribution runs.
func (m *Matcher) RecordAssistantText(text string) {
	if text == "" {
		return
	}
	m.responses = append(m.responses, text)
	m.lowered = append(m.lowered, strings.ToLower(text))
	m.tracking.TotalAITextLength += len(text)
}

func (m *Matcher) markResponseCopied() {
	m.tracking.AIResponsesCopied++
}

// Attribute generates overlapping lowercase word n-grams from the answer
// and checks each phrase above the minimum length for substring containment
// in the stored assistant texts. A phrase is counted once even when several
// stored texts contain it, so the matched-character total cannot exceed a
// multiple of the answer itself.
func (m *Matcher) Attribute(answer string) Attribution {
	if answer == "" {
		return Attribution{}
	}

	m.tracking.TotalUserAnswerLength += len(answer)

	var result Attribution
	if len(m.lowered) > 0 {
		words := strings.Fields(strings.ToLower(answer))
		for _, size := range m.cfg.PhraseSizes {
			for i := 0; i+size <= len(words); i++ {
				phrase := strings.Join(words[i:i+size], " ")
				if len(phrase) <= m.cfg.MinPhraseLength {
					continue
				}
				for _, resp := range m.lowered {
					if strings.Contains(resp, phrase) {
						result.MatchedChars += len(phrase)
						result.Segments = append(result.Segments, MatchedSegment{Phrase: phrase, Similarity: 1.0})
						break
					}
				}
			}
		}
		result.Percentage = usagePercentage(result.MatchedChars, len(answer))
	}

	m.tracking.AITextUsedInAnswers += result.MatchedChars
	m.tracking.MatchedSegments = append(m.tracking.MatchedSegments, result.Segments...)
	m.tracking.AIUsagePercentage = usagePercentage(m.tracking.AITextUsedInAnswers, m.tracking.TotalUserAnswerLength)
	return result
}

// Tracking returns a copy of the running aggregate.
func (m *Matcher) Tracking() AIUsageTracking {
	out := m.tracking
	out.MatchedSegments = append([]MatchedSegment(nil), m.tracking.MatchedSegments...)
	return out
}

func usagePercentage(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := float64(matched) / float64(total) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
