package telemetry

import "strings"

type EditingBehavior struct {
	Revisions       int `json:"revisions"`
	Deletions       int `json:"deletions"`
	Insertions      int `json:"insertions"`
	CursorMovements int `json:"cursorMovements"`
}

type CognitiveLoad struct {
	ThinkingPauses  int             `json:"thinkingPauses"`
	AvgThinkingTime float64         `json:"avgThinkingTime"`
	LongestPause    float64         `json:"longestPause"`
	Editing         EditingBehavior `json:"editingBehavior"`
	ResponseLatency float64         `json:"responseLatency"`
	TaskSwitching   int             `json:"taskSwitching"`
}

// deriveCognitiveLoad reduces the keystroke log plus the recorded
// AI-response latencies and blur count to load indicators. Thinking pauses
// are measured over the whole keystroke log, not only content keys: a long
// gap before a modifier is still a gap.
func deriveCognitiveLoad(events []KeystrokeEvent, latencies []float64, blurCount int, cfg Config) CognitiveLoad {
	var gaps []float64
	for i := 1; i < len(events); i++ {
		gap := float64(events[i].Timestamp - events[i-1].Timestamp)
		if gap >= float64(cfg.ThinkingThresholdMS) {
			gaps = append(gaps, gap)
		}
	}

	var longest float64
	for _, g := range gaps {
		if g > longest {
			longest = g
		}
	}

	var revisions, insertions, cursor int
	for _, e := range events {
		if e.Direction != KeyDown {
			continue
		}
		switch {
		case e.Backspace:
			revisions++
		case strings.HasPrefix(e.Key, "Arrow"):
			cursor++
		case !e.Special:
			insertions++
		}
	}

	return CognitiveLoad{
		ThinkingPauses:  len(gaps),
		AvgThinkingTime: mean(gaps),
		LongestPause:    longest,
		Editing: EditingBehavior{
			Revisions:       revisions,
			Deletions:       revisions,
			Insertions:      insertions,
			CursorMovements: cursor,
		},
		ResponseLatency: mean(latencies),
		TaskSwitching:   blurCount,
	}
}
