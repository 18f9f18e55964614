package telemetry

import "math"

// KeystrokeDynamics holds the raw timing vectors behind the typing pattern.
// Dwell times only cover keys whose up event was matched to a down event.
type KeystrokeDynamics struct {
	DwellTimes  []float64 `json:"dwellTimes"`
	FlightTimes []float64 `json:"flightTimes"`
	Rhythm      float64   `json:"rhythm"`
}

type TypingPattern struct {
	TotalKeypresses   int               `json:"totalKeypresses"`
	BackspaceCount    int               `json:"backspaceCount"`
	PauseCount        int               `json:"pauseCount"`
	AvgTypingSpeed    float64           `json:"avgTypingSpeed"`
	PeakTypingSpeed   float64           `json:"peakTypingSpeed"`
	Dynamics          KeystrokeDynamics `json:"keystrokeDynamics"`
	CorrectionRatio   float64           `json:"correctionRatio"`
	PauseDistribution []float64         `json:"pauseDistribution"`
}

// deriveTypingPattern reduces the keystroke log to typing statistics.
// All ratios yield 0 on a zero denominator.
func deriveTypingPattern(events []KeystrokeEvent, cfg Config) TypingPattern {
	keydowns := contentKeydowns(events)

	var backspaces int
	for _, e := range events {
		if e.Direction == KeyDown && e.Backspace {
			backspaces++
		}
	}

	var dwells []float64
	for _, e := range events {
		if e.Direction == KeyDown && e.Duration > 0 {
			dwells = append(dwells, float64(e.Duration))
		}
	}

	var flights []float64
	for i := 1; i < len(keydowns); i++ {
		flights = append(flights, float64(keydowns[i].Timestamp-keydowns[i-1].Timestamp))
	}

	var pauses []float64
	for _, f := range flights {
		if f >= float64(cfg.PauseThresholdMS) {
			pauses = append(pauses, f)
		}
	}

	avgSpeed, peakSpeed := typingSpeeds(keydowns, cfg.TypingWindowMS)

	var correction float64
	if len(keydowns) > 0 {
		correction = float64(backspaces) / float64(len(keydowns))
	}

	return TypingPattern{
		TotalKeypresses: len(keydowns),
		BackspaceCount:  backspaces,
		PauseCount:      len(pauses),
		AvgTypingSpeed:  avgSpeed,
		PeakTypingSpeed: peakSpeed,
		Dynamics: KeystrokeDynamics{
			DwellTimes:  dwells,
			FlightTimes: flights,
			Rhythm:      populationStdDev(flights),
		},
		CorrectionRatio:   correction,
		PauseDistribution: pauses,
	}
}

// contentKeydowns filters the non-special key-down events the typing
// statistics are defined over. Backspace counts as content here so the
// correction ratio stays bounded by 1.
func contentKeydowns(events []KeystrokeEvent) []KeystrokeEvent {
	var out []KeystrokeEvent
	for _, e := range events {
		if e.Direction == KeyDown && !e.Special {
			out = append(out, e)
		}
	}
	return out
}

// typingSpeeds computes characters-per-minute over sliding windows anchored
// at each keystroke. A window always contains its anchor, so speeds are
// only empty when there are no keydowns at all.
func typingSpeeds(keydowns []KeystrokeEvent, windowMS int64) (avg, peak float64) {
	if len(keydowns) == 0 || windowMS <= 0 {
		return 0, 0
	}
	var sum float64
	for i := range keydowns {
		start := keydowns[i].Timestamp
		end := start + windowMS
		chars := 0
		for _, e := range keydowns {
			if e.Timestamp >= start && e.Timestamp <= end {
				chars++
			}
		}
		speed := float64(chars) / float64(windowMS) * 60_000
		sum += speed
		if speed > peak {
			peak = speed
		}
	}
	return sum / float64(len(keydowns)), peak
}

// populationStdDev is the population (not sample) standard deviation,
// matching the rhythm definition.
func populationStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sqrtHypot(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}
