package telemetry

// HelpSeekingMetrics is the derived view of the help-seeking tracker.
// The "first resort" / "last resort" labels are threshold classifications,
// not validated psychometric constructs.
type HelpSeekingMetrics struct {
	// TimeToFirstAIQueryMS is nil until the participant queries the AI at
	// least once.
	TimeToFirstAIQueryMS       *int64 `json:"timeToFirstAiQueryMs"`
	IndependentSolveAttempts   int    `json:"independentSolveAttempts"`
	AttemptsBeforeFirstAIQuery int    `json:"attemptsBeforeFirstAiQuery"`
	AIAsFirstResort            bool   `json:"aiAsFirstResort"`
	AIAsLastResort             bool   `json:"aiAsLastResort"`
	TotalAIQueries             int    `json:"totalAiQueries"`
	AIQueriesPerRound          []int  `json:"aiQueriesPerRound"`
}

// HelpTracker sequences help-seeking behavior across rounds. Two states per
// round: not-yet-asked and has-asked, one way, reset at round boundaries.
type HelpTracker struct {
	cfg   Config
	clock func() int64

	startMS       int64
	asked         bool
	timeToFirstMS *int64

	independentAttempts int
	attemptsBeforeFirst int
	totalQueries        int
	currentRoundQueries int
	perRound            []int
}

func newHelpTracker(cfg Config, clock func() int64) *HelpTracker {
	return &HelpTracker{cfg: cfg.withDefaults(), clock: clock, startMS: clock()}
}

// RecordQuery notes one AI query. The first query of the session captures
// the elapsed time since task start; later rounds do not overwrite it.
func (t *HelpTracker) RecordQuery() {
	if !t.asked {
		t.asked = true
		if t.timeToFirstMS == nil {
			elapsed := t.clock() - t.startMS
			t.timeToFirstMS = &elapsed
		}
	}
	t.totalQueries++
	t.currentRoundQueries++
}

// RecordSubmission notes one answer submission. Submissions made without AI
// help this round count as independent attempts; submissions made before
// the round's first query count toward the attempts-before-AI tally.
func (t *HelpTracker) RecordSubmission(wasAIAssisted bool) {
	if !wasAIAssisted {
		t.independentAttempts++
	}
	if !t.asked {
		t.attemptsBeforeFirst++
	}
}

// RecordRoundComplete freezes the current round's query count and reopens
// the not-yet-asked state for the next round.
func (t *HelpTracker) RecordRoundComplete() {
	t.perRound = append(t.perRound, t.currentRoundQueries)
	t.currentRoundQueries = 0
	t.asked = false
}

// Reset reinitializes the tracker for an intentional task restart.
func (t *HelpTracker) Reset() {
	t.startMS = t.clock()
	t.asked = false
	t.timeToFirstMS = nil
	t.independentAttempts = 0
	t.attemptsBeforeFirst = 0
	t.totalQueries = 0
	t.currentRoundQueries = 0
	t.perRound = nil
}

// Metrics derives the current help-seeking view.
func (t *HelpTracker) Metrics() HelpSeekingMetrics {
	var timeToFirst *int64
	if t.timeToFirstMS != nil {
		v := *t.timeToFirstMS
		timeToFirst = &v
	}
	return HelpSeekingMetrics{
		TimeToFirstAIQueryMS:       timeToFirst,
		IndependentSolveAttempts:   t.independentAttempts,
		AttemptsBeforeFirstAIQuery: t.attemptsBeforeFirst,
		AIAsFirstResort:            t.attemptsBeforeFirst == 0 && t.totalQueries > 0,
		AIAsLastResort:             t.attemptsBeforeFirst >= t.cfg.LastResortAttempts,
		TotalAIQueries:             t.totalQueries,
		AIQueriesPerRound:          append([]int(nil), t.perRound...),
	}
}
