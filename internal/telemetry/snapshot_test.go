package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotBeforeAnyEvents(t *testing.T) {
	clock := &fakeClock{ms: 42_000}
	c := newTestCollector(t, clock)

	snap := c.Snapshot(SnapshotRequest{})

	assert.Equal(t, "sess-1", snap.SessionID)
	assert.Zero(t, snap.TypingPattern.TotalKeypresses)
	assert.Zero(t, snap.CognitiveLoad.ThinkingPauses)
	assert.Zero(t, snap.Linguistic.WordCount)
	assert.Empty(t, snap.PointerLog)
	assert.Empty(t, snap.KeystrokeLog)
	assert.Zero(t, snap.SessionDurationMS)
	assert.Empty(t, snap.TemporalFeatures)
	assert.Len(t, snap.FeatureVector, 19)
	for i, v := range snap.FeatureVector {
		assert.Zerof(t, v, "feature %d of the empty snapshot", i)
	}
}

func TestSessionDurationComputedAtSnapshotTime(t *testing.T) {
	clock := &fakeClock{ms: 10_000}
	c := newTestCollector(t, clock)

	clock.advance(90_000)
	first := c.Snapshot(SnapshotRequest{})
	clock.advance(30_000)
	second := c.Snapshot(SnapshotRequest{})

	assert.Equal(t, int64(90_000), first.SessionDurationMS)
	assert.Equal(t, int64(120_000), second.SessionDurationMS)
}

func TestTemporalMatrixRowCount(t *testing.T) {
	cases := []struct {
		durationMS int64
		rows       int
	}{
		{0, 0},
		{1, 1},
		{999, 1},
		{1000, 1},
		{1001, 2},
		{2500, 3},
		{10_000, 10},
	}
	for _, tc := range cases {
		clock := &fakeClock{ms: 0}
		c := newTestCollector(t, clock)
		clock.advance(tc.durationMS)
		snap := c.Snapshot(SnapshotRequest{})
		assert.Lenf(t, snap.TemporalFeatures, tc.rows, "duration %dms", tc.durationMS)
	}
}

func TestTemporalMatrixWindowContents(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)

	// Window 0: two keystrokes 100ms apart. Window 2: one keystroke ending
	// a 2100ms gap (a pause), plus a pointer move.
	c.RecordKeyDown("a", 100)
	c.RecordKeyDown("b", 200)
	c.RecordKeyDown("c", 2300)
	c.RecordPointerMove(5, 5, 2400, "")

	clock.advance(3000)
	snap := c.Snapshot(SnapshotRequest{})
	require.Len(t, snap.TemporalFeatures, 3)

	assert.Equal(t, []float64{2, 0, 0, 0}, snap.TemporalFeatures[0])
	assert.Equal(t, []float64{0, 0, 0, 1000}, snap.TemporalFeatures[1])
	assert.Equal(t, []float64{1, 1, 1, 2000}, snap.TemporalFeatures[2])
}

func TestTemporalMatrixAnchorsOnHostTimestamps(t *testing.T) {
	clock := &fakeClock{ms: 1_000}
	c := newTestCollector(t, clock)

	// Host clock runs ten minutes ahead of the server clock.
	base := clock.ms + 600_000
	for i := int64(0); i < 5; i++ {
		c.RecordKeyDown("k", base+i*400)
	}

	clock.advance(2500)
	snap := c.Snapshot(SnapshotRequest{})
	require.Len(t, snap.TemporalFeatures, 3)

	var counted float64
	for _, row := range snap.TemporalFeatures {
		counted += row[0]
	}
	assert.Equal(t, 5.0, counted, "skewed keystrokes stay in the matrix")
	assert.Equal(t, []float64{3, 0, 0, 0}, snap.TemporalFeatures[0])
	assert.Equal(t, []float64{2, 0, 0, 1000}, snap.TemporalFeatures[1])
}

func TestFeatureVectorOrderContract(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)

	c.RecordKeyDown("h", 100)
	c.RecordKeyDown("i", 300)
	c.RecordBlur(400)
	clock.advance(60_000)

	snap := c.Snapshot(SnapshotRequest{LastMessage: "hi there friend"})
	v := snap.FeatureVector
	require.Len(t, v, 19)

	assert.Equal(t, snap.TypingPattern.AvgTypingSpeed, v[0])
	assert.Equal(t, snap.TypingPattern.PeakTypingSpeed, v[1])
	assert.Equal(t, snap.TypingPattern.CorrectionRatio, v[2])
	assert.Equal(t, float64(snap.TypingPattern.PauseCount), v[3])
	assert.Equal(t, snap.TypingPattern.Dynamics.Rhythm, v[4])
	assert.Equal(t, float64(snap.CognitiveLoad.ThinkingPauses), v[5])
	assert.Equal(t, snap.CognitiveLoad.AvgThinkingTime, v[6])
	assert.Equal(t, snap.CognitiveLoad.ResponseLatency, v[7])
	assert.Equal(t, 1.0, v[8], "task switching = one blur")
	assert.Equal(t, float64(snap.CognitiveLoad.Editing.Revisions), v[9])
	assert.Equal(t, 3.0, v[10], "word count")
	assert.Equal(t, snap.Linguistic.VocabularyRichness, v[11])
	assert.Equal(t, snap.Linguistic.ReadabilityScore/100, v[12])
	assert.Equal(t, snap.Linguistic.SemanticComplexity, v[13])
	assert.Equal(t, float64(snap.Linguistic.Creativity.UniqueWords), v[14])
	assert.Equal(t, 0.0, v[15], "no pointer events")
	assert.Equal(t, 1.0, v[16], "blur count")
	assert.Equal(t, 1.0, v[17], "one minute of session time")
	assert.Equal(t, 0.0, v[18], "no messages")
}

func TestSnapshotTaskContext(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := NewCollector("s", "p", TaskRemoteAssociates, WithClock(clock.now))

	round := 3
	snap := c.Snapshot(SnapshotRequest{
		Round:     &round,
		Stimulus:  &Stimulus{Words: []string{"cottage", "swiss", "cake"}, Answer: "cheese"},
		Progress:  140, // clamped
		Completed: true,
	})

	require.NotNil(t, snap.Round)
	assert.Equal(t, 3, *snap.Round)
	assert.Equal(t, "cheese", snap.Stimulus.Answer)
	assert.Equal(t, 100.0, snap.Progress)
	assert.True(t, snap.Completion)
	assert.Equal(t, TaskRemoteAssociates, snap.Task)
}

func TestSnapshotEnvironmentFromProbe(t *testing.T) {
	env := Environment{
		Language:         "de-DE",
		Platform:         "Linux x86_64",
		UserAgent:        "Mozilla/5.0",
		ScreenResolution: "1920x1080",
		Viewport:         "1200x800",
		Timezone:         "Europe/Berlin",
		DevicePixelRatio: 2,
		ConnectionType:   "4g",
	}
	c := NewCollector("s", "p", TaskDivergentAssociation, WithProbe(StaticProbe{Env: env}))
	snap := c.Snapshot(SnapshotRequest{})
	assert.Equal(t, env, snap.Environment)
}

func TestFinalMessageComparison(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)

	c.StartMessage()
	c.UpdateMessage("first draft")
	c.CompleteMessage()

	same := c.Snapshot(SnapshotRequest{LastMessage: "first draft"})
	assert.False(t, same.MessageMetrics.FinalMessageDifferentFromFirst)

	diff := c.Snapshot(SnapshotRequest{LastMessage: "polished final answer"})
	assert.True(t, diff.MessageMetrics.FinalMessageDifferentFromFirst)
}
