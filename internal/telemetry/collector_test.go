package telemetry

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointerMoveLogBounded(t *testing.T) {
	// 1500 synthetic moves: only the most recent 1000 survive, FIFO.
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)

	for i := 0; i < 1500; i++ {
		c.RecordPointerMove(float64(i), float64(i), int64(i+1), "")
	}

	snap := c.Snapshot(SnapshotRequest{})
	require.Len(t, snap.PointerLog, 1000)
	assert.Equal(t, 500.0, snap.PointerLog[0].X)
	assert.Equal(t, 1499.0, snap.PointerLog[999].X)
}

func TestCopyPastePreviewBounded(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)

	long := strings.Repeat("x", 400)
	c.RecordCopyPaste(ClipboardPaste, SourceTaskInput, long, 100)
	c.RecordCopyPaste(ClipboardCopy, SourceChatPane, "short", 200)

	snap := c.Snapshot(SnapshotRequest{})
	require.Len(t, snap.InteractionSequence, 0)

	eng := c.Engagement()
	require.Len(t, eng.CopyPasteEvents, 2)
	assert.Len(t, eng.CopyPasteEvents[0].TextPreview, 50)
	assert.Equal(t, 400, eng.CopyPasteEvents[0].TextLength)
	assert.Equal(t, "short", eng.CopyPasteEvents[1].TextPreview)
}

func TestChatPaneCopyCountsAsResponseCopied(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)

	c.RecordCopyPaste(ClipboardCopy, SourceChatPane, "an assistant suggestion", 10)
	c.RecordCopyPaste(ClipboardCopy, SourceExternal, "something else", 20)
	c.RecordCopyPaste(ClipboardPaste, SourceChatPane, "pasting back", 30)

	assert.Equal(t, 1, c.AIUsage().AIResponsesCopied)
}

func TestUnknownCopySourceClassifiedExternal(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)
	c.RecordCopyPaste(ClipboardCopy, CopySource("somewhere"), "text", 10)
	assert.Equal(t, SourceExternal, c.Engagement().CopyPasteEvents[0].Source)
}

func TestInteractionSequenceNumbering(t *testing.T) {
	clock := &fakeClock{ms: 1000}
	c := newTestCollector(t, clock)

	c.StartMessage()
	c.UpdateMessage("hello there")
	clock.advance(1500)
	c.CompleteMessage()
	c.RecordAIResponse(320)
	c.RecordNavigation("/next")

	snap := c.Snapshot(SnapshotRequest{})
	require.Len(t, snap.InteractionSequence, 4)
	for i, step := range snap.InteractionSequence {
		assert.Equal(t, i, step.Sequence)
		assert.Equal(t, "sess-1", step.SessionID)
	}
	assert.Equal(t, StepMessageStart, snap.InteractionSequence[0].Kind)
	assert.Equal(t, StepMessageComplete, snap.InteractionSequence[1].Kind)
	assert.Equal(t, int64(1500), snap.InteractionSequence[1].Duration)
	assert.Equal(t, 2, snap.InteractionSequence[1].Context["wordCount"])
	assert.Equal(t, StepAIResponse, snap.InteractionSequence[2].Kind)
}

func TestResponseLatencyRecordedOnNextComposition(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)

	c.RecordAIResponse(250)
	clock.advance(4000)
	c.StartMessage()

	snap := c.Snapshot(SnapshotRequest{})
	assert.Equal(t, 4000.0, snap.CognitiveLoad.ResponseLatency)
	assert.Equal(t, 4000.0, snap.MessageMetrics.ResponseTime)
}

func TestParticipantIDFallsBackToSessionID(t *testing.T) {
	c := NewCollector("sess-9", "", TaskRemoteAssociates)
	assert.Equal(t, "sess-9", c.ParticipantID())
}

func TestKeyUpMatchesMostRecentUnmatchedDown(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)

	// Rollover typing: second "a" goes down before the first comes up.
	c.RecordKeyDown("a", 100)
	c.RecordKeyDown("a", 150)
	c.RecordKeyUp("a", 210)

	snap := c.Snapshot(SnapshotRequest{})
	require.Len(t, snap.KeystrokeLog, 3)
	assert.Zero(t, snap.KeystrokeLog[0].Duration)
	assert.Equal(t, int64(60), snap.KeystrokeLog[1].Duration)
}

func TestMissingTimestampDegradesToClock(t *testing.T) {
	clock := &fakeClock{ms: 7777}
	c := newTestCollector(t, clock)

	c.RecordKeyDown("a", 0)
	snap := c.Snapshot(SnapshotRequest{})
	assert.Equal(t, int64(7777), snap.KeystrokeLog[0].Timestamp)
}

func TestEngagementDataAggregates(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)

	c.RecordAssistantText("Try a paperweight for heavy documents on the desk")
	c.RecordQuery()
	c.AttributeAnswer("use it as a paperweight for heavy documents")
	c.RecordSubmission(true)
	c.RecordRoundComplete()
	c.RecordCopyPaste(ClipboardCopy, SourceChatPane, "paperweight", 10)

	eng := c.Engagement()
	assert.Equal(t, 1, eng.CopyPasteCount)
	assert.Equal(t, 1, eng.ChatbotEngagementCount)
	assert.Positive(t, eng.AIUsage.AITextUsedInAnswers)
	assert.Equal(t, []int{1}, eng.HelpSeeking.AIQueriesPerRound)
	assert.True(t, eng.HelpSeeking.AIAsFirstResort)
	assert.Positive(t, eng.ChatbotUsagePercentage)
}

func TestPointerVelocityFromSuccessivePositions(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)

	c.RecordPointerMove(0, 0, 100, "")
	c.RecordPointerMove(30, 40, 200, "") // 50px over 100ms

	snap := c.Snapshot(SnapshotRequest{})
	require.Len(t, snap.PointerLog, 2)
	assert.Zero(t, snap.PointerLog[0].Velocity)
	assert.InDelta(t, 0.5, snap.PointerLog[1].Velocity, 1e-9)
}

func TestSnapshotIsolatedFromLaterMutation(t *testing.T) {
	clock := &fakeClock{ms: 0}
	c := newTestCollector(t, clock)

	c.RecordKeyDown("a", 100)
	snap := c.Snapshot(SnapshotRequest{})
	require.Len(t, snap.KeystrokeLog, 1)

	for i := 0; i < 50; i++ {
		c.RecordKeyDown(fmt.Sprintf("%d", i%10), int64(200+i))
	}
	assert.Len(t, snap.KeystrokeLog, 1, "delivered snapshot must not observe later events")
}
