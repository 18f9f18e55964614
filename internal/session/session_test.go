package session

import (
	"context"
	"errors"
	"testing"

	"github.com/agrimsachdeva/creativity-assesment/internal/llm"
	"github.com/agrimsachdeva/creativity-assesment/internal/models"
	"github.com/agrimsachdeva/creativity-assesment/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	reply string
	err   error
	calls int
}

func (f *fakeChat) Complete(ctx context.Context, _ []models.Message) (string, error) {
	f.calls++
	return f.reply, f.err
}

func recordingPersister(saved *[]*models.CompletionRecord, err error) Persister {
	return func(ctx context.Context, record *models.CompletionRecord) error {
		*saved = append(*saved, record)
		return err
	}
}

func TestNewSessionParticipantFallback(t *testing.T) {
	s := New("", telemetry.TaskAlternateUses, Options{})
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, s.ID, s.ParticipantID)

	s2 := New("subj-42", telemetry.TaskAlternateUses, Options{})
	assert.Equal(t, "subj-42", s2.ParticipantID)
	assert.NotEqual(t, s.ID, s2.ID)
}

func TestSendMessageFeedsAttribution(t *testing.T) {
	chat := &fakeChat{reply: "you could use the brick as a makeshift bookend on a shelf"}
	s := New("subj-1", telemetry.TaskAlternateUses, Options{Chat: chat})

	reply, err := s.SendMessage(context.Background(), []models.Message{
		{Role: "user", Content: "ideas for a brick?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, chat.reply, reply.Content)
	assert.Equal(t, 1, chat.calls)

	// The assistant text is now attribution material.
	attr := s.Attribute("I would use the brick as a makeshift bookend at home")
	assert.Greater(t, attr.Percentage, 0.0)
}

func TestSendMessageErrorPropagatesClassified(t *testing.T) {
	chat := &fakeChat{err: llm.ErrRateLimited}
	s := New("subj-1", telemetry.TaskRemoteAssociates, Options{Chat: chat})

	_, err := s.SendMessage(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrRateLimited)

	// The failed query still counts as help-seeking.
	var saved []*models.CompletionRecord
	s.opts.Persist = recordingPersister(&saved, nil)
	record := s.Complete(context.Background(), CompleteRequest{})
	assert.Equal(t, 1, record.TotalAIQueries)
}

func TestCompleteBuildsSummaryColumns(t *testing.T) {
	chat := &fakeChat{reply: "maybe try grouping the words by their compound partners"}
	var saved []*models.CompletionRecord
	s := New("subj-7", telemetry.TaskRemoteAssociates, Options{
		Chat:    chat,
		Persist: recordingPersister(&saved, nil),
	})

	s.Ingest(
		telemetry.RawEvent{Kind: "keydown", Key: "a", Timestamp: 1},
		telemetry.RawEvent{Kind: "keydown", Key: "Backspace", Timestamp: 100},
		telemetry.RawEvent{Kind: "keydown", Key: "b", Timestamp: 200},
	)
	s.RecordAttempt(false)
	_, err := s.SendMessage(context.Background(), nil)
	require.NoError(t, err)
	round := s.CompleteRound()
	assert.Equal(t, 1, round)

	two := 2
	record := s.Complete(context.Background(), CompleteRequest{
		Round:    &two,
		Progress: 100,
		Transcript: []models.Message{
			{Role: "user", Content: "help"},
		},
	})

	require.Len(t, saved, 1)
	assert.Same(t, record, saved[0])
	assert.Equal(t, s.ID, record.SessionID)
	assert.Equal(t, "subj-7", record.ParticipantID)
	assert.Equal(t, "remote-associates", record.Task)
	assert.Equal(t, 2, record.Round)
	assert.Equal(t, 3, record.TotalKeystrokes)
	assert.Equal(t, 1, record.BackspaceCount)
	assert.Equal(t, 1, record.TotalAIQueries)
	assert.Equal(t, 1, record.IndependentAttempts)
	assert.False(t, record.AIFirstResort)
	require.NotNil(t, record.TimeToFirstQueryMS)
	require.Len(t, record.QueriesPerRound, 1)
	assert.Equal(t, int64(1), record.QueriesPerRound[0])
	assert.NotEmpty(t, record.Transcript)
	assert.NotEmpty(t, record.Telemetry)
	assert.NotEmpty(t, record.Engagement)
}

func TestCompletePersistFailureSwallowed(t *testing.T) {
	var saved []*models.CompletionRecord
	s := New("subj-9", telemetry.TaskDivergentAssociation, Options{
		Persist: recordingPersister(&saved, errors.New("connection refused")),
	})

	record := s.Complete(context.Background(), CompleteRequest{})
	require.NotNil(t, record)
	assert.Len(t, saved, 1)
}

func TestCompletePersistsOnlyOnce(t *testing.T) {
	var saved []*models.CompletionRecord
	s := New("subj-9", telemetry.TaskAlternateUses, Options{
		Persist: recordingPersister(&saved, nil),
	})

	s.Complete(context.Background(), CompleteRequest{})
	s.Complete(context.Background(), CompleteRequest{})
	assert.Len(t, saved, 1)
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(nil)
	s := New("subj-1", telemetry.TaskAlternateUses, Options{})
	r.Add(s)

	got, ok := r.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	r.Remove(s.ID)
	_, ok = r.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())

	// Removing an unknown ID is a no-op.
	r.Remove("missing")
}

func TestRegistryReapsIdleSessions(t *testing.T) {
	r := NewRegistry(nil)
	idle := New("subj-idle", telemetry.TaskAlternateUses, Options{})
	r.Add(idle)

	// A zero timeout treats any elapsed time as idle.
	reaped := r.ReapIdle(0)
	assert.Equal(t, 1, reaped)
	assert.Equal(t, 0, r.Len())

	// Reaped sessions can start a fresh capture, proving Stop ran.
	require.NoError(t, idle.StartCapture())
}
