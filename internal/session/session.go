package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/agrimsachdeva/creativity-assesment/internal/models"
	"github.com/agrimsachdeva/creativity-assesment/internal/telemetry"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Chatter is the chat-completion dependency of a session.
type Chatter interface {
	Complete(ctx context.Context, transcript []models.Message) (string, error)
}

// Persister saves one finished round. In production this is
// repository.SaveCompletion.
type Persister func(ctx context.Context, record *models.CompletionRecord) error

// Options configures a new session. Zero values fall back to production
// defaults (wall clock, unknown environment, engine default thresholds).
type Options struct {
	Telemetry telemetry.Config
	Probe     telemetry.EnvironmentProbe
	Clock     func() int64
	Chat      Chatter
	Persist   Persister
	Log       *zap.Logger
}

// Session owns one participant's run of a creativity task: the telemetry
// collector, the capture layer, and the chat forwarding. There is no
// package-level current session; callers hold Session values and the
// Registry maps IDs to them.
type Session struct {
	ID            string
	ParticipantID string
	Task          telemetry.TaskKind
	StartedAt     time.Time

	opts    Options
	col     *telemetry.Collector
	capture *telemetry.Capture

	mu         sync.Mutex
	round      int
	lastActive time.Time
	completed  bool
}

func New(participantID string, task telemetry.TaskKind, opts Options) *Session {
	id := uuid.NewString()
	if participantID == "" {
		participantID = id
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	colOpts := []telemetry.Option{telemetry.WithConfig(opts.Telemetry)}
	if opts.Probe != nil {
		colOpts = append(colOpts, telemetry.WithProbe(opts.Probe))
	}
	if opts.Clock != nil {
		colOpts = append(colOpts, telemetry.WithClock(opts.Clock))
	}

	col := telemetry.NewCollector(id, participantID, task, colOpts...)
	return &Session{
		ID:            id,
		ParticipantID: participantID,
		Task:          task,
		StartedAt:     time.Now(),
		opts:          opts,
		col:           col,
		capture:       telemetry.NewCapture(col),
		lastActive:    time.Now(),
	}
}

// StartCapture attaches in-process event sources. The browser batch path
// goes through Ingest instead and needs no Start.
func (s *Session) StartCapture(sources ...telemetry.Source) error {
	return s.capture.Start(sources...)
}

// Close tears the capture down. Safe to call on every exit path.
func (s *Session) Close() {
	s.capture.Stop()
}

// Touch marks the session active. Every ingest and chat call touches, so
// the reaper only collects sessions the participant truly abandoned.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// IdleFor reports how long the session has gone without activity.
func (s *Session) IdleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

// Ingest feeds a batch of raw browser events to the capture layer.
func (s *Session) Ingest(events ...telemetry.RawEvent) {
	s.Touch()
	for _, ev := range events {
		s.capture.Ingest(ev)
	}
}

// SendMessage forwards the transcript to the chat backend and records the
// exchange as help-seeking plus attribution material. Provider failures
// come back classified (llm sentinel errors) for the handler to translate.
func (s *Session) SendMessage(ctx context.Context, transcript []models.Message) (models.Message, error) {
	s.Touch()
	s.col.RecordQuery()

	started := time.Now()
	reply, err := s.opts.Chat.Complete(ctx, transcript)
	if err != nil {
		return models.Message{}, err
	}

	s.col.RecordAssistantText(reply)
	s.col.RecordAIResponse(time.Since(started).Milliseconds())

	return models.Message{
		Role:      "assistant",
		Content:   reply,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// RecordAttempt notes one answer submission within the current round.
func (s *Session) RecordAttempt(wasAIAssisted bool) {
	s.Touch()
	s.col.RecordSubmission(wasAIAssisted)
}

// CompleteRound freezes the current round's help-seeking counts and
// advances the round counter.
func (s *Session) CompleteRound() int {
	s.Touch()
	s.col.RecordRoundComplete()
	s.mu.Lock()
	s.round++
	round := s.round
	s.mu.Unlock()
	return round
}

// Round returns the number of completed rounds.
func (s *Session) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// Snapshot exposes the collector's snapshot for the debug surface.
func (s *Session) Snapshot(req telemetry.SnapshotRequest) telemetry.Snapshot {
	return s.col.Snapshot(req)
}

// Attribute runs the AI-usage matcher over a candidate answer.
func (s *Session) Attribute(answer string) telemetry.Attribution {
	return s.col.AttributeAnswer(answer)
}

// CompleteRequest carries everything only the caller knows at completion
// time.
type CompleteRequest struct {
	Round         *int
	Stimulus      *telemetry.Stimulus
	Progress      float64
	LastMessage   string
	Transcript    []models.Message
	TaskResponses json.RawMessage
}

// Complete assembles the final snapshot and engagement payloads and hands
// them to the persister. Persistence failure is logged and swallowed: the
// participant's completion never blocks on the research log.
func (s *Session) Complete(ctx context.Context, req CompleteRequest) *models.CompletionRecord {
	s.mu.Lock()
	alreadyDone := s.completed
	s.completed = true
	s.mu.Unlock()

	snap := s.col.Snapshot(telemetry.SnapshotRequest{
		Round:       req.Round,
		Stimulus:    req.Stimulus,
		Progress:    req.Progress,
		Completed:   true,
		LastMessage: req.LastMessage,
	})
	engagement := s.col.Engagement()

	record := s.buildRecord(snap, engagement, req)

	if s.opts.Persist != nil && !alreadyDone {
		if err := s.opts.Persist(ctx, record); err != nil {
			s.opts.Log.Error("Failed to persist completion record",
				zap.String("sessionID", s.ID),
				zap.Error(err))
		}
	}

	s.capture.Stop()
	return record
}

func (s *Session) buildRecord(snap telemetry.Snapshot, engagement telemetry.EngagementData, req CompleteRequest) *models.CompletionRecord {
	transcriptJSON, _ := json.Marshal(req.Transcript)
	engagementJSON, _ := json.Marshal(engagement)
	telemetryJSON, _ := json.Marshal(snap)

	help := engagement.HelpSeeking
	perRound := make(pq.Int64Array, len(help.AIQueriesPerRound))
	for i, n := range help.AIQueriesPerRound {
		perRound[i] = int64(n)
	}

	var round int
	if req.Round != nil {
		round = *req.Round
	}

	now := time.Now()
	return &models.CompletionRecord{
		SessionID:     s.ID,
		ParticipantID: s.ParticipantID,
		Task:          string(s.Task),
		Round:         round,
		StartedAt:     s.StartedAt,
		EndedAt:       now,
		DurationMS:    snap.SessionDurationMS,

		Transcript:    transcriptJSON,
		TaskResponses: req.TaskResponses,
		Engagement:    engagementJSON,
		Telemetry:     telemetryJSON,

		TotalKeystrokes:     snap.TypingPattern.TotalKeypresses,
		BackspaceCount:      snap.TypingPattern.BackspaceCount,
		AverageTypingSpeed:  snap.TypingPattern.AvgTypingSpeed,
		TypingRhythm:        snap.TypingPattern.Dynamics.Rhythm,
		TotalMessages:       snap.TotalMessages,
		AIUsagePercentage:   engagement.AIUsage.AIUsagePercentage,
		AIResponsesCopied:   engagement.AIUsage.AIResponsesCopied,
		TotalAIQueries:      help.TotalAIQueries,
		IndependentAttempts: help.IndependentSolveAttempts,
		AIFirstResort:       help.AIAsFirstResort,
		AILastResort:        help.AIAsLastResort,
		TimeToFirstQueryMS:  help.TimeToFirstAIQueryMS,
		QueriesPerRound:     perRound,
	}
}
