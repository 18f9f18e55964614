package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/agrimsachdeva/creativity-assesment/internal/models"
	"github.com/agrimsachdeva/creativity-assesment/internal/monitoring"
	"github.com/agrimsachdeva/creativity-assesment/internal/session"
	"github.com/agrimsachdeva/creativity-assesment/internal/telemetry"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CompletionHandler finalizes a session: snapshot, engagement payload,
// persistence, teardown.
type CompletionHandler struct {
	log      *zap.Logger
	registry *session.Registry
}

func NewCompletionHandler(log *zap.Logger, registry *session.Registry) *CompletionHandler {
	return &CompletionHandler{log: log, registry: registry}
}

type submitRequest struct {
	SessionID     string `json:"sessionId"`
	Answer        string `json:"answer" binding:"required"`
	RoundComplete bool   `json:"roundComplete"`
}

// Submit records one answer attempt: the answer is attributed against
// observed assistant text, the attempt is counted toward the current
// round's help-seeking pattern, and on roundComplete the round's query
// count is frozen.
func (h *CompletionHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	id := req.SessionID
	if id == "" {
		cookie := sessions.Default(c)
		id, _ = cookie.Get("sessionID").(string)
	}

	s, ok := h.registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
		return
	}

	attr := s.Attribute(req.Answer)
	aiAssisted := attr.Percentage > 0
	s.RecordAttempt(aiAssisted)

	round := s.Round()
	if req.RoundComplete {
		round = s.CompleteRound()
	}

	h.log.Info("Answer submitted",
		zap.String("sessionID", id),
		zap.Bool("aiAssisted", aiAssisted),
		zap.Float64("aiUsagePercentage", attr.Percentage),
		zap.Int("round", round))

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"aiAssisted":        aiAssisted,
		"aiUsagePercentage": attr.Percentage,
		"matchedChars":      attr.MatchedChars,
		"round":             round,
	})
}

type completionRequest struct {
	SessionID     string              `json:"sessionId" binding:"required"`
	Round         *int                `json:"round"`
	Stimulus      *telemetry.Stimulus `json:"stimulus"`
	Progress      float64             `json:"progress"`
	LastMessage   string              `json:"lastMessage"`
	Transcript    []models.Message    `json:"transcript"`
	TaskResponses json.RawMessage     `json:"taskResponses"`
}

// Complete assembles and logs the final record. The response carries the
// attribution summary so the front end can show the participant debrief;
// a persistence failure does not fail the request.
func (h *CompletionHandler) Complete(c *gin.Context) {
	var req completionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s, ok := h.registry.Get(req.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
		return
	}

	record := s.Complete(c.Request.Context(), session.CompleteRequest{
		Round:         req.Round,
		Stimulus:      req.Stimulus,
		Progress:      req.Progress,
		LastMessage:   req.LastMessage,
		Transcript:    req.Transcript,
		TaskResponses: req.TaskResponses,
	})
	h.registry.Remove(req.SessionID)

	if record.ID != 0 {
		monitoring.CompletionsSaved.WithLabelValues("saved").Inc()
	} else {
		monitoring.CompletionsSaved.WithLabelValues("dropped").Inc()
	}

	h.log.Info("Session completed",
		zap.String("sessionID", req.SessionID),
		zap.String("participantID", record.ParticipantID),
		zap.Int64("durationMS", record.DurationMS),
		zap.Float64("aiUsagePercentage", record.AIUsagePercentage))

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"sessionId":         req.SessionID,
		"durationMs":        record.DurationMS,
		"aiUsagePercentage": record.AIUsagePercentage,
		"totalAiQueries":    record.TotalAIQueries,
	})
}
