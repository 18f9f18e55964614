package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/agrimsachdeva/creativity-assesment/internal/llm"
	"github.com/agrimsachdeva/creativity-assesment/internal/models"
	"github.com/agrimsachdeva/creativity-assesment/internal/monitoring"
	"github.com/agrimsachdeva/creativity-assesment/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler forwards participant messages to the AI assistant.
type ChatHandler struct {
	log      *zap.Logger
	registry *session.Registry
}

func NewChatHandler(log *zap.Logger, registry *session.Registry) *ChatHandler {
	return &ChatHandler{log: log, registry: registry}
}

type chatRequest struct {
	SessionID string           `json:"sessionId" binding:"required"`
	Messages  []models.Message `json:"messages" binding:"required"`
}

// Send forwards the transcript and returns the assistant turn. Provider
// failures become participant-facing messages, not raw provider errors.
func (h *ChatHandler) Send(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s, ok := h.registry.Get(req.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
		return
	}

	started := time.Now()
	reply, err := s.SendMessage(c.Request.Context(), req.Messages)
	monitoring.ChatLatency.Observe(time.Since(started).Seconds())
	if err != nil {
		h.log.Error("Chat completion failed",
			zap.String("sessionID", s.ID),
			zap.Error(err))
		status, outcome, message := classifyChatError(err)
		monitoring.ChatRequests.WithLabelValues(outcome).Inc()
		c.JSON(status, gin.H{"error": message})
		return
	}

	monitoring.ChatRequests.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"message": reply})
}

// classifyChatError maps the llm sentinel errors onto participant-facing
// text mirroring what the chat pane shows for each failure mode.
func classifyChatError(err error) (status int, outcome, message string) {
	switch {
	case errors.Is(err, llm.ErrUnauthorized):
		return http.StatusBadGateway, "unauthorized",
			"The AI service API key appears to be invalid or expired. Please contact the administrator."
	case errors.Is(err, llm.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited",
			"The AI service is receiving too many requests. Please wait a moment and try again."
	case errors.Is(err, llm.ErrQuotaExceeded):
		return http.StatusBadGateway, "quota_exceeded",
			"The AI service quota has been exceeded. Please contact the administrator."
	default:
		return http.StatusBadGateway, "error",
			"The AI service is temporarily unavailable. Please try again."
	}
}
