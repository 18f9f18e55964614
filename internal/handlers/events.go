package handlers

import (
	"net/http"

	"github.com/agrimsachdeva/creativity-assesment/internal/monitoring"
	"github.com/agrimsachdeva/creativity-assesment/internal/session"
	"github.com/agrimsachdeva/creativity-assesment/internal/telemetry"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventsHandler accepts raw telemetry batches from the browser.
type EventsHandler struct {
	log      *zap.Logger
	registry *session.Registry
}

func NewEventsHandler(log *zap.Logger, registry *session.Registry) *EventsHandler {
	return &EventsHandler{log: log, registry: registry}
}

type eventBatch struct {
	SessionID string               `json:"sessionId"`
	Events    []telemetry.RawEvent `json:"events"`
}

// Ingest feeds one batch into the session's capture layer. Unknown event
// kinds are dropped inside the capture; a batch is only rejected when the
// session itself is unknown.
func (h *EventsHandler) Ingest(c *gin.Context) {
	var batch eventBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		h.log.Warn("Failed to bind event batch", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	id := batch.SessionID
	if id == "" {
		cookie := sessions.Default(c)
		id, _ = cookie.Get("sessionID").(string)
	}

	s, ok := h.registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
		return
	}

	s.Ingest(batch.Events...)
	monitoring.EventsIngested.Add(float64(len(batch.Events)))
	c.JSON(http.StatusOK, gin.H{"accepted": len(batch.Events)})
}
