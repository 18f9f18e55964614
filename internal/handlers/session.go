package handlers

import (
	"net/http"

	"github.com/agrimsachdeva/creativity-assesment/internal/models"
	"github.com/agrimsachdeva/creativity-assesment/internal/monitoring"
	"github.com/agrimsachdeva/creativity-assesment/internal/session"
	"github.com/agrimsachdeva/creativity-assesment/internal/telemetry"
	"github.com/agrimsachdeva/creativity-assesment/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler bootstraps task sessions and serves stimuli.
type SessionHandler struct {
	log      *zap.Logger
	registry *session.Registry
	catalog  *models.Catalog
	newSess  func(participantID string, task telemetry.TaskKind) *session.Session
}

func NewSessionHandler(log *zap.Logger, registry *session.Registry, catalog *models.Catalog,
	newSess func(participantID string, task telemetry.TaskKind) *session.Session) *SessionHandler {
	return &SessionHandler{log: log, registry: registry, catalog: catalog, newSess: newSess}
}

type startRequest struct {
	ParticipantID string `json:"participantId"`
	Task          string `json:"task" binding:"required"`
}

// Start issues a new session for a participant and hands back the stimuli
// for the requested task.
func (h *SessionHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task := telemetry.TaskKind(req.Task)
	switch task {
	case telemetry.TaskAlternateUses, telemetry.TaskRemoteAssociates, telemetry.TaskDivergentAssociation:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown task kind"})
		return
	}

	if req.ParticipantID != "" && !utils.IsValidParticipantID(req.ParticipantID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid participant ID"})
		return
	}

	s := h.newSess(req.ParticipantID, task)
	h.registry.Add(s)
	monitoring.SessionsStarted.Inc()

	cookie := sessions.Default(c)
	cookie.Set("sessionID", s.ID)
	if err := cookie.Save(); err != nil {
		h.log.Warn("Failed to save session cookie", zap.Error(err))
	}

	h.log.Info("Session started",
		zap.String("sessionID", s.ID),
		zap.String("participantID", s.ParticipantID),
		zap.String("task", string(task)))

	c.JSON(http.StatusOK, gin.H{
		"sessionId":     s.ID,
		"participantId": s.ParticipantID,
		"task":          task,
		"stimuli":       h.stimuliFor(task),
	})
}

// stimuliFor picks the stimuli payload for a task kind.
func (h *SessionHandler) stimuliFor(task telemetry.TaskKind) gin.H {
	switch task {
	case telemetry.TaskAlternateUses:
		item, _ := h.catalog.PickObject()
		return gin.H{"object": item}
	case telemetry.TaskRemoteAssociates:
		return gin.H{"wordSets": h.catalog.PickWordSets(2)}
	default:
		return gin.H{"prompt": h.catalog.DivergentAssociation}
	}
}

// Snapshot exposes the current telemetry snapshot for debugging a live
// session. Not linked from the participant UI.
func (h *SessionHandler) Snapshot(c *gin.Context) {
	s, ok := h.lookup(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot(telemetry.SnapshotRequest{}))
}

// End closes a session without persisting, for participants who abort.
func (h *SessionHandler) End(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.registry.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
		return
	}
	h.registry.Remove(id)
	h.log.Info("Session ended without completion", zap.String("sessionID", id))
	c.Status(http.StatusNoContent)
}

// lookup resolves a session ID from the URL, falling back to the cookie.
func (h *SessionHandler) lookup(c *gin.Context, id string) (*session.Session, bool) {
	if id == "" {
		cookie := sessions.Default(c)
		id, _ = cookie.Get("sessionID").(string)
	}
	s, ok := h.registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
		return nil, false
	}
	return s, true
}
