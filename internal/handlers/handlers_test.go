package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agrimsachdeva/creativity-assesment/internal/llm"
	"github.com/agrimsachdeva/creativity-assesment/internal/models"
	"github.com/agrimsachdeva/creativity-assesment/internal/session"
	"github.com/agrimsachdeva/creativity-assesment/internal/telemetry"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubChat struct {
	reply string
	err   error
}

func (s *stubChat) Complete(ctx context.Context, _ []models.Message) (string, error) {
	return s.reply, s.err
}

func testCatalog() *models.Catalog {
	return &models.Catalog{
		AlternateUses: []models.ObjectItem{{Name: "Brick"}},
		RemoteAssociates: []models.WordSet{
			{Words: []string{"cottage", "swiss", "cake"}, Answer: "cheese"},
			{Words: []string{"cream", "skate", "water"}, Answer: "ice"},
		},
		DivergentAssociation: models.WordListPrompt{Instructions: "Enter 10 words.", WordCount: 10},
	}
}

func testRouter(t *testing.T, chat session.Chatter) (*gin.Engine, *session.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := session.NewRegistry(zap.NewNop())
	newSess := func(participantID string, task telemetry.TaskKind) *session.Session {
		return session.New(participantID, task, session.Options{Chat: chat})
	}

	r := gin.New()
	r.Use(sessions.Sessions("creatask", cookie.NewStore([]byte("test-secret"))))

	sessionHandler := NewSessionHandler(zap.NewNop(), registry, testCatalog(), newSess)
	eventsHandler := NewEventsHandler(zap.NewNop(), registry)
	chatHandler := NewChatHandler(zap.NewNop(), registry)
	completionHandler := NewCompletionHandler(zap.NewNop(), registry)
	resultsHandler := NewResultsHandler(zap.NewNop())

	r.POST("/api/session", sessionHandler.Start)
	r.GET("/api/session/:id/snapshot", sessionHandler.Snapshot)
	r.DELETE("/api/session/:id", sessionHandler.End)
	r.POST("/api/events", eventsHandler.Ingest)
	r.POST("/api/chat", chatHandler.Send)
	r.POST("/api/submit", completionHandler.Submit)
	r.POST("/api/complete", completionHandler.Complete)
	r.GET("/research/completions/:id", resultsHandler.GetCompletion)
	return r, registry
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionStartIssuesIDAndStimuli(t *testing.T) {
	r, registry := testRouter(t, &stubChat{})

	w := postJSON(r, "/api/session", gin.H{"participantId": "subj-1", "task": "remote-associates"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SessionID     string `json:"sessionId"`
		ParticipantID string `json:"participantId"`
		Task          string `json:"task"`
		Stimuli       struct {
			WordSets []models.WordSet `json:"wordSets"`
		} `json:"stimuli"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "subj-1", resp.ParticipantID)
	assert.Equal(t, "remote-associates", resp.Task)
	assert.Len(t, resp.Stimuli.WordSets, 2)

	_, ok := registry.Get(resp.SessionID)
	assert.True(t, ok)
}

func TestSessionStartRejectsUnknownTask(t *testing.T) {
	r, _ := testRouter(t, &stubChat{})
	w := postJSON(r, "/api/session", gin.H{"task": "anagram"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionStartRejectsBadParticipantID(t *testing.T) {
	r, _ := testRouter(t, &stubChat{})
	w := postJSON(r, "/api/session", gin.H{"participantId": "bad id!", "task": "alternate-uses"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventsIngestFlowsIntoSnapshot(t *testing.T) {
	r, registry := testRouter(t, &stubChat{})
	s := session.New("subj-1", telemetry.TaskAlternateUses, session.Options{})
	registry.Add(s)

	w := postJSON(r, "/api/events", gin.H{
		"sessionId": s.ID,
		"events": []gin.H{
			{"kind": "keydown", "key": "a", "timestamp": 100},
			{"kind": "keydown", "key": "b", "timestamp": 200},
			{"kind": "unknownkind"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accepted":3`)

	snap := s.Snapshot(telemetry.SnapshotRequest{})
	assert.Equal(t, 2, snap.TypingPattern.TotalKeypresses)
}

func TestEventsIngestUnknownSession(t *testing.T) {
	r, _ := testRouter(t, &stubChat{})
	w := postJSON(r, "/api/events", gin.H{"sessionId": "nope", "events": []gin.H{}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatSendReturnsAssistantTurn(t *testing.T) {
	r, registry := testRouter(t, &stubChat{reply: "What about using it as a doorstop?"})
	s := session.New("subj-1", telemetry.TaskAlternateUses, session.Options{Chat: &stubChat{reply: "What about using it as a doorstop?"}})
	registry.Add(s)

	w := postJSON(r, "/api/chat", gin.H{
		"sessionId": s.ID,
		"messages":  []gin.H{{"role": "user", "content": "ideas?"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "doorstop")
}

func TestChatSendMapsProviderErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{llm.ErrUnauthorized, http.StatusBadGateway},
		{llm.ErrRateLimited, http.StatusTooManyRequests},
		{llm.ErrQuotaExceeded, http.StatusBadGateway},
		{errors.New("boom"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		r, registry := testRouter(t, &stubChat{err: tc.err})
		s := session.New("subj-1", telemetry.TaskAlternateUses, session.Options{Chat: &stubChat{err: tc.err}})
		registry.Add(s)

		w := postJSON(r, "/api/chat", gin.H{
			"sessionId": s.ID,
			"messages":  []gin.H{{"role": "user", "content": "help"}},
		})
		assert.Equal(t, tc.status, w.Code, "error %v", tc.err)
		// The raw provider error never reaches the participant.
		assert.NotContains(t, w.Body.String(), "llm:")
	}
}

func TestSubmitAttributesAnswerAndAdvancesRound(t *testing.T) {
	chat := &stubChat{reply: "You could use the brick as a doorstop or a bookend."}
	r, registry := testRouter(t, chat)
	s := session.New("subj-1", telemetry.TaskAlternateUses, session.Options{Chat: chat})
	registry.Add(s)

	// Ask the assistant first so there is observed text to attribute
	// against.
	w := postJSON(r, "/api/chat", gin.H{
		"sessionId": s.ID,
		"messages":  []gin.H{{"role": "user", "content": "ideas for a brick?"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AIAssisted        bool    `json:"aiAssisted"`
		AIUsagePercentage float64 `json:"aiUsagePercentage"`
		Round             int     `json:"round"`
	}

	// An answer lifted from the assistant reply is flagged as AI-assisted.
	w = postJSON(r, "/api/submit", gin.H{"sessionId": s.ID, "answer": "use the brick as a doorstop"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.AIAssisted)
	assert.Greater(t, resp.AIUsagePercentage, 0.0)
	assert.Equal(t, 0, resp.Round)

	// An original answer closing the round counts as an independent
	// attempt and advances the round.
	w = postJSON(r, "/api/submit", gin.H{"sessionId": s.ID, "answer": "grind it into pigment", "roundComplete": true})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.AIAssisted)
	assert.Equal(t, 1, resp.Round)

	record := s.Complete(context.Background(), session.CompleteRequest{})
	assert.Greater(t, record.AIUsagePercentage, 0.0)
	assert.Equal(t, 1, record.IndependentAttempts)
	require.Len(t, record.QueriesPerRound, 1)
	assert.Equal(t, int64(1), record.QueriesPerRound[0])
}

func TestSubmitUnknownSession(t *testing.T) {
	r, _ := testRouter(t, &stubChat{})
	w := postJSON(r, "/api/submit", gin.H{"sessionId": "nope", "answer": "anything"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompletionDetailRejectsBadID(t *testing.T) {
	r, _ := testRouter(t, &stubChat{})
	req := httptest.NewRequest(http.MethodGet, "/research/completions/not-a-number", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionEndRemovesFromRegistry(t *testing.T) {
	r, registry := testRouter(t, &stubChat{})
	s := session.New("subj-1", telemetry.TaskAlternateUses, session.Options{})
	registry.Add(s)

	req := httptest.NewRequest(http.MethodDelete, "/api/session/"+s.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, ok := registry.Get(s.ID)
	assert.False(t, ok)
}
