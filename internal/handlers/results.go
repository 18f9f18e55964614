package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/agrimsachdeva/creativity-assesment/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ResultsHandler renders the researcher-facing telemetry charts.
type ResultsHandler struct {
	log *zap.Logger
}

func NewResultsHandler(log *zap.Logger) *ResultsHandler {
	return &ResultsHandler{log: log}
}

// ShowResults renders a timeline of one summary metric for a participant,
// plus a scatter of that metric against AI usage per round.
func (h *ResultsHandler) ShowResults(c *gin.Context) {
	participantID := c.Query("participant")
	task := c.DefaultQuery("task", "alternate-uses")
	metricKey := c.DefaultQuery("metric", "typing_speed")

	if participantID == "" {
		c.String(http.StatusBadRequest, "participant query parameter is required")
		return
	}
	if !repository.SummaryColumn(metricKey) {
		c.String(http.StatusBadRequest, "Invalid metric selected")
		return
	}

	timelineData, err := repository.GetTimelineData(c, participantID, task, metricKey)
	if err != nil {
		h.log.Error("Failed to get timeline data", zap.Error(err),
			zap.String("participantID", participantID), zap.String("metricKey", metricKey))
		c.String(http.StatusInternalServerError, "Failed to load timeline data")
		return
	}

	correlationData, err := repository.GetCorrelationData(c, participantID, task, metricKey, "ai_usage_percentage")
	if err != nil {
		h.log.Error("Failed to get correlation data", zap.Error(err),
			zap.String("participantID", participantID), zap.String("metricKey", metricKey))
		c.String(http.StatusInternalServerError, "Failed to load correlation data")
		return
	}

	metricLabel := strings.Title(strings.ReplaceAll(metricKey, "_", " "))

	page := components.NewPage()
	page.AddCharts(
		generateTimelineChart(timelineData, metricLabel),
		generateCorrelationChart(correlationData, metricLabel, "AI Usage %"),
	)

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(c.Writer); err != nil {
		h.log.Error("Failed to render results page", zap.Error(err))
	}
}

// ListCompletions returns a participant's stored rounds as JSON for export.
func (h *ResultsHandler) ListCompletions(c *gin.Context) {
	participantID := c.Param("participant")
	records, err := repository.ListCompletions(c, participantID)
	if err != nil {
		h.log.Error("Failed to list completions", zap.Error(err),
			zap.String("participantID", participantID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load completions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"completions": records})
}

// GetCompletion returns one stored round in full, including the raw
// telemetry and engagement payloads.
func (h *ResultsHandler) GetCompletion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid completion ID"})
		return
	}
	record, err := repository.GetCompletion(c, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown completion"})
			return
		}
		h.log.Error("Failed to load completion", zap.Error(err), zap.Uint64("id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load completion"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetSessionQueries returns the stored per-round AI query counts for one
// completed session.
func (h *ResultsHandler) GetSessionQueries(c *gin.Context) {
	sessionID := c.Param("session")
	counts, err := repository.GetQueriesPerRound(c, sessionID)
	if err != nil {
		h.log.Error("Failed to load per-round query counts", zap.Error(err),
			zap.String("sessionID", sessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load query counts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "queriesPerRound": counts})
}

// ListParticipants returns every participant with stored data.
func (h *ResultsHandler) ListParticipants(c *gin.Context) {
	ids, err := repository.ListParticipants(c)
	if err != nil {
		h.log.Error("Failed to list participants", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load participants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": ids})
}

func generateTimelineChart(data []repository.TimelineDataPoint, metricLabel string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Metric Across Completed Rounds",
			Subtitle: metricLabel,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	items := make([]opts.LineData, 0)
	for _, point := range data {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
	}

	line.AddSeries(metricLabel, items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

func generateCorrelationChart(data []repository.CorrelationDataPoint, xLabel, yLabel string) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Metric vs. AI Usage",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: xLabel,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: yLabel,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]opts.ScatterData, 0)
	for _, point := range data {
		items = append(items, opts.ScatterData{Value: []interface{}{point.XValue, point.YValue}})
	}

	scatter.AddSeries("Rounds", items)
	return scatter
}
