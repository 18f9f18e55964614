package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/agrimsachdeva/creativity-assesment/internal/database"
)

type TimelineDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type CorrelationDataPoint struct {
	XValue float64 `json:"xValue"`
	YValue float64 `json:"yValue"`
}

// summaryColumns maps researcher-facing metric keys onto the denormalized
// summary columns of the interactions table. The metric key arrives as a
// query parameter, so only whitelisted keys ever reach the SQL text.
var summaryColumns = map[string]string{
	"typing_speed":         "average_typing_speed",
	"typing_rhythm":        "typing_rhythm",
	"total_keystrokes":     "total_keystrokes",
	"backspace_count":      "backspace_count",
	"total_messages":       "total_messages",
	"ai_usage_percentage":  "ai_usage_percentage",
	"ai_responses_copied":  "ai_responses_copied",
	"total_ai_queries":     "total_ai_queries",
	"independent_attempts": "independent_attempts",
	"duration_ms":          "duration_ms",
}

// SummaryColumn reports whether a metric key is chartable.
func SummaryColumn(metricKey string) bool {
	_, ok := summaryColumns[metricKey]
	return ok
}

// GetTimelineData returns one participant's metric across their completed
// rounds of a task, oldest first.
func GetTimelineData(ctx context.Context, participantID, task, metricKey string) ([]TimelineDataPoint, error) {
	col, ok := summaryColumns[metricKey]
	if !ok {
		return nil, fmt.Errorf("unknown metric key %q", metricKey)
	}

	var data []TimelineDataPoint
	query := fmt.Sprintf(`
		SELECT ended_at AS date, %s::float AS value
		FROM interactions
		WHERE participant_id = ? AND task = ?
		ORDER BY ended_at;
	`, col)

	err := database.DB.WithContext(ctx).Raw(query, participantID, task).Scan(&data).Error
	return data, err
}

// GetCorrelationData pairs two summary metrics per completed round so the
// researcher can scatter, say, AI usage against typing speed.
func GetCorrelationData(ctx context.Context, participantID, task, xKey, yKey string) ([]CorrelationDataPoint, error) {
	xCol, ok := summaryColumns[xKey]
	if !ok {
		return nil, fmt.Errorf("unknown metric key %q", xKey)
	}
	yCol, ok := summaryColumns[yKey]
	if !ok {
		return nil, fmt.Errorf("unknown metric key %q", yKey)
	}

	var data []CorrelationDataPoint
	query := fmt.Sprintf(`
		SELECT %s::float AS x_value, %s::float AS y_value
		FROM interactions
		WHERE participant_id = ? AND task = ?;
	`, xCol, yCol)

	err := database.DB.WithContext(ctx).Raw(query, participantID, task).Scan(&data).Error
	return data, err
}
