package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// CompletionRecord is one finished round of a creativity task. The full
// transcript, task responses, engagement data and telemetry snapshot are
// stored as jsonb blobs; the columns alongside them are denormalized
// summary values so the researcher charts never have to unpack the blobs.
type CompletionRecord struct {
	ID            uint   `gorm:"primaryKey"`
	SessionID     string `gorm:"size:64;index"`
	ParticipantID string `gorm:"size:128;index"`
	Task          string `gorm:"size:40"`
	Round         int

	StartedAt  time.Time
	EndedAt    time.Time
	DurationMS int64

	Transcript    json.RawMessage `gorm:"type:jsonb"`
	TaskResponses json.RawMessage `gorm:"type:jsonb"`
	Engagement    json.RawMessage `gorm:"type:jsonb"`
	Telemetry     json.RawMessage `gorm:"type:jsonb"`

	// Summary columns.
	TotalKeystrokes     int
	BackspaceCount      int
	AverageTypingSpeed  float64
	TypingRhythm        float64
	TotalMessages       int
	AIUsagePercentage   float64
	AIResponsesCopied   int
	TotalAIQueries      int
	IndependentAttempts int
	AIFirstResort       bool
	AILastResort        bool
	TimeToFirstQueryMS  *int64
	QueriesPerRound     pq.Int64Array `gorm:"type:bigint[]"`

	CreatedAt time.Time
}

// TableName keeps the historical table name used by the study exports.
func (CompletionRecord) TableName() string { return "interactions" }
