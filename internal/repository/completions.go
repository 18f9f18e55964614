package repository

import (
	"context"

	"github.com/agrimsachdeva/creativity-assesment/internal/database"
	"github.com/agrimsachdeva/creativity-assesment/internal/models"

	"github.com/lib/pq"
)

// SaveCompletion persists one finished round.
func SaveCompletion(ctx context.Context, record *models.CompletionRecord) error {
	return database.DB.WithContext(ctx).Create(record).Error
}

// ListCompletions returns a participant's finished rounds, newest first.
func ListCompletions(ctx context.Context, participantID string) ([]models.CompletionRecord, error) {
	var records []models.CompletionRecord
	err := database.DB.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("ended_at DESC").
		Find(&records).Error
	return records, err
}

// GetCompletion returns a single record by ID.
func GetCompletion(ctx context.Context, id uint) (models.CompletionRecord, error) {
	var record models.CompletionRecord
	err := database.DB.WithContext(ctx).First(&record, id).Error
	return record, err
}

// ListParticipants returns the distinct participant IDs with at least one
// finished round.
func ListParticipants(ctx context.Context) ([]string, error) {
	var ids []string
	err := database.DB.WithContext(ctx).
		Model(&models.CompletionRecord{}).
		Distinct("participant_id").
		Order("participant_id").
		Pluck("participant_id", &ids).Error
	return ids, err
}

// GetQueriesPerRound returns the stored per-round AI query counts for one
// session, or nil when the session never completed.
func GetQueriesPerRound(ctx context.Context, sessionID string) (pq.Int64Array, error) {
	var counts pq.Int64Array
	err := database.DB.WithContext(ctx).
		Model(&models.CompletionRecord{}).
		Where("session_id = ?", sessionID).
		Limit(1).
		Pluck("queries_per_round", &counts).Error
	return counts, err
}
