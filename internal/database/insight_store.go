package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/commhub/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

const insightFields = "record::id(id) AS conversation_key, summary, sentiment, message_id, generated_at"

// insightRow is the raw shape of an insight record, keyed by the
// conversation key itself.
type insightRow struct {
	ConversationKey string `json:"conversation_key"`
	Summary         string `json:"summary"`
	Sentiment       string `json:"sentiment"`
	MessageID       int64  `json:"message_id"`
	GeneratedAt     string `json:"generated_at"`
}

func (r insightRow) toDomain() (domain.Insight, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.GeneratedAt)
	if err != nil {
		return domain.Insight{}, fmt.Errorf("insight %s has invalid generated_at %q: %w", r.ConversationKey, r.GeneratedAt, err)
	}
	return domain.Insight{
		ConversationKey: r.ConversationKey,
		Summary:         r.Summary,
		Sentiment:       r.Sentiment,
		MessageID:       r.MessageID,
		GeneratedAt:     ts,
	}, nil
}

// InsightStore encapsulates database operations for conversation insights.
type InsightStore struct {
	db *surrealdb.DB
}

// NewInsightStore creates a new InsightStore.
func NewInsightStore(db *surrealdb.DB) *InsightStore {
	return &InsightStore{db: db}
}

// Upsert creates or replaces the insight for a conversation. Using the
// conversation key as the record id makes regeneration a plain overwrite.
func (s *InsightStore) Upsert(ctx context.Context, insight *domain.Insight) (*domain.Insight, error) {
	query := `
		SELECT ` + insightFields + ` FROM (
			UPSERT ONLY type::thing('insight', $key) CONTENT {
				summary: $summary,
				sentiment: $sentiment,
				message_id: $message_id,
				generated_at: $generated_at
			}
		)
	`
	params := map[string]any{
		"key":          insight.ConversationKey,
		"summary":      insight.Summary,
		"sentiment":    insight.Sentiment,
		"message_id":   insight.MessageID,
		"generated_at": insight.GeneratedAt.UTC().Format(time.RFC3339Nano),
	}

	row, err := QueryOne[insightRow](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert insight: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("failed to upsert insight: empty result")
	}

	saved, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetByConversationKey returns the cached insight for a conversation, or
// nil, nil when none exists.
func (s *InsightStore) GetByConversationKey(ctx context.Context, conversationKey string) (*domain.Insight, error) {
	query := "SELECT " + insightFields + " FROM type::thing('insight', $key)"
	params := map[string]any{"key": conversationKey}

	row, err := QueryOne[insightRow](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	insight, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &insight, nil
}
