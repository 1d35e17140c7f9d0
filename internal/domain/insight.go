package domain

import (
	"context"
	"time"
)

// Insight is the cached AI analysis of a conversation, keyed by the
// conversation key and regenerated on demand.
type Insight struct {
	ConversationKey string    `json:"conversationKey"`
	Summary         string    `json:"summary"`
	Sentiment       string    `json:"sentiment"`
	MessageID       int64     `json:"messageId"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// InsightRepository defines the contract for insight storage.
type InsightRepository interface {
	Upsert(ctx context.Context, insight *Insight) (*Insight, error)
	GetByConversationKey(ctx context.Context, conversationKey string) (*Insight, error)
}
