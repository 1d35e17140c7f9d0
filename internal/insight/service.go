package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nfrund/commhub/internal/domain"
)

// Service generates and serves cached conversation insights.
type Service struct {
	messages domain.MessageRepository
	insights domain.InsightRepository
	analyzer Analyzer
	logger   *slog.Logger
}

// NewService creates an insight Service over the given stores and analyzer.
func NewService(messages domain.MessageRepository, insights domain.InsightRepository, analyzer Analyzer) *Service {
	return &Service{
		messages: messages,
		insights: insights,
		analyzer: analyzer,
		logger:   slog.Default().With("service", "insight"),
	}
}

// Generate analyzes the conversation between two users and upserts the
// result keyed by the conversation key. An empty conversation yields
// domain.ErrNotFound.
func (s *Service) Generate(ctx context.Context, currentUserID, targetUserID int64) (*domain.Insight, error) {
	key := domain.ConversationKey(currentUserID, targetUserID)

	conversation, err := s.messages.FetchConversation(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation %s: %w", key, err)
	}
	if len(conversation) == 0 {
		return nil, domain.ErrNotFound
	}

	result := s.analyzer.Analyze(transcript(conversation))

	insight := &domain.Insight{
		ConversationKey: key,
		Summary:         result.Summary,
		Sentiment:       result.Sentiment,
		MessageID:       conversation[len(conversation)-1].ID,
		GeneratedAt:     time.Now().UTC(),
	}

	saved, err := s.insights.Upsert(ctx, insight)
	if err != nil {
		return nil, fmt.Errorf("save insight %s: %w", key, err)
	}

	s.logger.Info("Insight generated", "conversation_key", key, "sentiment", saved.Sentiment)
	return saved, nil
}

// Get returns the cached insight for the conversation between two users, or
// domain.ErrNotFound if none was generated yet.
func (s *Service) Get(ctx context.Context, currentUserID, targetUserID int64) (*domain.Insight, error) {
	key := domain.ConversationKey(currentUserID, targetUserID)

	insight, err := s.insights.GetByConversationKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch insight %s: %w", key, err)
	}
	if insight == nil {
		return nil, domain.ErrNotFound
	}
	return insight, nil
}

// transcript renders the conversation the way the analyzer expects it:
// one "Name: text" line per message.
func transcript(conversation []domain.EnrichedMessage) string {
	lines := make([]string, 0, len(conversation))
	for _, msg := range conversation {
		lines = append(lines, msg.Sender.Name+": "+msg.Text)
	}
	return strings.Join(lines, "\n")
}
