package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nfrund/commhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMessages struct {
	domain.MessageRepository
	conversation []domain.EnrichedMessage
	err          error
}

func (s *stubMessages) FetchConversation(ctx context.Context, key string) ([]domain.EnrichedMessage, error) {
	return s.conversation, s.err
}

type memInsights struct {
	byKey map[string]domain.Insight
}

func newMemInsights() *memInsights {
	return &memInsights{byKey: make(map[string]domain.Insight)}
}

func (m *memInsights) Upsert(ctx context.Context, insight *domain.Insight) (*domain.Insight, error) {
	m.byKey[insight.ConversationKey] = *insight
	saved := *insight
	return &saved, nil
}

func (m *memInsights) GetByConversationKey(ctx context.Context, key string) (*domain.Insight, error) {
	insight, ok := m.byKey[key]
	if !ok {
		return nil, nil
	}
	return &insight, nil
}

func enriched(id int64, senderName, text string) domain.EnrichedMessage {
	return domain.EnrichedMessage{
		Message: domain.Message{
			ID:              id,
			Text:            text,
			Timestamp:       time.Now().UTC(),
			ConversationKey: "conv_1_2",
		},
		Sender: domain.UserRef{Name: senderName},
	}
}

func TestService_GenerateUpsertsAndGetReturns(t *testing.T) {
	messages := &stubMessages{conversation: []domain.EnrichedMessage{
		enriched(10, "Alice", "shipping went great"),
		enriched(11, "Bob", "confirmed, success on all fronts"),
	}}
	insights := newMemInsights()
	svc := NewService(messages, insights, NewMockAnalyzer())

	generated, err := svc.Generate(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "conv_1_2", generated.ConversationKey)
	assert.Equal(t, SentimentPositive, generated.Sentiment)
	assert.Equal(t, int64(11), generated.MessageID)
	assert.False(t, generated.GeneratedAt.IsZero())

	got, err := svc.Get(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, generated.Summary, got.Summary)
}

func TestService_GenerateRegenerates(t *testing.T) {
	messages := &stubMessages{conversation: []domain.EnrichedMessage{
		enriched(10, "Alice", "there is a problem with the build"),
	}}
	insights := newMemInsights()
	svc := NewService(messages, insights, NewMockAnalyzer())

	first, err := svc.Generate(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, SentimentNegative, first.Sentiment)

	messages.conversation = append(messages.conversation, enriched(12, "Bob", "fixed, great success"))
	second, err := svc.Generate(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, SentimentPositive, second.Sentiment)
	assert.Equal(t, int64(12), second.MessageID)

	// The cache holds exactly one insight per conversation.
	assert.Len(t, insights.byKey, 1)
}

func TestService_GenerateEmptyConversation(t *testing.T) {
	svc := NewService(&stubMessages{}, newMemInsights(), NewMockAnalyzer())

	_, err := svc.Generate(context.Background(), 1, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_GenerateStoreFailure(t *testing.T) {
	messages := &stubMessages{err: errors.New("connection reset")}
	svc := NewService(messages, newMemInsights(), NewMockAnalyzer())

	_, err := svc.Generate(context.Background(), 1, 2)
	assert.Error(t, err)
}

func TestService_GetMissing(t *testing.T) {
	svc := NewService(&stubMessages{}, newMemInsights(), NewMockAnalyzer())

	_, err := svc.Get(context.Background(), 1, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
