package database

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

func TestUserRow_ToDomain_KeepsPasswordHash(t *testing.T) {
	row := userRow{
		ID:       3,
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHQ$aGFzaGhhc2g",
	}

	user := row.toDomain()
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, row.Password, user.Password)
}

// The SDK's CBOR decoders honor json tags, and domain.User carries
// `json:"-"` on Password to keep the hash out of API responses. Decoding
// query results must therefore go through userRow, which round-trips the
// password column intact under both codecs the SDK ships.
func TestUserRow_CborDecodePreservesPassword(t *testing.T) {
	record := map[string]any{
		"id":       int64(3),
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHQ$aGFzaGhhc2g",
	}

	t.Run("fxamacker codec", func(t *testing.T) {
		var m models.CborMarshaler
		data, err := m.Marshal(record)
		require.NoError(t, err)

		var um models.CborUnmarshaler
		var row userRow
		require.NoError(t, um.Unmarshal(data, &row))
		assert.Equal(t, record["password"], row.Password)
		assert.Equal(t, "Alice", row.Name)
	})

	t.Run("surrealcbor codec", func(t *testing.T) {
		codec := surrealcbor.New()
		data, err := codec.Marshal(record)
		require.NoError(t, err)

		var row userRow
		require.NoError(t, codec.Unmarshal(data, &row))
		assert.Equal(t, record["password"], row.Password)
		assert.Equal(t, "Alice", row.Name)
	})
}

func TestIsUniqueIndexViolation(t *testing.T) {
	dup := errors.New("Database index `user_email_unique` already contains 'alice@example.com', with record `user:3`")
	assert.True(t, isUniqueIndexViolation(dup))

	assert.False(t, isUniqueIndexViolation(nil))
	assert.False(t, isUniqueIndexViolation(errors.New("connection refused")))
}

func TestMessageRow_ToDomain(t *testing.T) {
	row := messageRow{
		ID:              7,
		SenderID:        1,
		ReceiverID:      2,
		Text:            "hi",
		Timestamp:       "2026-03-01T09:30:00.123456789Z",
		ConversationKey: "conv_1_2",
	}

	msg, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.ID)
	assert.Equal(t, "conv_1_2", msg.ConversationKey)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC), msg.Timestamp)
}

func TestMessageRow_ToDomain_BadTimestamp(t *testing.T) {
	row := messageRow{ID: 7, Timestamp: "yesterday-ish"}

	_, err := row.toDomain()
	assert.Error(t, err)
}

func TestInsightRow_ToDomain(t *testing.T) {
	row := insightRow{
		ConversationKey: "conv_1_2",
		Summary:         "A quick, decisive communication about task completion.",
		Sentiment:       "Neutral",
		MessageID:       12,
		GeneratedAt:     "2026-03-01T10:00:00Z",
	}

	insight, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, int64(12), insight.MessageID)
	assert.Equal(t, "Neutral", insight.Sentiment)
	assert.False(t, insight.GeneratedAt.IsZero())
}
