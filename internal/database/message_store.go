package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/commhub/internal/domain"
	"github.com/samber/lo"
	"github.com/surrealdb/surrealdb.go"
)

// messageFields projects a message record with its record id flattened.
const messageFields = "record::id(id) AS id, sender_id, receiver_id, text, timestamp, conversation_key"

// messageRow is the raw shape of a message record. Timestamps are stored as
// RFC3339 strings and parsed on the way out.
type messageRow struct {
	ID              int64  `json:"id"`
	SenderID        int64  `json:"sender_id"`
	ReceiverID      int64  `json:"receiver_id"`
	Text            string `json:"text"`
	Timestamp       string `json:"timestamp"`
	ConversationKey string `json:"conversation_key"`
}

func (r messageRow) toDomain() (domain.Message, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return domain.Message{}, fmt.Errorf("message %d has invalid timestamp %q: %w", r.ID, r.Timestamp, err)
	}
	return domain.Message{
		ID:              r.ID,
		SenderID:        r.SenderID,
		ReceiverID:      r.ReceiverID,
		Text:            r.Text,
		Timestamp:       ts,
		ConversationKey: r.ConversationKey,
	}, nil
}

// MessageStore encapsulates database operations for messages.
type MessageStore struct {
	db *surrealdb.DB
}

// NewMessageStore creates a new MessageStore.
func NewMessageStore(db *surrealdb.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Create persists a message with a sequence-assigned integer id and a
// server-assigned timestamp, and returns the created record.
func (s *MessageStore) Create(ctx context.Context, senderID, receiverID int64, text, conversationKey string) (*domain.Message, error) {
	query := `
		SELECT ` + messageFields + ` FROM (
			CREATE ONLY type::thing('message', (UPSERT ONLY seq:message SET value += 1).value) CONTENT {
				sender_id: $sender_id,
				receiver_id: $receiver_id,
				text: $text,
				timestamp: $timestamp,
				conversation_key: $conversation_key
			}
		)
	`
	params := map[string]any{
		"sender_id":        senderID,
		"receiver_id":      receiverID,
		"text":             text,
		"timestamp":        time.Now().UTC().Format(time.RFC3339Nano),
		"conversation_key": conversationKey,
	}

	row, err := QueryOne[messageRow](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("failed to create message: empty result")
	}

	msg, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FetchByID returns the enriched form of a single message, or nil, nil when
// the record does not exist.
func (s *MessageStore) FetchByID(ctx context.Context, id int64) (*domain.EnrichedMessage, error) {
	query := "SELECT " + messageFields + " FROM type::thing('message', $id)"
	params := map[string]any{"id": id}

	row, err := QueryOne[messageRow](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	enriched, err := s.enrich(ctx, []messageRow{*row})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// FetchConversation returns all messages of a conversation in timestamp
// order, enriched with participant display names.
func (s *MessageStore) FetchConversation(ctx context.Context, conversationKey string) ([]domain.EnrichedMessage, error) {
	query := "SELECT " + messageFields + " FROM message WHERE conversation_key = $key ORDER BY timestamp ASC"
	params := map[string]any{"key": conversationKey}

	rows, err := Query[messageRow](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return s.enrich(ctx, rows)
}

// SearchConversation returns the messages of a conversation whose text
// contains the query, case-insensitively, in timestamp order.
func (s *MessageStore) SearchConversation(ctx context.Context, conversationKey, query string) ([]domain.EnrichedMessage, error) {
	stmt := `
		SELECT ` + messageFields + ` FROM message
		WHERE conversation_key = $key
		AND string::contains(string::lowercase(text), string::lowercase($query))
		ORDER BY timestamp ASC
	`
	params := map[string]any{"key": conversationKey, "query": query}

	rows, err := Query[messageRow](ctx, s.db, stmt, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return s.enrich(ctx, rows)
}

// enrich joins participant display references onto raw message rows. A
// conversation has at most two participants, so the refs are fetched once
// and reused across the batch.
func (s *MessageStore) enrich(ctx context.Context, rows []messageRow) ([]domain.EnrichedMessage, error) {
	if len(rows) == 0 {
		return []domain.EnrichedMessage{}, nil
	}

	userIDs := lo.Uniq(lo.FlatMap(rows, func(r messageRow, _ int) []int64 {
		return []int64{r.SenderID, r.ReceiverID}
	}))

	refs := make(map[int64]domain.UserRef, len(userIDs))
	for _, id := range userIDs {
		ref, err := QueryOne[domain.UserRef](ctx, s.db, "SELECT record::id(id) AS id, name FROM type::thing('user', $id)", map[string]any{"id": id})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user %d: %w", id, err)
		}
		if ref == nil {
			// Participant account no longer exists; keep the id so the
			// message still renders.
			refs[id] = domain.UserRef{ID: id}
			continue
		}
		refs[id] = *ref
	}

	enriched := make([]domain.EnrichedMessage, 0, len(rows))
	for _, row := range rows {
		msg, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, domain.EnrichedMessage{
			Message:  msg,
			Sender:   refs[msg.SenderID],
			Receiver: refs[msg.ReceiverID],
		})
	}
	return enriched, nil
}
