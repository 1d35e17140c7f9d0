package domain

import (
	"context"
	"time"
)

// Message is a persisted chat message. Created once at send time and
// immutable thereafter.
type Message struct {
	ID              int64     `json:"id"`
	SenderID        int64     `json:"senderId"`
	ReceiverID      int64     `json:"receiverId"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	ConversationKey string    `json:"conversationKey"`
}

// EnrichedMessage is a message joined with the display metadata of its
// participants. The real-time push and the history fetch both return this
// form so UI rendering is consistent regardless of retrieval path.
type EnrichedMessage struct {
	Message
	Sender   UserRef `json:"sender"`
	Receiver UserRef `json:"receiver"`
}

// MessageRepository defines the contract for message storage.
type MessageRepository interface {
	Create(ctx context.Context, senderID, receiverID int64, text, conversationKey string) (*Message, error)
	FetchByID(ctx context.Context, id int64) (*EnrichedMessage, error)
	FetchConversation(ctx context.Context, conversationKey string) ([]EnrichedMessage, error)
	SearchConversation(ctx context.Context, conversationKey, query string) ([]EnrichedMessage, error)
}
