package realtime

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/nfrund/commhub/internal/pubsub"
)

// Broadcaster announces presence transitions to all connected clients.
// Announcements are best-effort and transient: no acknowledgment, no retry,
// no persistence. A client that misses one reconciles via the roster fetch.
type Broadcaster struct {
	publisher pubsub.Publisher
	logger    *slog.Logger
}

// NewBroadcaster creates a Broadcaster publishing on the presence topic.
func NewBroadcaster(publisher pubsub.Publisher) *Broadcaster {
	return &Broadcaster{
		publisher: publisher,
		logger:    slog.Default().With("component", "broadcaster"),
	}
}

// AnnounceOnline pushes a user_online event to all currently connected clients.
func (b *Broadcaster) AnnounceOnline(ctx context.Context, userID int64) {
	b.announce(ctx, EventUserOnline, userID)
}

// AnnounceOffline pushes a user_offline event to all currently connected clients.
func (b *Broadcaster) AnnounceOffline(ctx context.Context, userID int64) {
	b.announce(ctx, EventUserOffline, userID)
}

func (b *Broadcaster) announce(ctx context.Context, event string, userID int64) {
	payload, err := EncodeFrame(event, userID)
	if err != nil {
		b.logger.Error("Failed to encode presence frame", "event", event, "user_id", userID, "error", err)
		return
	}

	msg := pubsub.Message{
		Topic:   TopicPresence,
		UserID:  strconv.FormatInt(userID, 10),
		Payload: payload,
	}
	if err := b.publisher.Publish(ctx, msg); err != nil {
		b.logger.Error("Failed to publish presence announcement", "event", event, "user_id", userID, "error", err)
	}
}
