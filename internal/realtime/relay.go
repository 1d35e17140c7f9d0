package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/commhub/internal/domain"
)

// Sender is the transport-side primitive that delivers a payload to a single
// live connection. Delivery is fire-and-forget; a connection that has gone
// away since the registry lookup simply drops the payload.
type Sender interface {
	Send(connID string, payload []byte)
}

// Relay persists an inbound message and pushes the enriched record to the
// online participants. Delivery is at-most-once per participant and
// best-effort: there is no queue and no redelivery. Offline participants
// recover the message via the persisted-history fetch.
type Relay struct {
	store    domain.MessageRepository
	registry *Registry
	sender   Sender
	logger   *slog.Logger
}

// NewRelay creates a Relay over the given store, registry and transport.
func NewRelay(store domain.MessageRepository, registry *Registry, sender Sender) *Relay {
	return &Relay{
		store:    store,
		registry: registry,
		sender:   sender,
		logger:   slog.Default().With("component", "relay"),
	}
}

// Relay persists the message and pushes the enriched record to the sender's
// and receiver's live connections if present. If persistence fails, no
// delivery is attempted and the failure surfaces to the caller.
func (r *Relay) Relay(ctx context.Context, senderID, receiverID int64, text string) error {
	key := domain.ConversationKey(senderID, receiverID)

	created, err := r.store.Create(ctx, senderID, receiverID, text, key)
	if err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	// Re-fetch the enriched record so the real-time payload matches what the
	// history fetch returns. A record vanishing between create and re-fetch
	// aborts the whole delivery: the payload contract requires the enriched form.
	enriched, err := r.store.FetchByID(ctx, created.ID)
	if err != nil {
		return fmt.Errorf("fetch enriched message %d: %w", created.ID, err)
	}
	if enriched == nil {
		return fmt.Errorf("fetch enriched message %d: %w", created.ID, domain.ErrNotFound)
	}

	payload, err := EncodeFrame(EventNewMessage, enriched)
	if err != nil {
		return fmt.Errorf("encode message frame: %w", err)
	}

	senderConn, senderOnline := r.registry.Lookup(senderID)
	if senderOnline {
		r.sender.Send(senderConn, payload)
	}

	receiverConn, receiverOnline := r.registry.Lookup(receiverID)
	if receiverOnline && receiverConn != senderConn {
		r.sender.Send(receiverConn, payload)
	}

	if !receiverOnline {
		r.logger.Debug("Receiver offline, message persisted only",
			"message_id", created.ID, "receiver_id", receiverID)
	}

	return nil
}
