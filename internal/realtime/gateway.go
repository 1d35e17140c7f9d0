package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Gateway drives the per-connection lifecycle: Connected (no identity bound),
// Identified (after register_socket), Closed (after disconnect). It is the
// single entry point for inbound transport events; each event is processed
// as one atomic unit of work against the registry, broadcaster and relay.
type Gateway struct {
	registry    *Registry
	broadcaster *Broadcaster
	relay       *Relay
	sender      Sender
	logger      *slog.Logger
}

// NewGateway wires the lifecycle manager over the core components.
func NewGateway(registry *Registry, broadcaster *Broadcaster, relay *Relay, sender Sender) *Gateway {
	return &Gateway{
		registry:    registry,
		broadcaster: broadcaster,
		relay:       relay,
		sender:      sender,
		logger:      slog.Default().With("component", "gateway"),
	}
}

// HandleConnect is invoked when a transport connection opens. No identity is
// bound yet; the connection stays invisible to peers until it registers.
func (g *Gateway) HandleConnect(connID string) {
	g.logger.Info("Client connected", "conn_id", connID)
}

// HandleMessage dispatches one inbound frame. Failures are local to the
// event and reported back only to the originating connection.
func (g *Gateway) HandleMessage(ctx context.Context, connID string, payload []byte) {
	var frame Frame
	if err := json.Unmarshal(payload, &frame); err != nil {
		g.logger.Warn("Malformed frame", "conn_id", connID, "error", err)
		g.sendError(connID, "malformed event payload")
		return
	}

	switch frame.Event {
	case EventRegisterSocket:
		g.handleRegister(ctx, connID, frame.Data)
	case EventSendMessage:
		g.handleSend(ctx, connID, frame.Data)
	default:
		g.logger.Warn("Unknown event", "conn_id", connID, "event", frame.Event)
		g.sendError(connID, "unknown event: "+frame.Event)
	}
}

// HandleDisconnect is invoked when a transport connection closes. If an
// identity was bound it is removed from the registry and announced offline;
// a connection that never registered disappears silently.
func (g *Gateway) HandleDisconnect(ctx context.Context, connID string) {
	userID, ok := g.registry.UnregisterConnection(connID)
	if !ok {
		g.logger.Info("Client disconnected before registering", "conn_id", connID)
		return
	}

	g.logger.Info("Client disconnected", "conn_id", connID, "user_id", userID)
	g.broadcaster.AnnounceOffline(ctx, userID)
}

func (g *Gateway) handleRegister(ctx context.Context, connID string, data json.RawMessage) {
	var userID int64
	if err := json.Unmarshal(data, &userID); err != nil || userID <= 0 {
		g.logger.Warn("Invalid register_socket payload", "conn_id", connID, "payload", string(data))
		g.sendError(connID, "register_socket requires a user id")
		return
	}

	g.registry.Register(userID, connID)
	g.logger.Info("User registered", "user_id", userID, "conn_id", connID)
	g.broadcaster.AnnounceOnline(ctx, userID)
}

func (g *Gateway) handleSend(ctx context.Context, connID string, data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.logger.Warn("Invalid send_message payload", "conn_id", connID, "error", err)
		g.sendError(connID, "malformed send_message payload")
		return
	}
	if payload.SenderID <= 0 || payload.ReceiverID <= 0 || payload.Text == "" {
		g.sendError(connID, "send_message requires senderId, receiverId and text")
		return
	}

	if err := g.relay.Relay(ctx, payload.SenderID, payload.ReceiverID, payload.Text); err != nil {
		g.logger.Error("Relay failed", "conn_id", connID, "sender_id", payload.SenderID, "error", err)
		g.sendError(connID, "message could not be delivered")
	}
}

func (g *Gateway) sendError(connID, message string) {
	payload, err := EncodeFrame(EventError, ErrorPayload{Message: message})
	if err != nil {
		g.logger.Error("Failed to encode error frame", "error", err)
		return
	}
	g.sender.Send(connID, payload)
}
