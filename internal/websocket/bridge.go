package websocket

import (
	"context"
	"log/slog"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/commhub/internal/pubsub"
	"github.com/nfrund/commhub/internal/realtime"
)

// EventHandler receives connection lifecycle events and inbound frames.
// The realtime gateway implements it.
type EventHandler interface {
	HandleConnect(connID string)
	HandleMessage(ctx context.Context, connID string, payload []byte)
	HandleDisconnect(ctx context.Context, connID string)
}

// directMessage is a payload destined for a single connection.
type directMessage struct {
	connID  string
	payload []byte
}

// Bridge manages all WebSocket connections and routes payloads between
// connected clients and the rest of the system. It implements
// realtime.Sender for point-to-point delivery.
type Bridge struct {
	handler EventHandler

	// clients is keyed by connection ID. User identity lives in the
	// realtime registry, not here.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan directMessage
}

// NewBridge initializes a new Bridge, ready to handle connections.
func NewBridge() *Bridge {
	return &Bridge{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		direct:     make(chan directMessage, 64),
	}
}

// SetHandler wires the event handler. It must be called before Run; the
// bridge and the gateway reference each other, so one side is set late.
func (b *Bridge) SetHandler(h EventHandler) {
	b.handler = h
}

// Run starts the main bridge goroutine for managing client lifecycle and
// payload routing. It blocks until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	slog.Info("WebSocket bridge runner started")
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-b.register:
			b.clients[client.ID] = client
			slog.Info("Client connected to bridge", "connID", client.ID)
			b.handler.HandleConnect(client.ID)

		case client := <-b.unregister:
			if _, ok := b.clients[client.ID]; ok {
				delete(b.clients, client.ID)
				close(client.send)
				slog.Info("Client disconnected from bridge", "connID", client.ID)
				b.handler.HandleDisconnect(ctx, client.ID)
			}

		case payload := <-b.broadcast:
			for _, client := range b.clients {
				select {
				case client.send <- payload:
				default:
					// Drop the payload if the client's send buffer is full.
					slog.Warn("Client send channel full, dropping broadcast", "connID", client.ID)
				}
			}

		case msg := <-b.direct:
			client, ok := b.clients[msg.connID]
			if !ok {
				// The connection is already gone; deliveries to it are
				// best-effort.
				continue
			}
			select {
			case client.send <- msg.payload:
			default:
				slog.Warn("Client send channel full, dropping direct message", "connID", client.ID)
			}
		}
	}
}

// Send delivers a payload to a single connection. It satisfies
// realtime.Sender. Unknown connection IDs are silently ignored.
func (b *Bridge) Send(connID string, payload []byte) {
	b.direct <- directMessage{connID: connID, payload: payload}
}

// Broadcast sends a payload to every open connection.
func (b *Bridge) Broadcast(payload []byte) {
	b.broadcast <- payload
}

// SubscribePresence fans presence events from the message bus out to all
// connected clients.
func (b *Bridge) SubscribePresence(ctx context.Context, sub pubsub.Subscriber) error {
	return sub.Subscribe(ctx, realtime.TopicPresence, func(ctx context.Context, msg pubsub.Message) error {
		b.Broadcast(msg.Payload)
		return nil
	})
}

// Handler returns an echo.HandlerFunc that upgrades requests to WebSocket
// connections and hands them to the bridge.
func (b *Bridge) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Origin is enforced by the CORS middleware.
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		client := &Client{
			ID:     uuid.NewString(),
			conn:   conn,
			send:   make(chan []byte, 256),
			bridge: b,
		}
		b.register <- client

		go client.writePump()
		go client.readPump()

		return nil
	}
}

var _ realtime.Sender = (*Bridge)(nil)
