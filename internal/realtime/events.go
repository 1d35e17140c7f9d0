package realtime

import "encoding/json"

// Wire events exchanged with clients over the WebSocket connection.
const (
	EventRegisterSocket = "register_socket"
	EventSendMessage    = "send_message"
	EventNewMessage     = "new_message"
	EventUserOnline     = "user_online"
	EventUserOffline    = "user_offline"
	EventError          = "error"
)

// TopicPresence is the pub/sub topic carrying presence announcement frames.
// The WebSocket bridge subscribes to it and fans each frame out to every
// connected client.
const TopicPresence = "chat.presence"

// Frame is the envelope for every event on the wire, in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessagePayload is the client payload of a send_message event.
type SendMessagePayload struct {
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	Text       string `json:"text"`
}

// ErrorPayload is the server payload of an error event, reported only to the
// connection whose inbound event failed.
type ErrorPayload struct {
	Message string `json:"message"`
}

// EncodeFrame marshals an event envelope ready to be written to a connection.
func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}
