package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants for the client-server protocol.
const (
	// Client to server messages
	MessageTypeCreate       MessageType = "create"
	MessageTypeJoin         MessageType = "join"
	MessageTypeStateRequest MessageType = "state_request"
	MessageTypeCommand      MessageType = "command"

	// Server to client messages
	MessageTypeCreated MessageType = "created"
	MessageTypeJoined  MessageType = "joined"
	MessageTypeUpdate  MessageType = "update"
	MessageTypeError   MessageType = "error"
)

// Actions carried by command payloads.
const (
	ActionRoll  = "roll"
	ActionScore = "score"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
