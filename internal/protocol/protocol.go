package protocol

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeHello is sent by the server immediately after a client connects
	TypeHello MessageType = "hello"

	// TypeState carries an indicator state snapshot
	TypeState MessageType = "state"

	// TypePing can be used for application-level heartbeats if needed
	TypePing MessageType = "ping"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// HelloPayload is the payload for TypeHello
type HelloPayload struct {
	App     string `json:"app"`
	Version string `json:"version"`
}

// StatePayload is the payload for TypeState. It mirrors the indicator
// snapshot: per-button visibility plus the last known pointer position.
type StatePayload struct {
	Primary   bool `json:"primary"`
	Secondary bool `json:"secondary"`
	X         int  `json:"x"`
	Y         int  `json:"y"`
}
