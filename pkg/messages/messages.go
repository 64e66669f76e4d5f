package messages

import "encoding/json"

const (
	// MessageBufferSize represents the maximum size of a message read from a connection
	MessageBufferSize = 4096
	// MaxMessageSize is the largest envelope accepted once decompressed.
	MaxMessageSize = 64 * 1024
)

type MessageType uint8

// Message types
const (
	MessageTypeClientLogin MessageType = iota + 1
	MessageTypeClientPosition
	MessageTypeClientDeath
	MessageTypeClientCommand
	MessageTypeServerLoginSuccess
	MessageTypeServerLoginFailure
	MessageTypeServerChat
	MessageTypeServerTeleport
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeClientLogin:
		return "client_login"
	case MessageTypeClientPosition:
		return "client_position"
	case MessageTypeClientDeath:
		return "client_death"
	case MessageTypeClientCommand:
		return "client_command"
	case MessageTypeServerLoginSuccess:
		return "server_login_success"
	case MessageTypeServerLoginFailure:
		return "server_login_failure"
	case MessageTypeServerChat:
		return "server_chat"
	case MessageTypeServerTeleport:
		return "server_teleport"
	default:
		return "unknown"
	}
}

// Message represents a generic message for serialization/deserialization.
// UserID is empty for messages sent by the server.
type Message struct {
	UserID  string          `json:"userID"`
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ChatCategory selects how the host renders a chat line.
type ChatCategory string

const (
	ChatCategorySuccess ChatCategory = "success"
	ChatCategoryError   ChatCategory = "error"
	ChatCategoryWarning ChatCategory = "warning"
	ChatCategoryInfo    ChatCategory = "info"
)

type ClientLogin struct {
	UserID string `json:"user_id"`
	Token  string `json:"token,omitempty"`
}

type ClientPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClientDeath carries the avatar position at the moment it died.
type ClientDeath struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ClientCommand struct {
	Line string `json:"line"`
}

type ServerLoginSuccess struct {
	SessionID string `json:"session_id"`
}

type ServerLoginFailure struct {
	Reason string `json:"reason"`
}

type ServerChat struct {
	Category ChatCategory `json:"category"`
	Text     string       `json:"text"`
}

type ServerTeleport struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// New builds a Message with a JSON encoded payload.
func New(userID string, msgType MessageType, payload interface{}) (*Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		UserID:  userID,
		Type:    msgType,
		Payload: b,
	}, nil
}
