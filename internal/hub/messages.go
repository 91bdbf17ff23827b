package hub

import "github.com/weiawesome/wes-io-social/pkg/pubsub"

// Message types from client.
const (
	MsgTypePing = "ping"
)

// Message types to client.
const (
	MsgTypePong         = "pong"
	MsgTypeError        = "error"
	MsgTypeNotification = pubsub.EventNotification
)

// Error codes
const (
	ErrCodeBadRequest = "BAD_REQUEST"
)

// Message is the envelope of every frame.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ErrorMessage reports a rejected client frame.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{Type: MsgTypeError, Code: code, Message: message}
}
