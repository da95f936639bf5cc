// Package channel implements the command/event channel boundary between
// the embedding application layer and mediakit's playback controllers.
// The application invokes methods on a named channel and subscribes to
// event channels; every payload crosses a codec boundary so that in-process
// and out-of-process embedders observe identical wire semantics.
package channel

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageCodec encodes and decodes messages for channel communication.
type MessageCodec interface {
	// Encode converts a Go value to bytes for transmission.
	Encode(value any) ([]byte, error)

	// Decode converts received bytes to a Go value.
	Decode(data []byte) (any, error)
}

// JSONCodec implements MessageCodec using JSON encoding.
// JSON prioritizes interoperability and minimal embedder dependencies.
type JSONCodec struct{}

// Encode serializes the value to JSON bytes.
func (c JSONCodec) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Decode deserializes JSON bytes to a Go value.
func (c JSONCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DecodeInto deserializes JSON bytes into a specific type.
func (c JSONCodec) DecodeInto(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// DefaultCodec is the codec used by channels.
var DefaultCodec MessageCodec = JSONCodec{}

// Standard errors for channel operations.
var (
	// ErrChannelNotFound indicates the requested channel does not exist.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrMethodNotFound indicates the method is not implemented by the
	// channel's handler.
	ErrMethodNotFound = errors.New("method not implemented")

	// ErrInvalidArguments indicates the arguments passed to the method
	// were invalid.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrInstanceNotFound indicates no controller instance exists for the
	// given instance id.
	ErrInstanceNotFound = errors.New("player instance not found")
)

// ChannelError represents a structured error crossing the channel boundary.
type ChannelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewChannelError creates a ChannelError with the given code and message.
func NewChannelError(code, message string) *ChannelError {
	return &ChannelError{Code: code, Message: message}
}

func (e *ChannelError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
