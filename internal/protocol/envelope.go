package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType is the hub frame kind.
type MessageType int

// Hub frame kinds.
const (
	MessageTypeInvocation MessageType = 1
	MessageTypeCompletion MessageType = 3
	MessageTypePing       MessageType = 6
	MessageTypeClose      MessageType = 7
)

func (mt MessageType) String() string {
	switch mt {
	case MessageTypeInvocation:
		return "invocation"
	case MessageTypeCompletion:
		return "completion"
	case MessageTypePing:
		return "ping"
	case MessageTypeClose:
		return "close"
	default:
		return fmt.Sprintf("MessageType(%d)", int(mt))
	}
}

var (
	ErrUnknownNotification = errors.New("unknown notification")
	ErrArgumentCount       = errors.New("not enough arguments")
)

// Envelope is one websocket frame. Server notifications are invocations
// without an invocation id; client calls carry one and are answered by a
// completion with the same id.
type Envelope struct {
	Type         MessageType       `json:"type"`
	InvocationID string            `json:"invocationId,omitempty"`
	Target       string            `json:"target,omitempty"`
	Arguments    []json.RawMessage `json:"arguments,omitempty"`
	Seq          int64             `json:"seq,omitempty"`
	Result       Status            `json:"result,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// NewNotification builds a server to client notification frame.
func NewNotification(target string, seq int64, args ...any) (*Envelope, error) {
	raw, err := marshalArgs(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", target, err)
	}
	return &Envelope{Type: MessageTypeInvocation, Target: target, Arguments: raw, Seq: seq}, nil
}

// NewInvocation builds a client to server call frame.
func NewInvocation(id string, method Method, args ...any) (*Envelope, error) {
	raw, err := marshalArgs(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return &Envelope{Type: MessageTypeInvocation, InvocationID: id, Target: string(method), Arguments: raw}, nil
}

// NewCompletion answers an invocation.
func NewCompletion(id string, status Status) *Envelope {
	return &Envelope{Type: MessageTypeCompletion, InvocationID: id, Result: status}
}

// IsNotification reports whether the frame is a server push.
func (e *Envelope) IsNotification() bool {
	return e.Type == MessageTypeInvocation && e.InvocationID == ""
}

func marshalArgs(args []any) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		raw[i] = b
	}
	return raw, nil
}

// unpack decodes positional arguments into dst in order. Trailing arguments
// beyond dst are ignored.
func unpack(args []json.RawMessage, dst ...any) error {
	if len(args) < len(dst) {
		return fmt.Errorf("%w: want %d, got %d", ErrArgumentCount, len(dst), len(args))
	}
	for i, d := range dst {
		if err := json.Unmarshal(args[i], d); err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
	}
	return nil
}
