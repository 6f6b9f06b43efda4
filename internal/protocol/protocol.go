// Package protocol defines the typed websocket messages exchanged between
// clients and the session controller. Every message carries a "type"
// discriminator; unknown types are rejected with an error event instead of
// closing the connection.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/meetingnexus/backend/pkg/graph"

	"github.com/go-playground/validator"
)

// Inbound message types (client -> controller).
const (
	TypeTranscript   = "transcript"
	TypeStartMeeting = "start_meeting"
	TypeStopMeeting  = "stop_meeting"
	TypeClearGraph   = "clear_graph"
)

// Outbound message types (controller -> subscribers).
const (
	TypeMeetingState     = "meeting_state"
	TypeTranscriptUpdate = "transcript_update"
	TypeGraphUpdate      = "graph_update"
	TypeMeetingStarted   = "meeting_started"
	TypeMeetingStopped   = "meeting_stopped"
	TypeError            = "error"
)

var validate = validator.New()

// Timestamp carries the capture time of a transcript segment verbatim. The
// transcription collaborator sends an ISO-8601 string; numeric epoch values
// from other clients are accepted too and kept as their literal text. The
// server never interprets it, it is display metadata for viewers.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Timestamp(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Timestamp(n.String())
		return nil
	}

	return fmt.Errorf("timestamp must be a string or number")
}

// InboundMessage is the envelope for every client message. Transcript fields
// are only meaningful when Type is TypeTranscript.
type InboundMessage struct {
	Type       string    `json:"type" validate:"required"`
	Speaker    string    `json:"speaker"`
	Text       string    `json:"text"`
	IsFinal    bool      `json:"is_final"`
	Confidence *float64  `json:"confidence,omitempty"`
	Timestamp  Timestamp `json:"timestamp"`
}

// Decode parses and validates a raw client message.
func Decode(data []byte) (InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return InboundMessage{}, fmt.Errorf("invalid message: %w", err)
	}
	if err := validate.Struct(msg); err != nil {
		return InboundMessage{}, fmt.Errorf("invalid message: %w", err)
	}

	switch msg.Type {
	case TypeTranscript:
		if msg.Speaker == "" {
			return InboundMessage{}, fmt.Errorf("transcript message without speaker")
		}
	case TypeStartMeeting, TypeStopMeeting, TypeClearGraph:
	default:
		return InboundMessage{}, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return msg, nil
}

// MeetingState is the full session snapshot sent once to every new
// subscriber. A client receiving it must replace its local state entirely.
type MeetingState struct {
	Type         string         `json:"type"`
	IsActive     bool           `json:"isActive"`
	Graph        graph.Snapshot `json:"graph"`
	Participants []string       `json:"participants"`
}

func NewMeetingState(isActive bool, snapshot graph.Snapshot, participants []string) MeetingState {
	return MeetingState{
		Type:         TypeMeetingState,
		IsActive:     isActive,
		Graph:        snapshot,
		Participants: participants,
	}
}

// TranscriptUpdate mirrors an inbound transcript to all subscribers.
type TranscriptUpdate struct {
	Type       string    `json:"type"`
	Speaker    string    `json:"speaker"`
	Text       string    `json:"text"`
	IsFinal    bool      `json:"is_final"`
	Confidence *float64  `json:"confidence,omitempty"`
	Timestamp  Timestamp `json:"timestamp"`
}

func NewTranscriptUpdate(msg InboundMessage) TranscriptUpdate {
	return TranscriptUpdate{
		Type:       TypeTranscriptUpdate,
		Speaker:    msg.Speaker,
		Text:       msg.Text,
		IsFinal:    msg.IsFinal,
		Confidence: msg.Confidence,
		Timestamp:  msg.Timestamp,
	}
}

// GraphUpdate carries the assertions just merged, not the full graph. Clients
// apply them incrementally with the same merge semantics as the server.
type GraphUpdate struct {
	Type string            `json:"type"`
	Data []graph.Assertion `json:"data"`
}

func NewGraphUpdate(applied []graph.Assertion) GraphUpdate {
	if applied == nil {
		applied = []graph.Assertion{}
	}
	return GraphUpdate{Type: TypeGraphUpdate, Data: applied}
}

// LifecycleEvent is a bare type-only echo of a lifecycle transition.
type LifecycleEvent struct {
	Type string `json:"type"`
}

func NewMeetingStarted() LifecycleEvent { return LifecycleEvent{Type: TypeMeetingStarted} }
func NewMeetingStopped() LifecycleEvent { return LifecycleEvent{Type: TypeMeetingStopped} }
func NewClearGraph() LifecycleEvent     { return LifecycleEvent{Type: TypeClearGraph} }

// ErrorMessage reports a malformed message or internal failure to a single
// connection. It is never fatal to the connection.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}

// Encode marshals an outbound message for the wire.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}
