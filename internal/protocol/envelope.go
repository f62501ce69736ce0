package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message type constants.
const (
	TypeSimEvent          = "sim.event"
	TypeScenarioStarted   = "scenario.started"
	TypeScenarioCompleted = "scenario.completed"
)

// ValidMessageTypes lists all valid message types.
var ValidMessageTypes = []string{
	TypeSimEvent,
	TypeScenarioStarted,
	TypeScenarioCompleted,
}

// SchemaVersion is the current protocol version.
const SchemaVersion = "v1.0.0"

// Message is the top-level protocol message containing an envelope and payload.
type Message struct {
	Envelope Envelope        `json:"envelope"`
	Payload  json.RawMessage `json:"payload"`
}

// Envelope contains message metadata and routing information.
type Envelope struct {
	ID            string `json:"id"`
	Timestamp     int64  `json:"timestamp"`
	Source        Source `json:"source"`
	SchemaVersion string `json:"schema_version"`
	Type          string `json:"type"`
	CorrelationID string `json:"correlation_id,omitempty"`
	ReplyTo       string `json:"reply_to,omitempty"`
}

// Source identifies who published a message. For the simulator this is
// always the engine process itself; the fields survive from the wider
// envelope format in case a future multi-instance deployment needs to
// distinguish publishers on the same channel.
type Source struct {
	Service  string `json:"service"`
	Instance string `json:"instance"`
	Version  string `json:"version"`
}

// NewEnvelope creates a new envelope with a generated UUIDv4 and current UTC timestamp.
func NewEnvelope(source Source, msgType string) Envelope {
	return Envelope{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC().Unix(),
		Source:        source,
		SchemaVersion: SchemaVersion,
		Type:          msgType,
	}
}

// NewMessage builds a complete message with envelope and marshaled payload.
func NewMessage(source Source, msgType string, payload interface{}) (*Message, error) {
	env := NewEnvelope(source, msgType)

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	return &Message{
		Envelope: env,
		Payload:  json.RawMessage(payloadBytes),
	}, nil
}

// Parse unmarshals JSON bytes into a Message.
func Parse(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return &msg, nil
}
