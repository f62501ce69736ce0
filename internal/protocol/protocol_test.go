package protocol

import (
	"encoding/json"
	"testing"
)

func testSource() Source {
	return Source{
		Service:  "pwrsim",
		Instance: "engine-01",
		Version:  "1.0.0",
	}
}

func TestNewEnvelope(t *testing.T) {
	src := testSource()
	env := NewEnvelope(src, TypeSimEvent)

	if !uuidV4Pattern.MatchString(env.ID) {
		t.Errorf("NewEnvelope ID is not valid UUIDv4: %q", env.ID)
	}
	if env.Timestamp <= 0 {
		t.Errorf("NewEnvelope Timestamp should be positive, got %d", env.Timestamp)
	}
	if env.SchemaVersion != SchemaVersion {
		t.Errorf("NewEnvelope SchemaVersion = %q, want %q", env.SchemaVersion, SchemaVersion)
	}
	if env.Type != TypeSimEvent {
		t.Errorf("NewEnvelope Type = %q, want %q", env.Type, TypeSimEvent)
	}
}

func TestNewMessageRoundTrip(t *testing.T) {
	type samplePayload struct {
		Kind      string  `json:"kind"`
		SimTimeHr float64 `json:"sim_time_hr"`
	}

	tests := []struct {
		name    string
		msgType string
		payload interface{}
	}{
		{"sim_event", TypeSimEvent, samplePayload{Kind: "alarm.set", SimTimeHr: 1.5}},
		{"scenario_started", TypeScenarioStarted, samplePayload{Kind: "scenario.started"}},
		{"scenario_completed", TypeScenarioCompleted, samplePayload{Kind: "scenario.completed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(testSource(), tt.msgType, tt.payload)
			if err != nil {
				t.Fatalf("NewMessage() error: %v", err)
			}

			data, err := json.Marshal(msg)
			if err != nil {
				t.Fatalf("json.Marshal() error: %v", err)
			}

			parsed, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}

			if parsed.Envelope.Type != tt.msgType {
				t.Errorf("round-trip Type = %q, want %q", parsed.Envelope.Type, tt.msgType)
			}
			if parsed.Envelope.ID != msg.Envelope.ID {
				t.Errorf("round-trip ID = %q, want %q", parsed.Envelope.ID, msg.Envelope.ID)
			}

			var got samplePayload
			if err := json.Unmarshal(parsed.Payload, &got); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			want := tt.payload.(samplePayload)
			if got != want {
				t.Errorf("round-trip payload = %+v, want %+v", got, want)
			}
		})
	}
}

func TestParseInvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not_json", "this is not json"},
		{"incomplete", `{"envelope":`},
		{"wrong_type", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Error("Parse() expected error, got nil")
			}
		})
	}
}

func validSimEventMessage() *Message {
	msg, _ := NewMessage(testSource(), TypeSimEvent, map[string]string{"kind": "alarm.set"})
	return msg
}

func TestValidateValidMessage(t *testing.T) {
	if err := Validate(validSimEventMessage()); err != nil {
		t.Errorf("Validate() error on well-formed message: %v", err)
	}
}

func TestValidateInvalidMessages(t *testing.T) {
	tests := []struct {
		name   string
		modify func(msg *Message)
	}{
		{"empty_id", func(msg *Message) { msg.Envelope.ID = "" }},
		{"invalid_id_format", func(msg *Message) { msg.Envelope.ID = "not-a-uuid" }},
		{"uuid_v1_rejected", func(msg *Message) {
			// UUIDv1 has version nibble '1' instead of '4'.
			msg.Envelope.ID = "550e8400-e29b-11d4-a716-446655440000"
		}},
		{"negative_timestamp", func(msg *Message) { msg.Envelope.Timestamp = -1 }},
		{"wrong_schema_version", func(msg *Message) { msg.Envelope.SchemaVersion = "v2.0.0" }},
		{"unknown_type", func(msg *Message) { msg.Envelope.Type = "unknown.type" }},
		{"invalid_source_service_uppercase", func(msg *Message) { msg.Envelope.Source.Service = "Pwrsim" }},
		{"invalid_source_service_starts_with_number", func(msg *Message) { msg.Envelope.Source.Service = "1pwrsim" }},
		{"empty_source_service", func(msg *Message) { msg.Envelope.Source.Service = "" }},
		{"invalid_source_instance", func(msg *Message) { msg.Envelope.Source.Instance = "ENGINE 01" }},
		{"invalid_source_version", func(msg *Message) { msg.Envelope.Source.Version = "v1.0" }},
		{"invalid_correlation_id_format", func(msg *Message) { msg.Envelope.CorrelationID = "not-a-valid-uuid" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validSimEventMessage()
			tt.modify(msg)
			if err := Validate(msg); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}
