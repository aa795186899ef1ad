package realtime

import (
	"encoding/json"
	"time"
)

// Role identifies who produced a conversation item.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	// RoleTool is assigned to function_call and function_call_output
	// items, which carry no message role on the wire.
	RoleTool Role = "tool"
)

// Status tracks an item's lifecycle.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ItemType mirrors the wire-level item type tag.
type ItemType string

const (
	ItemTypeMessage            ItemType = "message"
	ItemTypeFunctionCall       ItemType = "function_call"
	ItemTypeFunctionCallOutput ItemType = "function_call_output"
)

// Item is one conversation turn or tool exchange. Items are append-only
// and ordered by arrival; an item's ID is stable across updates.
type Item struct {
	ID     string
	Type   ItemType
	Role   Role
	Status Status

	// Text accumulates assistant text deltas for text-only content.
	Text string
	// Transcript accumulates audio transcript deltas (assistant) or the
	// final input transcription (user).
	Transcript string
	// Audio accumulates raw 16-bit PCM for audio content.
	Audio []byte

	// Function call fields.
	CallID    string
	Name      string
	Arguments string
	Output    string

	// Asset holds the decoded playable audio (WAV bytes), attached by
	// the timeline projector exactly once when the item completes.
	Asset []byte
}

// Delta carries the incremental portion of a conversation update.
type Delta struct {
	Text       string
	Transcript string
	Arguments  string
	// Audio is a decoded PCM increment, suitable for streaming playback
	// keyed by the item ID.
	Audio []byte
}

// ItemUpdate is delivered on every conversation change.
type ItemUpdate struct {
	Item  *Item
	Delta *Delta
}

// Source tags a protocol event with its direction.
type Source string

const (
	SourceClient Source = "client"
	SourceServer Source = "server"
)

// Event is one inbound or outbound protocol message, as observed on the
// wire. Payload is the raw JSON frame.
type Event struct {
	Time    time.Time
	Source  Source
	Type    string
	Payload json.RawMessage
}

// TurnDetection selects who decides turn boundaries.
type TurnDetection string

const (
	// TurnDetectionNone leaves turn-taking to the client (push-to-talk).
	TurnDetectionNone TurnDetection = "none"
	// TurnDetectionServerVAD lets the server segment speech itself.
	TurnDetectionServerVAD TurnDetection = "server_vad"
)

// SessionConfig is the remote session configuration surface.
type SessionConfig struct {
	Instructions       string
	TranscriptionModel string
	TurnDetection      TurnDetection
}

// ToolDefinition describes one callable tool advertised to the engine.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ServerError is the payload of a protocol-level error event. It does
// not tear the session down by itself.
type ServerError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
