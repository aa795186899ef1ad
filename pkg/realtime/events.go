package realtime

import "encoding/json"

// Server event type tags handled by the client read loop. Unknown tags
// are still surfaced through the generic event callback.
const (
	eventTypeError          = "error"
	eventTypeSessionCreated = "session.created"

	eventTypeItemCreated                 = "conversation.item.created"
	eventTypeItemDeleted                 = "conversation.item.deleted"
	eventTypeInputTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"

	eventTypeSpeechStarted = "input_audio_buffer.speech_started"

	eventTypeResponseOutputItemAdded = "response.output_item.added"
	eventTypeResponseOutputItemDone  = "response.output_item.done"
	eventTypeResponseTextDelta       = "response.text.delta"
	eventTypeResponseTranscriptDelta = "response.audio_transcript.delta"
	eventTypeResponseAudioDelta      = "response.audio.delta"
	eventTypeResponseArgumentsDelta  = "response.function_call_arguments.delta"
	eventTypeResponseArgumentsDone   = "response.function_call_arguments.done"
)

// envelope determines the event type before decoding the full frame.
type envelope struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitempty"`
}

type errorEvent struct {
	Type  string      `json:"type"`
	Error ServerError `json:"error"`
}

// wireContent is one content part of a wire item.
type wireContent struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Audio      string `json:"audio,omitempty"`
}

// wireItem is the inner "item" object shared by several events.
type wireItem struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Role      string        `json:"role,omitempty"`
	Status    string        `json:"status,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
	Output    string        `json:"output,omitempty"`
	Content   []wireContent `json:"content,omitempty"`
}

type itemCreatedEvent struct {
	Type string   `json:"type"`
	Item wireItem `json:"item"`
}

type itemDeletedEvent struct {
	Type   string `json:"type"`
	ItemID string `json:"item_id"`
}

type inputTranscriptionCompletedEvent struct {
	Type       string `json:"type"`
	ItemID     string `json:"item_id"`
	Transcript string `json:"transcript"`
}

type outputItemEvent struct {
	Type string   `json:"type"`
	Item wireItem `json:"item"`
}

// deltaEvent covers the streaming delta family: text, transcript,
// audio, and function-call arguments all share this shape.
type deltaEvent struct {
	Type   string `json:"type"`
	ItemID string `json:"item_id"`
	Delta  string `json:"delta"`
}

type argumentsDoneEvent struct {
	Type      string `json:"type"`
	ItemID    string `json:"item_id"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Outbound client event payloads.

type sessionUpdateEvent struct {
	EventID string      `json:"event_id"`
	Type    string      `json:"type"`
	Session wireSession `json:"session"`
}

type wireSession struct {
	Instructions            string             `json:"instructions,omitempty"`
	InputAudioTranscription *wireTranscription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *wireTurnDetection `json:"turn_detection"`
	Tools                   []wireTool         `json:"tools,omitempty"`
}

type wireTranscription struct {
	Model string `json:"model"`
}

type wireTurnDetection struct {
	Type string `json:"type"`
}

type wireTool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type itemCreateEvent struct {
	EventID string   `json:"event_id"`
	Type    string   `json:"type"`
	Item    wireItem `json:"item"`
}

type audioAppendEvent struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Audio   string `json:"audio"`
}

type simpleEvent struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
}

type itemTruncateEvent struct {
	EventID      string `json:"event_id"`
	Type         string `json:"type"`
	ItemID       string `json:"item_id"`
	ContentIndex int    `json:"content_index"`
	AudioEndMS   int64  `json:"audio_end_ms"`
}

type itemDeleteEvent struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	ItemID  string `json:"item_id"`
}

func decodeEnvelope(data []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, err
	}
	return env, nil
}
