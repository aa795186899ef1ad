package console

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vango-go/vai-console/pkg/realtime"
)

// elideThreshold is the payload string length above which audio fields
// are replaced with a size marker for display.
const elideThreshold = 64

// LogEntry is one displayable row of the diagnostic event log.
type LogEntry struct {
	// At is the offset from session start.
	At      time.Duration
	Source  realtime.Source
	Type    string
	Count   int
	IsError bool
	Payload json.RawMessage
}

// DisplayPayload returns the payload with large audio fields elided to
// a size marker. Elision is display-only; Payload keeps the full frame.
func (e LogEntry) DisplayPayload() json.RawMessage {
	return elidePayload(e.Payload)
}

// EventLog folds the raw protocol event stream into a displayable log.
// It is append-only except for in-place mutation of the last entry's
// repeat count when consecutive events share an event type.
type EventLog struct {
	mu      sync.Mutex
	start   time.Time
	entries []*LogEntry
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{start: time.Now()}
}

// Reset clears the log and re-anchors displayed timestamps.
func (l *EventLog) Reset(start time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.start = start
	l.entries = nil
}

// Append records one protocol event, coalescing consecutive events of
// the same type into the last entry's repeat count.
func (l *EventLog) Append(ev realtime.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n := len(l.entries); n > 0 && l.entries[n-1].Type == ev.Type {
		l.entries[n-1].Count++
		return
	}
	l.entries = append(l.entries, &LogEntry{
		At:      ev.Time.Sub(l.start),
		Source:  ev.Source,
		Type:    ev.Type,
		Count:   1,
		IsError: ev.Type == "error",
		Payload: ev.Payload,
	})
}

// Entries returns a snapshot of the log.
func (l *EventLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = *e
	}
	return out
}

// Len returns the number of coalesced entries.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// elidePayload replaces oversized base64 audio fields ("audio" and
// "delta" keys) with a byte-size marker so streaming frames do not
// flood the display.
func elidePayload(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return raw
	}
	if !elideFields(decoded) {
		return raw
	}
	out, err := json.Marshal(decoded)
	if err != nil {
		return raw
	}
	return out
}

func elideFields(m map[string]any) bool {
	changed := false
	for key, value := range m {
		switch v := value.(type) {
		case string:
			if (key == "audio" || key == "delta") && len(v) > elideThreshold {
				m[key] = fmt.Sprintf("<%d bytes>", len(v))
				changed = true
			}
		case map[string]any:
			if elideFields(v) {
				changed = true
			}
		}
	}
	return changed
}
