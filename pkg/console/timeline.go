package console

import (
	"sync"

	"github.com/vango-go/vai-console/pkg/audio"
	"github.com/vango-go/vai-console/pkg/realtime"
)

// Timeline projects conversation updates into the published item list.
// The transport stays the source of truth for item content; the
// projector only forwards streaming audio, attaches decoded assets on
// completion, and republishes the refreshed list.
type Timeline struct {
	mu     sync.Mutex
	items  []*realtime.Item
	assets map[string][]byte
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{assets: make(map[string][]byte)}
}

// Apply folds one conversation update. items is a snapshot list
// refreshed from the transport; sink receives audio increments keyed by
// item ID so playback can start before the item completes. Assets live
// in the projector, keyed by item ID, and are stamped onto every
// republished snapshot so each item's audio decodes exactly once.
func (t *Timeline) Apply(items []*realtime.Item, update realtime.ItemUpdate, sink audio.Sink) {
	if update.Item != nil && update.Delta != nil && len(update.Delta.Audio) > 0 && sink != nil {
		sink.Add16BitPCM(update.Delta.Audio, update.Item.ID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if item := update.Item; item != nil && item.Status == realtime.StatusCompleted && len(item.Audio) > 0 {
		if _, done := t.assets[item.ID]; !done {
			t.assets[item.ID] = audio.EncodeWAV(item.Audio, audio.SampleRate)
		}
	}
	for _, item := range items {
		if asset, ok := t.assets[item.ID]; ok {
			item.Asset = asset
		}
	}
	t.items = items
}

// Items returns the published item list.
func (t *Timeline) Items() []*realtime.Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*realtime.Item, len(t.items))
	copy(out, t.items)
	return out
}

// Len returns the number of published items.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Reset clears the timeline and its decode bookkeeping.
func (t *Timeline) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = nil
	t.assets = make(map[string][]byte)
}
