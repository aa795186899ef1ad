package console

import (
	"bytes"
	"testing"

	"github.com/vango-go/vai-console/pkg/audio"
	"github.com/vango-go/vai-console/pkg/realtime"
)

func TestTimelineForwardsAudioDeltasToSink(t *testing.T) {
	timeline := NewTimeline()
	sink := &fakePlayback{}

	item := &realtime.Item{ID: "item_1", Role: realtime.RoleAssistant, Status: realtime.StatusInProgress}
	timeline.Apply([]*realtime.Item{item}, realtime.ItemUpdate{
		Item:  item,
		Delta: &realtime.Delta{Audio: []byte{1, 2, 3, 4}},
	}, sink)

	if len(sink.added) != 1 {
		t.Fatalf("sink chunks=%d, want 1", len(sink.added))
	}
	if sink.added[0].trackID != "item_1" {
		t.Fatalf("trackID=%q, want the item id", sink.added[0].trackID)
	}
	if !bytes.Equal(sink.added[0].pcm, []byte{1, 2, 3, 4}) {
		t.Fatalf("pcm=%v, want the delta bytes", sink.added[0].pcm)
	}
}

func TestTimelineDecodesAssetOnceOnCompletion(t *testing.T) {
	timeline := NewTimeline()
	item := &realtime.Item{
		ID:     "item_1",
		Role:   realtime.RoleAssistant,
		Status: realtime.StatusInProgress,
		Audio:  []byte{1, 2, 3, 4},
	}
	items := []*realtime.Item{item}

	timeline.Apply(items, realtime.ItemUpdate{Item: item}, nil)
	if item.Asset != nil {
		t.Fatal("in-progress item must not get an asset")
	}

	item.Status = realtime.StatusCompleted
	timeline.Apply(items, realtime.ItemUpdate{Item: item}, nil)
	if item.Asset == nil {
		t.Fatal("completed item with audio should get a WAV asset")
	}
	if !bytes.HasPrefix(item.Asset, []byte("RIFF")) {
		t.Fatalf("asset prefix=%q, want a RIFF header", item.Asset[:4])
	}
	first := item.Asset

	// Later updates for the same item must not re-encode.
	item.Audio = append(item.Audio, 5, 6)
	timeline.Apply(items, realtime.ItemUpdate{Item: item}, nil)
	if len(item.Asset) != len(first) {
		t.Fatal("asset was re-encoded after completion")
	}
}

func TestTimelineAssetPersistsAcrossSnapshots(t *testing.T) {
	timeline := NewTimeline()
	item := &realtime.Item{ID: "item_1", Status: realtime.StatusCompleted, Audio: []byte{1, 0, 2, 0}}
	timeline.Apply([]*realtime.Item{item}, realtime.ItemUpdate{Item: item}, nil)
	if item.Asset == nil {
		t.Fatal("first snapshot should carry the decoded asset")
	}

	// The transport republishes fresh snapshot items; the projector must
	// stamp the existing asset onto them rather than re-encode.
	fresh := &realtime.Item{ID: "item_1", Status: realtime.StatusCompleted, Audio: []byte{1, 0, 2, 0}}
	timeline.Apply([]*realtime.Item{fresh}, realtime.ItemUpdate{Item: fresh}, nil)
	if fresh.Asset == nil {
		t.Fatal("republished snapshot should carry the asset")
	}
	if &fresh.Asset[0] != &item.Asset[0] {
		t.Fatal("asset was re-encoded instead of reused")
	}
}

func TestTimelinePublishesAuthoritativeList(t *testing.T) {
	timeline := NewTimeline()
	items := []*realtime.Item{
		{ID: "item_1", Role: realtime.RoleUser, Type: realtime.ItemTypeMessage},
		{ID: "item_2", Role: realtime.RoleTool, Type: realtime.ItemTypeFunctionCall, Name: "stock_quote"},
	}

	timeline.Apply(items, realtime.ItemUpdate{Item: items[1]}, nil)

	published := timeline.Items()
	if len(published) != 2 {
		t.Fatalf("len=%d, want 2", len(published))
	}
	if published[1].Name != "stock_quote" {
		t.Fatalf("tool item=%+v, want function call retained", published[1])
	}
}

func TestTimelineReset(t *testing.T) {
	timeline := NewTimeline()
	item := &realtime.Item{ID: "item_1", Status: realtime.StatusCompleted, Audio: []byte{1, 2}}
	timeline.Apply([]*realtime.Item{item}, realtime.ItemUpdate{Item: item}, nil)

	timeline.Reset()
	if got := timeline.Len(); got != 0 {
		t.Fatalf("len=%d after reset, want 0", got)
	}

	// Decode bookkeeping is cleared too: the same id decodes again.
	item.Asset = nil
	timeline.Apply([]*realtime.Item{item}, realtime.ItemUpdate{Item: item}, nil)
	if item.Asset == nil {
		t.Fatal("asset should decode again after reset")
	}
}

var _ audio.Sink = (*fakePlayback)(nil)
