package audio

import (
	"bytes"
	"testing"
)

func TestTrackBufferCountsPlayedSamples(t *testing.T) {
	b := newTrackBuffer()
	b.add(make([]byte, 100), "t1")

	p := make([]byte, 40)
	n, err := b.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 40 {
		t.Fatalf("n=%d, want 40", n)
	}

	token, ok := b.interrupt()
	if !ok {
		t.Fatal("interrupt should yield a token while audio is buffered")
	}
	if token.TrackID != "t1" {
		t.Fatalf("track=%q, want t1", token.TrackID)
	}
	// 40 bytes consumed is 20 16-bit samples.
	if token.SampleOffset != 20 {
		t.Fatalf("offset=%d, want 20", token.SampleOffset)
	}
}

func TestTrackBufferInterruptIdleYieldsNoToken(t *testing.T) {
	b := newTrackBuffer()
	if _, ok := b.interrupt(); ok {
		t.Fatal("empty buffer should not yield a token")
	}

	// A fully drained track should not yield one either.
	b.add(make([]byte, 10), "t1")
	p := make([]byte, 10)
	if _, err := b.Read(p); err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, ok := b.interrupt(); ok {
		t.Fatal("drained buffer should not yield a token")
	}
}

func TestTrackBufferNewTrackResetsOffset(t *testing.T) {
	b := newTrackBuffer()
	b.add(make([]byte, 50), "t1")
	p := make([]byte, 50)
	if _, err := b.Read(p); err != nil {
		t.Fatalf("read: %v", err)
	}

	b.add(make([]byte, 30), "t2")
	p = make([]byte, 10)
	if _, err := b.Read(p); err != nil {
		t.Fatalf("read: %v", err)
	}

	token, ok := b.interrupt()
	if !ok {
		t.Fatal("want a token for the superseding track")
	}
	if token.TrackID != "t2" || token.SampleOffset != 5 {
		t.Fatalf("token=%+v, want {t2 5}", token)
	}
}

func TestTrackBufferInterruptDropsQueuedAudio(t *testing.T) {
	b := newTrackBuffer()
	b.add(make([]byte, 100), "t1")
	b.interrupt()

	// Post-interrupt audio for a new track starts from offset zero.
	b.add(make([]byte, 20), "t2")
	p := make([]byte, 20)
	if _, err := b.Read(p); err != nil {
		t.Fatalf("read: %v", err)
	}
	if b.played != 10 {
		t.Fatalf("played=%d, want 10 samples of the new track only", b.played)
	}
}

func TestTrackBufferClosedReadYieldsSilence(t *testing.T) {
	b := newTrackBuffer()
	b.close()

	p := []byte{1, 2, 3, 4}
	n, err := b.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != len(p) {
		t.Fatalf("n=%d, want full silence fill", n)
	}
	if !bytes.Equal(p, []byte{0, 0, 0, 0}) {
		t.Fatalf("p=%v, want zeros", p)
	}
}

func TestTrackBufferIgnoresAddAfterClose(t *testing.T) {
	b := newTrackBuffer()
	b.close()
	b.add(make([]byte, 10), "t1")
	if _, ok := b.interrupt(); ok {
		t.Fatal("closed buffer should stay empty")
	}
}
