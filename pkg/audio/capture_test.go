package audio

import "testing"

func TestAppendWindowDecodesLittleEndian(t *testing.T) {
	window := appendWindow(nil, []byte{0x01, 0x00, 0xFF, 0xFF}, 8)
	if len(window) != 2 {
		t.Fatalf("len=%d, want 2", len(window))
	}
	if window[0] != 1 || window[1] != -1 {
		t.Fatalf("window=%v, want [1 -1]", window)
	}
}

func TestAppendWindowKeepsTrailingSamples(t *testing.T) {
	var window []int16
	for i := 0; i < 10; i++ {
		window = appendWindow(window, []byte{byte(i), 0}, 4)
	}
	if len(window) != 4 {
		t.Fatalf("len=%d, want capped at 4", len(window))
	}
	want := []int16{6, 7, 8, 9}
	for i, v := range want {
		if window[i] != v {
			t.Fatalf("window=%v, want trailing samples %v", window, want)
		}
	}
}

func TestAppendWindowIgnoresTrailingOddByte(t *testing.T) {
	window := appendWindow(nil, []byte{0x01, 0x00, 0x02}, 8)
	if len(window) != 1 {
		t.Fatalf("len=%d, want incomplete sample dropped", len(window))
	}
}

func TestRecordBeforeBeginFails(t *testing.T) {
	src := NewMalgoSource()
	if err := src.Record(func([]byte) {}); err == nil {
		t.Fatal("record should fail before the device begins")
	}
	if got := src.Status(); got != CaptureIdle {
		t.Fatalf("status=%q, want %q", got, CaptureIdle)
	}
}
