package audio

import (
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/vango-go/vai-console/pkg/core"
)

// Cancellation reports exactly how much of a track played before an
// interruption, so the engine can truncate its notion of delivered
// audio to match.
type Cancellation struct {
	TrackID      string
	SampleOffset int
}

// Sink plays PCM chunks tagged with a logical track ID and supports
// interrupting playback mid-track.
type Sink interface {
	Connect() error
	// Add16BitPCM queues a chunk for the given track. A new track ID
	// supersedes the previous one.
	Add16BitPCM(pcm []byte, trackID string)
	// Interrupt stops playback immediately. The returned bool is false
	// when nothing was playing.
	Interrupt() (Cancellation, bool)
	FrequencyBins(bins int) []float64
	Close() error
}

// trackBuffer is the pull-model buffer feeding the device player. It
// counts consumed samples per track; the count at interrupt time is
// the cancellation offset.
type trackBuffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	track  string
	played int
	window []int16
	closed bool
}

func newTrackBuffer() *trackBuffer {
	b := &trackBuffer{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *trackBuffer) add(pcm []byte, trackID string) {
	if len(pcm) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if trackID != b.track {
		b.track = trackID
		b.played = 0
		b.buf = b.buf[:0]
	}
	b.buf = append(b.buf, pcm...)
	b.cond.Signal()
}

// Read implements io.Reader for the device player. It blocks until
// audio is queued; on close it yields silence so the device can drain.
func (b *trackBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.buf) == 0 && !b.closed {
		b.cond.Wait()
	}
	if b.closed && len(b.buf) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	b.played += n / 2
	b.window = appendWindow(b.window, p[:n], captureWindowSamples)
	return n, nil
}

func (b *trackBuffer) interrupt() (Cancellation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.track == "" || len(b.buf) == 0 {
		// Nothing mid-flight; the last track either never existed or
		// already played out in full.
		return Cancellation{}, false
	}
	token := Cancellation{TrackID: b.track, SampleOffset: b.played}
	b.buf = b.buf[:0]
	b.track = ""
	b.played = 0
	return token, true
}

func (b *trackBuffer) close() {
	b.mu.Lock()
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

func (b *trackBuffer) spectrum(bins int) []float64 {
	b.mu.Lock()
	window := append([]int16(nil), b.window...)
	b.mu.Unlock()
	return Spectrum(window, bins)
}

// OtoSink plays 24kHz mono s16le audio through the default output
// device.
type OtoSink struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	buffer *trackBuffer
}

// NewOtoSink creates an unconnected playback sink.
func NewOtoSink() *OtoSink {
	return &OtoSink{}
}

func (s *OtoSink) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		return nil
	}
	if s.ctx == nil {
		// 4800 bytes is ~100ms at 24kHz mono s16le; small enough to
		// keep interruption latency low.
		opts := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   4800,
		}
		ctx, ready, err := oto.NewContext(opts)
		if err != nil {
			return core.NewConnectionError("init playback device", err)
		}
		<-ready
		s.ctx = ctx
	}
	s.buffer = newTrackBuffer()
	s.player = s.ctx.NewPlayer(s.buffer)
	s.player.Play()
	return nil
}

func (s *OtoSink) Add16BitPCM(pcm []byte, trackID string) {
	s.mu.Lock()
	buffer := s.buffer
	s.mu.Unlock()
	if buffer == nil {
		return
	}
	buffer.add(pcm, trackID)
}

func (s *OtoSink) Interrupt() (Cancellation, bool) {
	s.mu.Lock()
	player := s.player
	buffer := s.buffer
	s.mu.Unlock()
	if buffer == nil {
		return Cancellation{}, false
	}
	if player != nil {
		player.Pause()
	}
	token, ok := buffer.interrupt()
	if player != nil {
		// Reset drops audio already handed to the device so the next
		// track starts clean.
		player.Reset()
		player.Play()
	}
	return token, ok
}

func (s *OtoSink) FrequencyBins(bins int) []float64 {
	s.mu.Lock()
	buffer := s.buffer
	s.mu.Unlock()
	if buffer == nil {
		return make([]float64, bins)
	}
	return buffer.spectrum(bins)
}

func (s *OtoSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer != nil {
		s.buffer.close()
		s.buffer = nil
	}
	if s.player != nil {
		_ = s.player.Close()
		s.player = nil
	}
	return nil
}
