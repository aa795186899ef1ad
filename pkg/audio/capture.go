package audio

import (
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/vango-go/vai-console/pkg/core"
)

const (
	// SampleRate is the PCM rate used on both the capture and playback
	// paths, matching the engine's audio format.
	SampleRate = 24000
	channels   = 1

	captureWindowSamples = 512
)

// CaptureStatus is the capture device lifecycle state.
type CaptureStatus string

const (
	CaptureIdle      CaptureStatus = "idle"
	CaptureRecording CaptureStatus = "recording"
	CapturePaused    CaptureStatus = "paused"
)

// Source is a microphone-backed stream of PCM chunks. Implementations
// are singly owned by the orchestrator; all mutation goes through it.
type Source interface {
	// Begin opens the device. The source starts paused.
	Begin() error
	// Record starts (or resumes) delivery of captured chunks.
	Record(onChunk func(pcm []byte)) error
	// Pause suspends chunk delivery without closing the device.
	Pause() error
	// End tears the device down.
	End() error
	Status() CaptureStatus
	// FrequencyBins returns a magnitude spectrum of the most recent
	// capture window, for visualization.
	FrequencyBins(bins int) []float64
}

// MalgoSource captures 24kHz mono s16le audio from the default input
// device via miniaudio.
type MalgoSource struct {
	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	status  CaptureStatus
	onChunk func([]byte)
	window  []int16
}

// NewMalgoSource creates an uninitialized capture source.
func NewMalgoSource() *MalgoSource {
	return &MalgoSource{status: CaptureIdle}
}

func (m *MalgoSource) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device != nil {
		return nil
	}

	ctxConfig := malgo.ContextConfig{}
	ctxConfig.ThreadPriority = malgo.ThreadPriorityRealtime
	ctx, err := malgo.InitContext(nil, ctxConfig, nil)
	if err != nil {
		return core.NewConnectionError("init capture context", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = channels
	deviceConfig.SampleRate = SampleRate
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			m.onCaptured(input)
		},
	}
	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		return core.NewConnectionError("init capture device", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		return core.NewConnectionError("start capture device", err)
	}

	m.ctx = ctx
	m.device = device
	m.status = CapturePaused
	return nil
}

func (m *MalgoSource) onCaptured(input []byte) {
	m.mu.Lock()
	recording := m.status == CaptureRecording
	fn := m.onChunk
	m.window = appendWindow(m.window, input, captureWindowSamples)
	m.mu.Unlock()

	if !recording || fn == nil || len(input) == 0 {
		return
	}
	chunk := make([]byte, len(input))
	copy(chunk, input)
	fn(chunk)
}

func (m *MalgoSource) Record(onChunk func([]byte)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return core.NewInvalidRequestError("capture source has not begun")
	}
	if onChunk != nil {
		m.onChunk = onChunk
	}
	m.status = CaptureRecording
	return nil
}

func (m *MalgoSource) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return nil
	}
	m.status = CapturePaused
	return nil
}

func (m *MalgoSource) End() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device != nil {
		_ = m.device.Stop()
		m.device.Uninit()
		m.device = nil
	}
	if m.ctx != nil {
		_ = m.ctx.Uninit()
		m.ctx = nil
	}
	m.status = CaptureIdle
	m.onChunk = nil
	return nil
}

func (m *MalgoSource) Status() CaptureStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *MalgoSource) FrequencyBins(bins int) []float64 {
	m.mu.Lock()
	window := append([]int16(nil), m.window...)
	m.mu.Unlock()
	return Spectrum(window, bins)
}

// appendWindow keeps the trailing maxSamples of the PCM stream for
// spectrum snapshots.
func appendWindow(window []int16, pcm []byte, maxSamples int) []int16 {
	for i := 0; i+1 < len(pcm); i += 2 {
		window = append(window, int16(uint16(pcm[i])|uint16(pcm[i+1])<<8))
	}
	if len(window) > maxSamples {
		window = window[len(window)-maxSamples:]
	}
	return window
}
