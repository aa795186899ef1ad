package console

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-go/vai-console/pkg/audio"
	"github.com/vango-go/vai-console/pkg/core"
	"github.com/vango-go/vai-console/pkg/realtime"
	"github.com/vango-go/vai-console/pkg/tools"
)

// State is the session connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// TurnMode selects who decides turn boundaries.
type TurnMode string

const (
	// TurnModeManual is push-to-talk: the client commits input and
	// requests exactly one response per talk cycle.
	TurnModeManual TurnMode = "manual"
	// TurnModeServerVAD streams capture continuously and lets the
	// server segment speech itself.
	TurnModeServerVAD TurnMode = "server_vad"
)

const (
	defaultGreeting     = "Hello!"
	defaultInstructions = "You are a helpful, realtime voice assistant. Respond briefly and conversationally. Use the available tools for financial data and calendar lookups."
	defaultTranscriber  = "whisper-1"
)

// Transport is the capability interface the orchestrator consumes. A
// *realtime.Client satisfies it.
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Bind(realtime.Handlers)
	RegisterTool(def realtime.ToolDefinition, exec realtime.ToolExecutor)
	UpdateSession(cfg realtime.SessionConfig) error
	SendUserMessage(text string) error
	AppendInputAudio(pcm []byte) error
	RequestResponse() error
	CancelResponse(itemID string, sampleOffset int) error
	DeleteItem(id string) error
	Items() []*realtime.Item
}

// ToolProvider executes remote lookups by name. A *tools.Registry
// satisfies it.
type ToolProvider interface {
	Definitions() []tools.Definition
	Execute(ctx context.Context, name string, args map[string]any) (json.RawMessage, error)
}

// Config tunes an Orchestrator.
type Config struct {
	// Instructions is the remote session system prompt.
	Instructions string
	// TranscriptionModel transcribes user input audio.
	TranscriptionModel string
	// Greeting is sent once per session when the timeline is empty.
	Greeting string
	Logger   *slog.Logger
	Metrics  *Metrics
}

// Orchestrator owns the realtime session lifecycle: connection state,
// manual/VAD turn-taking, interruption and cancellation coordination
// between capture, playback, and transport, and the two projections of
// the event stream.
//
// Capture and playback are singly owned by the orchestrator; every
// connect bumps a session epoch, and callbacks from a stale epoch are
// discarded without touching current state.
type Orchestrator struct {
	cfg       Config
	transport Transport
	capture   audio.Source
	playback  audio.Sink
	tools     ToolProvider

	timeline *Timeline
	log      *EventLog

	mu        sync.Mutex
	state     State
	mode      TurnMode
	recording bool
	streaming bool
	epoch     int
	startedAt time.Time
}

// New creates an Orchestrator over its collaborators. toolProvider may
// be nil when no tools are exposed.
func New(transport Transport, capture audio.Source, playback audio.Sink, toolProvider ToolProvider, cfg Config) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Greeting == "" {
		cfg.Greeting = defaultGreeting
	}
	if cfg.Instructions == "" {
		cfg.Instructions = defaultInstructions
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = defaultTranscriber
	}
	return &Orchestrator{
		cfg:       cfg,
		transport: transport,
		capture:   capture,
		playback:  playback,
		tools:     toolProvider,
		timeline:  NewTimeline(),
		log:       NewEventLog(),
		state:     StateDisconnected,
		mode:      TurnModeManual,
	}
}

// State returns the current connection state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Mode returns the current turn mode.
func (o *Orchestrator) Mode() TurnMode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mode
}

// Recording reports whether a manual push-to-talk cycle is active.
func (o *Orchestrator) Recording() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.recording
}

// StartedAt is the zero-point for displayed event timestamps.
func (o *Orchestrator) StartedAt() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.startedAt
}

// Timeline returns the conversation timeline projection.
func (o *Orchestrator) Timeline() *Timeline {
	return o.timeline
}

// EventLog returns the diagnostic event log projection.
func (o *Orchestrator) EventLog() *EventLog {
	return o.log
}

// Connect opens a session: begins capture, connects playback, opens the
// transport, registers tools, and pushes the initial session config.
// On failure it tears everything back down to Disconnected; there is no
// automatic retry.
func (o *Orchestrator) Connect(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateDisconnected {
		o.mu.Unlock()
		return core.NewInvalidRequestError("session is already active")
	}
	o.epoch++
	epoch := o.epoch
	o.state = StateConnecting
	o.startedAt = time.Now()
	mode := o.mode
	o.mu.Unlock()

	o.log.Reset(o.startedAt)

	if err := o.setup(ctx, epoch, mode); err != nil {
		o.cfg.Logger.Error("connect failed", "error", err)
		o.Disconnect()
		return err
	}

	o.mu.Lock()
	if o.epoch != epoch {
		// Disconnected while the handshake was in flight.
		o.mu.Unlock()
		return nil
	}
	o.state = StateConnected
	o.mu.Unlock()

	o.cfg.Metrics.observeSession()
	o.cfg.Logger.Info("session connected", "mode", mode)

	if len(o.transport.Items()) == 0 {
		if err := o.transport.SendUserMessage(o.cfg.Greeting); err != nil {
			o.cfg.Logger.Warn("greeting send failed", "error", err)
		}
	}
	if mode == TurnModeServerVAD {
		return o.beginStreaming(epoch)
	}
	return nil
}

func (o *Orchestrator) setup(ctx context.Context, epoch int, mode TurnMode) error {
	if err := o.capture.Begin(); err != nil {
		return err
	}
	if err := o.playback.Connect(); err != nil {
		return err
	}

	o.bindHandlers(epoch)
	o.registerTools()

	if err := o.transport.Connect(ctx); err != nil {
		return err
	}
	return o.transport.UpdateSession(o.sessionConfig(mode))
}

// bindHandlers replaces the transport callback set for this epoch.
// Binding per connect (instead of adding handlers) keeps reconnects
// from accumulating duplicates.
func (o *Orchestrator) bindHandlers(epoch int) {
	o.transport.Bind(realtime.Handlers{
		OnEvent: func(ev realtime.Event) {
			if !o.sameEpoch(epoch) {
				return
			}
			o.log.Append(ev)
			o.cfg.Metrics.observeEvent(string(ev.Source), ev.Type)
		},
		OnError: func(serr realtime.ServerError) {
			if !o.sameEpoch(epoch) {
				return
			}
			// Already in the event log via OnEvent; protocol errors do
			// not tear the session down.
			o.cfg.Logger.Warn("server error event", "code", serr.Code, "message", serr.Message)
		},
		OnInterrupted: func() {
			if !o.sameEpoch(epoch) {
				return
			}
			o.interruptPlayback()
		},
		OnUpdated: func(update realtime.ItemUpdate) {
			if !o.sameEpoch(epoch) {
				return
			}
			if update.Delta != nil {
				o.cfg.Metrics.observeAudio("in", len(update.Delta.Audio))
			}
			o.timeline.Apply(o.transport.Items(), update, o.playback)
		},
	})
}

func (o *Orchestrator) registerTools() {
	if o.tools == nil {
		return
	}
	for _, def := range o.tools.Definitions() {
		name := def.Name
		o.transport.RegisterTool(realtime.ToolDefinition{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		}, func(ctx context.Context, args map[string]any) (json.RawMessage, error) {
			result, err := o.tools.Execute(ctx, name, args)
			o.cfg.Metrics.observeToolCall(name, err)
			return result, err
		})
	}
}

func (o *Orchestrator) sessionConfig(mode TurnMode) realtime.SessionConfig {
	cfg := realtime.SessionConfig{
		Instructions:       o.cfg.Instructions,
		TranscriptionModel: o.cfg.TranscriptionModel,
		TurnDetection:      realtime.TurnDetectionNone,
	}
	if mode == TurnModeServerVAD {
		cfg.TurnDetection = realtime.TurnDetectionServerVAD
	}
	return cfg
}

// Disconnect tears the session down from any state: clears both
// projections, closes the transport, ends capture, and interrupts
// playback. It is the universal cancellation primitive; in-flight
// operations from the old epoch become no-ops.
func (o *Orchestrator) Disconnect() {
	o.mu.Lock()
	o.epoch++
	o.state = StateDisconnected
	o.recording = false
	o.streaming = false
	o.mu.Unlock()

	o.timeline.Reset()
	o.log.Reset(time.Now())

	if err := o.transport.Disconnect(); err != nil {
		o.cfg.Logger.Warn("transport close failed", "error", err)
	}
	if err := o.capture.End(); err != nil {
		o.cfg.Logger.Warn("capture teardown failed", "error", err)
	}
	o.playback.Interrupt()
	o.cfg.Logger.Info("session disconnected")
}

// StartPushToTalk begins a manual talk cycle: interrupt playback first
// (informing the engine how much was actually heard), then start
// streaming capture.
func (o *Orchestrator) StartPushToTalk() error {
	o.mu.Lock()
	if o.state != StateConnected || o.mode != TurnModeManual {
		o.mu.Unlock()
		return core.NewInvalidRequestError("push-to-talk requires a connected manual-mode session")
	}
	if o.recording {
		o.mu.Unlock()
		return core.NewInvalidRequestError("push-to-talk is already active")
	}
	o.recording = true
	epoch := o.epoch
	o.mu.Unlock()

	o.interruptPlayback()
	return o.beginStreaming(epoch)
}

// StopPushToTalk ends the manual talk cycle: pause capture, then
// request exactly one response for the accumulated input. A pause
// failure does not drop the turn; the streaming flag already stops the
// forward path, so the response request still goes out.
func (o *Orchestrator) StopPushToTalk() error {
	o.mu.Lock()
	if !o.recording {
		o.mu.Unlock()
		return core.NewInvalidRequestError("push-to-talk is not active")
	}
	o.recording = false
	o.streaming = false
	o.mu.Unlock()

	if err := o.capture.Pause(); err != nil {
		o.cfg.Logger.Warn("capture pause failed", "error", err)
	}
	return o.transport.RequestResponse()
}

// SetTurnMode switches between manual and server-VAD turn-taking.
// Re-applying the current mode is a no-op.
func (o *Orchestrator) SetTurnMode(mode TurnMode) error {
	o.mu.Lock()
	if mode == o.mode {
		o.mu.Unlock()
		return nil
	}
	o.mode = mode
	connected := o.state == StateConnected
	epoch := o.epoch
	if mode == TurnModeManual {
		o.recording = false
		o.streaming = false
	}
	o.mu.Unlock()

	if connected {
		if err := o.transport.UpdateSession(o.sessionConfig(mode)); err != nil {
			return err
		}
	}
	if mode == TurnModeManual {
		return o.capture.Pause()
	}
	if connected {
		return o.beginStreaming(epoch)
	}
	return nil
}

// SendText sends a user text message outside the audio path.
func (o *Orchestrator) SendText(text string) error {
	o.mu.Lock()
	connected := o.state == StateConnected
	o.mu.Unlock()
	if !connected {
		return core.NewInvalidRequestError("session is not connected")
	}
	return o.transport.SendUserMessage(text)
}

// DeleteItem asks the engine to remove one timeline item. The local
// copy goes away only once the deletion is confirmed.
func (o *Orchestrator) DeleteItem(id string) error {
	o.mu.Lock()
	connected := o.state == StateConnected
	o.mu.Unlock()
	if !connected {
		return core.NewInvalidRequestError("session is not connected")
	}
	return o.transport.DeleteItem(id)
}

// interruptPlayback stops the sink and, if a track was actually
// truncated, tells the engine exactly how much the user heard. The
// cancellation token must be obtained before the cancel call; its
// sample offset is only meaningful at the moment of interruption.
func (o *Orchestrator) interruptPlayback() {
	token, ok := o.playback.Interrupt()
	if !ok {
		return
	}
	o.cfg.Metrics.observeInterruption()
	if err := o.transport.CancelResponse(token.TrackID, token.SampleOffset); err != nil {
		o.cfg.Logger.Warn("cancel response failed",
			"track_id", token.TrackID, "sample_offset", token.SampleOffset, "error", err)
	}
}

// beginStreaming starts forwarding capture chunks to the transport.
// The forward path is fire-and-forget and epoch-guarded.
func (o *Orchestrator) beginStreaming(epoch int) error {
	o.mu.Lock()
	if o.epoch != epoch || o.streaming {
		o.mu.Unlock()
		return nil
	}
	o.streaming = true
	o.mu.Unlock()

	return o.capture.Record(func(pcm []byte) {
		o.mu.Lock()
		live := o.epoch == epoch && o.streaming
		o.mu.Unlock()
		if !live {
			return
		}
		if err := o.transport.AppendInputAudio(pcm); err != nil {
			o.cfg.Logger.Debug("audio append failed", "error", err)
			return
		}
		o.cfg.Metrics.observeAudio("out", len(pcm))
	})
}

func (o *Orchestrator) sameEpoch(epoch int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.epoch == epoch
}
