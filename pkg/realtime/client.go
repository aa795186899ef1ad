package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-go/vai-console/pkg/core"
)

const (
	defaultDialTimeout = 15 * time.Second
	defaultSampleRate  = 24000
)

// Config configures a realtime Client.
type Config struct {
	// URL is the websocket endpoint of the conversational engine,
	// including any model selector query.
	URL string
	// APIKey is sent as a bearer credential on the dial request.
	APIKey string
	// SampleRate of assistant output audio, used to convert playback
	// sample offsets into truncation milliseconds. Default 24000.
	SampleRate int
	// DialTimeout bounds the websocket handshake. Default 15s.
	DialTimeout time.Duration
	Logger      *slog.Logger
}

// Handlers are the client's upward-facing callbacks. Bind replaces the
// whole set, so reconnecting never accumulates duplicate handlers.
type Handlers struct {
	// OnEvent observes every inbound and outbound protocol frame.
	OnEvent func(Event)
	// OnError receives protocol-level error events.
	OnError func(ServerError)
	// OnInterrupted fires when the server detects the user speaking
	// over an in-progress assistant reply.
	OnInterrupted func()
	// OnUpdated fires after every conversation change. Item and Delta
	// may be nil (for example on confirmed deletions).
	OnUpdated func(ItemUpdate)
}

// ToolExecutor runs one tool call and returns its JSON result.
type ToolExecutor func(ctx context.Context, args map[string]any) (json.RawMessage, error)

type registeredTool struct {
	def  ToolDefinition
	exec ToolExecutor
}

// Client maintains a duplex websocket connection to the remote
// conversational engine. It owns the authoritative ordered item list;
// projections refresh from Items() rather than keeping their own copy.
type Client struct {
	cfg Config

	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  atomic.Bool
	done    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	items    []*Item
	byID     map[string]*Item
	tools    map[string]registeredTool
	handlers Handlers
	session  SessionConfig
}

// NewClient creates a realtime client. Call Bind before Connect.
func NewClient(cfg Config) *Client {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = defaultSampleRate
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		cfg:   cfg,
		byID:  make(map[string]*Item),
		tools: make(map[string]registeredTool),
	}
}

// Bind replaces the client's callback set.
func (c *Client) Bind(h Handlers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = h
}

// RegisterTool registers a tool definition and its executor. The
// definitions are advertised on the next UpdateSession.
func (c *Client) RegisterTool(def ToolDefinition, exec ToolExecutor) {
	name := strings.TrimSpace(def.Name)
	if name == "" || exec == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools[name] = registeredTool{def: def, exec: exec}
}

// Connect dials the engine and waits for the session handshake.
func (c *Client) Connect(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.URL) == "" {
		return core.NewInvalidRequestError("realtime endpoint URL must not be empty")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return core.NewAuthenticationError("realtime API key must not be empty")
	}
	// closed stays set until the new handshake succeeds, so a failed
	// redial never resurrects the previous dead socket.
	if c.done != nil {
		select {
		case <-c.done:
		default:
			return core.NewInvalidRequestError("client is already connected")
		}
	}

	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+c.cfg.APIKey)
	headers.Set("OpenAI-Beta", "realtime=v1")

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, c.cfg.URL, headers)
	if err != nil {
		if resp != nil {
			return core.NewConnectionError(fmt.Sprintf("websocket dial failed (status %d)", resp.StatusCode), err)
		}
		return core.NewConnectionError("websocket dial failed", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.cfg.DialTimeout))
	messageType, payload, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return core.NewConnectionError("read session handshake", err)
	}
	_ = conn.SetReadDeadline(time.Time{})
	if messageType != websocket.TextMessage {
		_ = conn.Close()
		return core.NewConnectionError("session handshake", fmt.Errorf("unexpected frame type %d", messageType))
	}
	env, err := decodeEnvelope(payload)
	if err != nil {
		_ = conn.Close()
		return core.NewConnectionError("decode session handshake", err)
	}
	if env.Type != eventTypeSessionCreated {
		_ = conn.Close()
		if env.Type == eventTypeError {
			var ev errorEvent
			if json.Unmarshal(payload, &ev) == nil {
				return core.NewAPIError(strings.TrimSpace(ev.Error.Message))
			}
		}
		return core.NewConnectionError("session handshake", fmt.Errorf("unexpected first frame %q", env.Type))
	}

	c.mu.Lock()
	c.items = nil
	c.byID = make(map[string]*Item)
	c.mu.Unlock()

	c.conn = conn
	c.done = make(chan struct{})
	c.closed.Store(false)
	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.emit(SourceServer, env.Type, payload)
	go c.readLoop(conn, c.done)
	return nil
}

// Connected reports whether the websocket session is live.
func (c *Client) Connected() bool {
	if c.done == nil {
		return false
	}
	return !c.closed.Load()
}

// Disconnect closes the websocket session. Safe to call repeatedly and
// from any state.
func (c *Client) Disconnect() error {
	if c.conn == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
	c.writeMu.Unlock()
	err := c.conn.Close()
	if c.done != nil {
		<-c.done
	}
	return err
}

// Items returns a snapshot of the authoritative ordered item list.
// Items are copied out so callers on other goroutines never observe
// the read loop's in-place mutation.
func (c *Client) Items() []*Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Item, len(c.items))
	for i, item := range c.items {
		copied := *item
		copied.Audio = append([]byte(nil), item.Audio...)
		out[i] = &copied
	}
	return out
}

// UpdateSession pushes session configuration, including the currently
// registered tool schemas, to the engine.
func (c *Client) UpdateSession(cfg SessionConfig) error {
	c.mu.Lock()
	c.session = cfg
	wireTools := make([]wireTool, 0, len(c.tools))
	for _, t := range c.tools {
		wireTools = append(wireTools, wireTool{
			Type:        "function",
			Name:        t.def.Name,
			Description: t.def.Description,
			Parameters:  t.def.Parameters,
		})
	}
	c.mu.Unlock()

	session := wireSession{
		Instructions: cfg.Instructions,
		Tools:        wireTools,
	}
	if cfg.TranscriptionModel != "" {
		session.InputAudioTranscription = &wireTranscription{Model: cfg.TranscriptionModel}
	}
	if cfg.TurnDetection == TurnDetectionServerVAD {
		session.TurnDetection = &wireTurnDetection{Type: string(TurnDetectionServerVAD)}
	}
	return c.sendJSON(sessionUpdateEvent{
		EventID: newEventID(),
		Type:    "session.update",
		Session: session,
	})
}

// SendUserMessage creates a user text item and requests a response.
func (c *Client) SendUserMessage(text string) error {
	err := c.sendJSON(itemCreateEvent{
		EventID: newEventID(),
		Type:    "conversation.item.create",
		Item: wireItem{
			Type: string(ItemTypeMessage),
			Role: string(RoleUser),
			Content: []wireContent{
				{Type: "input_text", Text: text},
			},
		},
	})
	if err != nil {
		return err
	}
	return c.createResponse()
}

// AppendInputAudio streams one captured PCM chunk to the input buffer.
// Fire-and-forget; the caller never waits on a confirmation.
func (c *Client) AppendInputAudio(pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}
	return c.sendJSON(audioAppendEvent{
		EventID: newEventID(),
		Type:    "input_audio_buffer.append",
		Audio:   base64.StdEncoding.EncodeToString(pcm),
	})
}

// RequestResponse commits the accumulated input audio and asks the
// engine for exactly one response.
func (c *Client) RequestResponse() error {
	if err := c.sendJSON(simpleEvent{EventID: newEventID(), Type: "input_audio_buffer.commit"}); err != nil {
		return err
	}
	return c.createResponse()
}

func (c *Client) createResponse() error {
	return c.sendJSON(simpleEvent{EventID: newEventID(), Type: "response.create"})
}

// CancelResponse truncates the named assistant item at the given played
// sample offset and cancels the in-flight response, keeping the
// engine's notion of delivered audio consistent with what the user
// actually heard.
func (c *Client) CancelResponse(itemID string, sampleOffset int) error {
	if itemID != "" {
		audioEndMS := int64(sampleOffset) * 1000 / int64(c.cfg.SampleRate)
		if err := c.sendJSON(itemTruncateEvent{
			EventID:    newEventID(),
			Type:       "conversation.item.truncate",
			ItemID:     itemID,
			AudioEndMS: audioEndMS,
		}); err != nil {
			return err
		}
	}
	return c.sendJSON(simpleEvent{EventID: newEventID(), Type: "response.cancel"})
}

// DeleteItem asks the engine to remove one item. The local copy is only
// removed once the deletion event is confirmed, never optimistically.
func (c *Client) DeleteItem(id string) error {
	return c.sendJSON(itemDeleteEvent{
		EventID: newEventID(),
		Type:    "conversation.item.delete",
		ItemID:  id,
	})
}

func newEventID() string {
	return "evt_" + uuid.NewString()
}

func (c *Client) sendJSON(v any) error {
	if c.conn == nil || c.closed.Load() {
		return core.NewConnectionError("send", fmt.Errorf("session is closed"))
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	env, _ := decodeEnvelope(data)
	c.emit(SourceClient, env.Type, data)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// emit surfaces one wire frame through the generic event callback.
func (c *Client) emit(src Source, typ string, payload []byte) {
	c.mu.Lock()
	fn := c.handlers.OnEvent
	c.mu.Unlock()
	if fn == nil {
		return
	}
	fn(Event{
		Time:    time.Now(),
		Source:  src,
		Type:    typ,
		Payload: append(json.RawMessage(nil), payload...),
	})
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.cfg.Logger.Error("realtime read loop terminated", "error", err)
			}
			c.closed.Store(true)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.handleServerEvent(data)
	}
}

// handleServerEvent folds one inbound frame into the item store and
// fires the relevant callbacks. Events are processed strictly in
// arrival order by the single read loop.
func (c *Client) handleServerEvent(data []byte) {
	env, err := decodeEnvelope(data)
	if err != nil {
		c.cfg.Logger.Warn("undecodable realtime frame", "error", err)
		return
	}
	c.emit(SourceServer, env.Type, data)

	switch env.Type {
	case eventTypeError:
		var ev errorEvent
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		c.mu.Lock()
		fn := c.handlers.OnError
		c.mu.Unlock()
		if fn != nil {
			fn(ev.Error)
		}

	case eventTypeSpeechStarted:
		c.mu.Lock()
		fn := c.handlers.OnInterrupted
		c.mu.Unlock()
		if fn != nil {
			fn()
		}

	case eventTypeItemCreated, eventTypeResponseOutputItemAdded:
		var ev itemCreatedEvent
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		item := c.upsertItem(ev.Item)
		c.notifyUpdated(item, nil)

	case eventTypeResponseOutputItemDone:
		var ev outputItemEvent
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		ev.Item.Status = string(StatusCompleted)
		item := c.upsertItem(ev.Item)
		c.notifyUpdated(item, nil)

	case eventTypeItemDeleted:
		var ev itemDeletedEvent
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		c.removeItem(ev.ItemID)
		c.notifyUpdated(nil, nil)

	case eventTypeInputTranscriptionCompleted:
		var ev inputTranscriptionCompletedEvent
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		item := c.mutateItem(ev.ItemID, func(it *Item) {
			it.Transcript = ev.Transcript
			it.Status = StatusCompleted
		})
		c.notifyUpdated(item, &Delta{Transcript: ev.Transcript})

	case eventTypeResponseTextDelta:
		var ev deltaEvent
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		item := c.mutateItem(ev.ItemID, func(it *Item) {
			it.Text += ev.Delta
		})
		c.notifyUpdated(item, &Delta{Text: ev.Delta})

	case eventTypeResponseTranscriptDelta:
		var ev deltaEvent
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		item := c.mutateItem(ev.ItemID, func(it *Item) {
			it.Transcript += ev.Delta
		})
		c.notifyUpdated(item, &Delta{Transcript: ev.Delta})

	case eventTypeResponseAudioDelta:
		var ev deltaEvent
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		pcm, err := base64.StdEncoding.DecodeString(ev.Delta)
		if err != nil {
			c.cfg.Logger.Warn("undecodable audio delta", "item_id", ev.ItemID, "error", err)
			return
		}
		item := c.mutateItem(ev.ItemID, func(it *Item) {
			it.Audio = append(it.Audio, pcm...)
		})
		c.notifyUpdated(item, &Delta{Audio: pcm})

	case eventTypeResponseArgumentsDelta:
		var ev deltaEvent
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		item := c.mutateItem(ev.ItemID, func(it *Item) {
			it.Arguments += ev.Delta
		})
		c.notifyUpdated(item, &Delta{Arguments: ev.Delta})

	case eventTypeResponseArgumentsDone:
		var ev argumentsDoneEvent
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		item := c.mutateItem(ev.ItemID, func(it *Item) {
			it.Name = ev.Name
			it.CallID = ev.CallID
			it.Arguments = ev.Arguments
			it.Status = StatusCompleted
		})
		c.notifyUpdated(item, &Delta{Arguments: ev.Arguments})
		c.dispatchToolCall(ev)
	}
}

func (c *Client) upsertItem(w wireItem) *Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.byID[w.ID]
	if !ok {
		item = &Item{ID: w.ID}
		c.byID[w.ID] = item
		c.items = append(c.items, item)
	}
	item.Type = ItemType(w.Type)
	switch item.Type {
	case ItemTypeFunctionCall, ItemTypeFunctionCallOutput:
		item.Role = RoleTool
	default:
		if w.Role != "" {
			item.Role = Role(w.Role)
		}
	}
	if w.Status != "" {
		item.Status = Status(w.Status)
	} else if item.Status == "" {
		item.Status = StatusInProgress
	}
	if w.CallID != "" {
		item.CallID = w.CallID
	}
	if w.Name != "" {
		item.Name = w.Name
	}
	if w.Arguments != "" {
		item.Arguments = w.Arguments
	}
	if w.Output != "" {
		item.Output = w.Output
	}
	for _, content := range w.Content {
		switch content.Type {
		case "text", "input_text":
			if content.Text != "" {
				item.Text = content.Text
			}
		case "audio", "input_audio":
			if content.Transcript != "" {
				item.Transcript = content.Transcript
			}
		}
	}
	return item
}

func (c *Client) mutateItem(id string, fn func(*Item)) *Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.byID[id]
	if !ok {
		// Deltas can race item creation; synthesize a placeholder so
		// ordering stays append-only.
		item = &Item{ID: id, Type: ItemTypeMessage, Role: RoleAssistant, Status: StatusInProgress}
		c.byID[id] = item
		c.items = append(c.items, item)
	}
	fn(item)
	return item
}

func (c *Client) removeItem(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[id]; !ok {
		return
	}
	delete(c.byID, id)
	filtered := c.items[:0]
	for _, item := range c.items {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	c.items = filtered
}

func (c *Client) notifyUpdated(item *Item, delta *Delta) {
	c.mu.Lock()
	fn := c.handlers.OnUpdated
	c.mu.Unlock()
	if fn == nil {
		return
	}
	fn(ItemUpdate{Item: item, Delta: delta})
}

// dispatchToolCall runs the registered executor for a completed
// function call and relays its result (or failure) back to the engine.
// Failures surface as tool-execution errors, never as session faults.
func (c *Client) dispatchToolCall(call argumentsDoneEvent) {
	c.mu.Lock()
	tool, ok := c.tools[call.Name]
	c.mu.Unlock()
	ctx := c.ctx

	go func() {
		var output json.RawMessage
		if !ok {
			output = mustMarshal(map[string]any{"error": fmt.Sprintf("tool %q is not registered", call.Name)})
		} else {
			args := map[string]any{}
			if strings.TrimSpace(call.Arguments) != "" {
				if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
					output = mustMarshal(map[string]any{"error": fmt.Sprintf("invalid tool arguments: %v", err)})
				}
			}
			if output == nil {
				result, err := tool.exec(ctx, args)
				if err != nil {
					c.cfg.Logger.Warn("tool execution failed", "tool", call.Name, "error", err)
					output = mustMarshal(map[string]any{"error": core.NewToolError(call.Name, err).Error()})
				} else {
					output = result
				}
			}
		}

		if err := c.sendJSON(itemCreateEvent{
			EventID: newEventID(),
			Type:    "conversation.item.create",
			Item: wireItem{
				Type:   string(ItemTypeFunctionCallOutput),
				CallID: call.CallID,
				Output: string(output),
			},
		}); err != nil {
			return
		}
		_ = c.createResponse()
	}()
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}
