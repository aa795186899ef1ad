package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vango-go/vai-console/pkg/core"
)

// Definition is one data-driven tool entry: the schema advertised to
// the engine plus the endpoint the generic executor calls. All tools
// share the same shape, so there is exactly one executor.
type Definition struct {
	Name        string
	Description string
	// Parameters is the JSON schema of the flat argument object.
	Parameters map[string]any
	// Endpoint is the path of the backing lookup, relative to the
	// registry base URL.
	Endpoint string
	// Defaults are substituted for absent arguments before the call.
	Defaults map[string]any
}

// Config configures the registry's HTTP backend.
type Config struct {
	// BaseURL of the tool backend; one endpoint per tool under it.
	BaseURL string
	// Username and Password for basic authentication.
	Username string
	Password string
	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Registry executes remote tool lookups by name. All current tools are
// read-only; the registry treats none of them specially.
type Registry struct {
	cfg    Config
	defs   []Definition
	byName map[string]Definition
}

// NewRegistry creates a registry over the given definitions.
func NewRegistry(cfg Config, defs []Definition) *Registry {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	byName := make(map[string]Definition, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}
	return &Registry{cfg: cfg, defs: defs, byName: byName}
}

// Definitions returns the catalog in registration order.
func (r *Registry) Definitions() []Definition {
	return r.defs
}

// Execute performs the remote lookup for one tool call. Input is a
// flat argument object; defaults fill absent keys; output is whatever
// JSON the lookup returns. Failures propagate to the caller, which
// surfaces them to the engine as tool-execution errors.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	def, ok := r.byName[name]
	if !ok {
		return nil, core.NewInvalidRequestError(fmt.Sprintf("unknown tool %q", name))
	}

	merged := make(map[string]any, len(def.Defaults)+len(args))
	for k, v := range def.Defaults {
		merged[k] = v
	}
	for k, v := range args {
		merged[k] = v
	}

	body, err := json.Marshal(merged)
	if err != nil {
		return nil, core.NewInvalidRequestError(fmt.Sprintf("encode arguments for %q: %v", name, err))
	}

	url := strings.TrimRight(r.cfg.BaseURL, "/") + def.Endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.Username != "" {
		req.SetBasicAuth(r.cfg.Username, r.cfg.Password)
	}

	resp, err := r.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, core.NewToolError(name, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, core.NewToolError(name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.cfg.Logger.Warn("tool backend rejected call",
			"tool", name, "status", resp.StatusCode)
		return nil, core.NewAPIError(fmt.Sprintf("tool %q failed with status %d: %s",
			name, resp.StatusCode, strings.TrimSpace(string(payload))))
	}
	if !json.Valid(payload) {
		return nil, core.NewToolError(name, fmt.Errorf("backend returned invalid JSON"))
	}
	return json.RawMessage(payload), nil
}
