package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vango-go/vai-console/pkg/audio"
	"github.com/vango-go/vai-console/pkg/console"
	"github.com/vango-go/vai-console/pkg/realtime"
	"github.com/vango-go/vai-console/pkg/tools"
)

const defaultRealtimeURL = "wss://api.openai.com/v1/realtime?model=gpt-4o-realtime-preview-2024-10-01"

type consoleConfig struct {
	RealtimeURL   string
	APIKey        string
	ToolsURL      string
	ToolsUsername string
	ToolsPassword string
	MetricsAddr   string
	Instructions  string
}

func loadConfig() consoleConfig {
	_ = godotenv.Load()

	cfg := consoleConfig{
		RealtimeURL:   envOr("VAI_CONSOLE_REALTIME_URL", defaultRealtimeURL),
		APIKey:        firstEnv("VAI_CONSOLE_API_KEY", "OPENAI_API_KEY"),
		ToolsURL:      os.Getenv("VAI_CONSOLE_TOOLS_URL"),
		ToolsUsername: os.Getenv("VAI_CONSOLE_TOOLS_USERNAME"),
		ToolsPassword: os.Getenv("VAI_CONSOLE_TOOLS_PASSWORD"),
		MetricsAddr:   os.Getenv("VAI_CONSOLE_METRICS_ADDR"),
	}

	flag.StringVar(&cfg.RealtimeURL, "url", cfg.RealtimeURL, "realtime engine websocket URL")
	flag.StringVar(&cfg.ToolsURL, "tools-url", cfg.ToolsURL, "tool backend base URL (disables tools when empty)")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "prometheus listen address (disabled when empty)")
	flag.StringVar(&cfg.Instructions, "instructions", cfg.Instructions, "override the session system prompt")
	flag.Parse()
	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func main() {
	cfg := loadConfig()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if cfg.APIKey == "" {
		logger.Error("missing API key (set VAI_CONSOLE_API_KEY or OPENAI_API_KEY)")
		os.Exit(1)
	}

	client := realtime.NewClient(realtime.Config{
		URL:    cfg.RealtimeURL,
		APIKey: cfg.APIKey,
		Logger: logger,
	})

	var provider console.ToolProvider
	if cfg.ToolsURL != "" {
		provider = tools.NewRegistry(tools.Config{
			BaseURL:  cfg.ToolsURL,
			Username: cfg.ToolsUsername,
			Password: cfg.ToolsPassword,
			Logger:   logger,
		}, tools.DefaultCatalog())
	}

	metrics := console.NewMetrics("")
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			logger.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
	}

	orch := console.New(client, audio.NewMalgoSource(), audio.NewOtoSink(), provider, console.Config{
		Instructions: cfg.Instructions,
		Logger:       logger,
		Metrics:      metrics,
	})

	fmt.Println("vai-console — realtime voice assistant")
	fmt.Println("commands: /connect /disconnect /talk /release /mode manual|vad /say <text> /items /log /delete <id> /exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("(%s)> ", orch.State())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/exit" || line == "/quit" {
			break
		}
		runCommand(orch, line)
	}

	orch.Disconnect()
}

func runCommand(orch *console.Orchestrator, line string) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch cmd {
	case "/connect":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = orch.Connect(ctx)
		cancel()
	case "/disconnect":
		orch.Disconnect()
	case "/talk":
		err = orch.StartPushToTalk()
		if err == nil {
			fmt.Println("recording; /release to send")
		}
	case "/release":
		err = orch.StopPushToTalk()
	case "/mode":
		switch rest {
		case "manual":
			err = orch.SetTurnMode(console.TurnModeManual)
		case "vad":
			err = orch.SetTurnMode(console.TurnModeServerVAD)
		default:
			fmt.Println("usage: /mode manual|vad")
		}
	case "/say":
		if rest == "" {
			fmt.Println("usage: /say <text>")
			return
		}
		err = orch.SendText(rest)
	case "/items":
		printItems(orch)
	case "/log":
		printLog(orch)
	case "/delete":
		if rest == "" {
			fmt.Println("usage: /delete <item-id>")
			return
		}
		err = orch.DeleteItem(rest)
	default:
		fmt.Println("unknown command; try /connect /disconnect /talk /release /mode /say /items /log /delete /exit")
	}
	if err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func printItems(orch *console.Orchestrator) {
	items := orch.Timeline().Items()
	if len(items) == 0 {
		fmt.Println("(timeline is empty)")
		return
	}
	for _, item := range items {
		// Function-call items stay in the data but are not part of the
		// spoken transcript.
		if item.Role == realtime.RoleTool {
			fmt.Printf("  [%s] %s %s(%s)\n", item.ID, item.Type, item.Name, item.Arguments)
			continue
		}
		text := item.Transcript
		if text == "" {
			text = item.Text
		}
		marker := ""
		if item.Status != realtime.StatusCompleted {
			marker = " …"
		}
		fmt.Printf("  [%s] %s: %s%s\n", item.ID, item.Role, text, marker)
	}
}

func printLog(orch *console.Orchestrator) {
	entries := orch.EventLog().Entries()
	if len(entries) == 0 {
		fmt.Println("(event log is empty)")
		return
	}
	for _, entry := range entries {
		count := ""
		if entry.Count > 1 {
			count = fmt.Sprintf(" (x%d)", entry.Count)
		}
		tag := ""
		if entry.IsError {
			tag = " !"
		}
		fmt.Printf("  %8.2fs %-6s %s%s%s\n",
			entry.At.Seconds(), entry.Source, entry.Type, count, tag)
	}
}
