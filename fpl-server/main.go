package main

import (
	"context"
	"crypto/subtle"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fpl-query-mcp/internal/config"
	"fpl-query-mcp/internal/fetch"
	"fpl-query-mcp/internal/logging"
	"fpl-query-mcp/internal/metrics"
	"fpl-query-mcp/internal/store"
)

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func main() {
	var (
		configPath  = flag.String("config", "", "path to YAML config file")
		addr        = flag.String("addr", "", "HTTP listen address (overrides config)")
		cacheDir    = flag.String("cache-dir", "", "root directory for cached payloads (overrides config)")
		requireAuth = flag.Bool("require-auth", false, "require API key auth via FPL_MCP_API_KEY")
		authHeader  = flag.String("auth-header", "X-API-Key", "HTTP header to read API key from")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *cacheDir != "" {
		cfg.Cache.Dir = *cacheDir
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), logging.FileConfig{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer func() { _ = logger.Sync() }()

	mux := http.NewServeMux()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		m = metrics.New(reg)
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	client := fetch.NewClient(fetch.Config{
		BaseURL:           cfg.Upstream.BaseURL,
		UserAgent:         cfg.Upstream.UserAgent,
		Timeout:           cfg.Upstream.Timeout,
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		Burst:             cfg.Upstream.Burst,
	}, logger, m)
	st := store.New(cfg.Cache.Dir, cfg.Cache.Policy, client, logger, m)
	a := &app{store: st, log: logger, metrics: m}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fpl-query-mcp",
			Version: "0.1.0",
		},
		nil,
	)

	registry := make([]toolInfo, 0, 4)

	addTool(server, &registry, &mcp.Tool{
		Name:        "query",
		Description: "Filter, sort and limit FPL players, fixtures or teams",
	}, a.queryHandler())

	addTool(server, &registry, &mcp.Tool{
		Name:        "team_summary",
		Description: "Aggregate a team's last N completed fixtures (record, goals, points)",
	}, a.teamSummaryHandler())

	addTool(server, &registry, &mcp.Tool{
		Name:        "player_history",
		Description: "Gameweek-by-gameweek stats for one player this season",
	}, a.playerHistoryHandler())

	addTool(server, &registry, &mcp.Tool{
		Name:        "team_picks",
		Description: "Squad picks for an FPL entry in a gameweek, with captaincy",
	}, a.teamPicksHandler())

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	apiKey := strings.TrimSpace(os.Getenv("FPL_MCP_API_KEY"))
	if *requireAuth && apiKey == "" {
		logger.Fatal("FPL_MCP_API_KEY is required (set env var or run with --require-auth=false)")
	}

	withAuth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next(w, r)
				return
			}
			key := strings.TrimSpace(r.Header.Get(*authHeader))
			if key == "" {
				if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					key = strings.TrimSpace(authz[7:])
				}
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("/health", withAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))

	mux.HandleFunc("/tools", withAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		b, _ := sonic.MarshalIndent(map[string]any{"tools": registry}, "", "  ")
		w.Write(b)
	}))

	mux.HandleFunc(cfg.Server.MCPPath, withAuth(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))

	logger.Info("MCP HTTP server listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("path", cfg.Server.MCPPath),
		zap.String("cache_dir", cfg.Cache.Dir),
		zap.String("cache_policy", cfg.Cache.Policy))
	if err := http.ListenAndServe(cfg.Server.Addr, mux); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
