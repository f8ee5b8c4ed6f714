package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Gateway translates MCP tool calls into graph API requests.
type Gateway struct {
	apiURL   string
	client   *http.Client
	logger   *zap.Logger
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewGateway(apiURL string, reg prometheus.Registerer, logger *zap.Logger) (*Gateway, error) {
	g := &Gateway{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		client: &http.Client{Timeout: 60 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger: logging.OrNop(logger).Named("mcp"),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcp_requests_total",
				Help: "Total number of MCP requests",
			},
			[]string{"method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "mcp_request_duration_seconds",
				Help: "Duration of MCP requests",
			},
			[]string{"method"},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{g.requests, g.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Routes mounts the MCP endpoints on r.
func (g *Gateway) Routes(r *mux.Router) {
	r.HandleFunc("/mcp", g.handleMCP).Methods(http.MethodPost)
	r.HandleFunc("/tools/list", g.handleToolsList).Methods(http.MethodGet)
	r.HandleFunc("/health", g.handleHealth).Methods(http.MethodGet)
}

func (g *Gateway) handleMCP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.requests.WithLabelValues("", "error").Inc()
		writeJSON(w, errorResponse("", codeParseError, "Parse error"))
		return
	}
	defer func() {
		g.duration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	}()

	resp := g.Dispatch(r.Context(), req)
	status := "success"
	if resp.Error != nil {
		status = "error"
		g.logger.Warn("mcp request failed",
			zap.String("method", req.Method),
			zap.Int("code", resp.Error.Code),
			zap.String("message", resp.Error.Message))
	}
	g.requests.WithLabelValues(req.Method, status).Inc()
	writeJSON(w, resp)
}

// Dispatch answers one MCP request.
func (g *Gateway) Dispatch(ctx context.Context, req Request) Response {
	var resp Response
	switch req.Method {
	case "tools/list":
		resp = Response{Result: map[string]any{"tools": Tools()}}
	case "tools/call":
		resp = g.callTool(ctx, req)
	default:
		resp = errorResponse(req.ID, codeMethodNotFound, "Method not found")
	}
	resp.ID = req.ID
	return resp
}

func (g *Gateway) callTool(ctx context.Context, req Request) Response {
	name, ok := req.Params["name"].(string)
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, "Invalid tool name")
	}
	args, _ := req.Params["arguments"].(map[string]any)

	switch name {
	case "query_knowledge_graph":
		if str(args, "query") == "" {
			return errorResponse(req.ID, codeInvalidParams, "query is required")
		}
		return g.callAPI(ctx, http.MethodPost, "/api/query", map[string]any{
			"query": str(args, "query"),
			"hops":  num(args, "hops"),
			"k":     num(args, "k"),
		})
	case "get_neighbors":
		entity := str(args, "entity")
		if entity == "" {
			return errorResponse(req.ID, codeInvalidParams, "entity is required")
		}
		path := "/api/entities/" + url.PathEscape(entity) + "/neighbors"
		if hops := num(args, "hops"); hops > 0 {
			path += fmt.Sprintf("?hops=%d", hops)
		}
		return g.callAPI(ctx, http.MethodGet, path, nil)
	case "add_triplet":
		return g.callAPI(ctx, http.MethodPost, "/api/triplets", map[string]any{
			"source":   str(args, "source"),
			"target":   str(args, "target"),
			"relation": str(args, "relation"),
		})
	case "ingest_text":
		return g.callAPI(ctx, http.MethodPost, "/api/upload", map[string]any{
			"text":  str(args, "text"),
			"title": str(args, "title"),
		})
	case "get_graph":
		return g.callAPI(ctx, http.MethodGet, "/api/graph", nil)
	default:
		return errorResponse(req.ID, codeMethodNotFound, "Tool not found")
	}
}

func (g *Gateway) callAPI(ctx context.Context, method, path string, body any) Response {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errorResponse("", codeRequestBuild, fmt.Sprintf("Failed to marshal request body: %v", err))
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.apiURL+path, reqBody)
	if err != nil {
		return errorResponse("", codeRequestBuild, fmt.Sprintf("Failed to create request: %v", err))
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return errorResponse("", codeRequestFailed, fmt.Sprintf("Graph API request failed: %v", err))
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResponse("", codeReadFailed, fmt.Sprintf("Failed to read response: %v", err))
	}
	if resp.StatusCode >= 400 {
		return errorResponse("", codeServiceError,
			fmt.Sprintf("Graph API returned error %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody))))
	}

	var result any
	if len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, &result); err != nil {
			result = map[string]any{
				"raw_response": string(responseBody),
				"content_type": resp.Header.Get("Content-Type"),
			}
		}
	}
	return Response{Result: result}
}

func (g *Gateway) handleToolsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"tools": Tools()})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy"})
}

func str(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// num reads an integer argument; JSON numbers arrive as float64.
func num(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
