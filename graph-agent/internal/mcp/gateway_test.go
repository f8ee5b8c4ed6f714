package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

func fakeAPI(t *testing.T, status int) (*httptest.Server, *[]seenRequest) {
	t.Helper()
	var seen []seenRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := seenRequest{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.RawQuery}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			assert.NoError(t, json.Unmarshal(b, &req.Body))
		}
		seen = append(seen, req)
		w.WriteHeader(status)
		if status >= 400 {
			w.Write([]byte(`{"error": "bad request"}`))
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func call(name string, args map[string]any) Request {
	return Request{ID: "1", Method: "tools/call", Params: map[string]any{"name": name, "arguments": args}}
}

func TestDispatchToolsList(t *testing.T) {
	g, err := NewGateway("http://unused", nil, nil)
	require.NoError(t, err)

	resp := g.Dispatch(context.Background(), Request{ID: "7", Method: "tools/list"})
	require.Nil(t, resp.Error)
	assert.Equal(t, "7", resp.ID)
	tools := resp.Result.(map[string]any)["tools"].([]Tool)
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"query_knowledge_graph", "get_neighbors", "add_triplet", "ingest_text", "get_graph"}, names)
}

func TestDispatchProxiesTools(t *testing.T) {
	api, seen := fakeAPI(t, http.StatusOK)
	g, err := NewGateway(api.URL+"/", nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	resp := g.Dispatch(ctx, call("query_knowledge_graph", map[string]any{"query": "Apple", "hops": float64(1)}))
	require.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"ok": true}, resp.Result)

	resp = g.Dispatch(ctx, call("get_neighbors", map[string]any{"entity": "Steve Jobs", "hops": float64(2)}))
	require.Nil(t, resp.Error)
	resp = g.Dispatch(ctx, call("add_triplet", map[string]any{"source": "Apple", "target": "iPhone", "relation": "released"}))
	require.Nil(t, resp.Error)
	resp = g.Dispatch(ctx, call("ingest_text", map[string]any{"text": "Apple released the iPhone."}))
	require.Nil(t, resp.Error)
	resp = g.Dispatch(ctx, call("get_graph", nil))
	require.Nil(t, resp.Error)

	require.Len(t, *seen, 5)
	assert.Equal(t, seenRequest{Method: "POST", Path: "/api/query",
		Body: map[string]any{"query": "Apple", "hops": float64(1), "k": float64(0)}}, (*seen)[0])
	assert.Equal(t, "/api/entities/Steve%20Jobs/neighbors", (*seen)[1].Path)
	assert.Equal(t, "hops=2", (*seen)[1].Query)
	assert.Equal(t, "/api/triplets", (*seen)[2].Path)
	assert.Equal(t, "released", (*seen)[2].Body["relation"])
	assert.Equal(t, "/api/upload", (*seen)[3].Path)
	assert.Equal(t, "GET", (*seen)[4].Method)
}

func TestDispatchErrors(t *testing.T) {
	api, _ := fakeAPI(t, http.StatusBadRequest)
	g, err := NewGateway(api.URL, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	cases := []struct {
		name string
		req  Request
		code int
	}{
		{"unknown method", Request{ID: "1", Method: "resources/list"}, codeMethodNotFound},
		{"missing tool name", Request{ID: "1", Method: "tools/call"}, codeInvalidParams},
		{"unknown tool", call("get_weather", nil), codeMethodNotFound},
		{"missing query", call("query_knowledge_graph", map[string]any{}), codeInvalidParams},
		{"missing entity", call("get_neighbors", map[string]any{}), codeInvalidParams},
		{"api error", call("add_triplet", map[string]any{"source": "A"}), codeServiceError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := g.Dispatch(ctx, tc.req)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.code, resp.Error.Code)
			assert.Equal(t, "1", resp.ID)
		})
	}
}

func TestDispatchUnreachableAPI(t *testing.T) {
	g, err := NewGateway("http://127.0.0.1:1", nil, nil)
	require.NoError(t, err)
	resp := g.Dispatch(context.Background(), call("get_graph", nil))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeRequestFailed, resp.Error.Code)
}

func TestHandleMCP(t *testing.T) {
	reg := prometheus.NewRegistry()
	g, err := NewGateway("http://unused", reg, nil)
	require.NoError(t, err)
	r := mux.NewRouter()
	g.Routes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	body, _ := json.Marshal(Request{ID: "9", Method: "tools/list"})
	resp, err := http.Post(srv.URL+"/mcp", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "9", out.ID)
	assert.Nil(t, out.Error)

	bad, err := http.Post(srv.URL+"/mcp", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	defer bad.Body.Close()
	var badOut Response
	require.NoError(t, json.NewDecoder(bad.Body).Decode(&badOut))
	require.NotNil(t, badOut.Error)
	assert.Equal(t, codeParseError, badOut.Error.Code)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewGatewayDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewGateway("http://a", reg, nil)
	require.NoError(t, err)
	_, err = NewGateway("http://a", reg, nil)
	assert.Error(t, err)
}
