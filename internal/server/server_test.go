package server

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/BespalovSergey/banners/internal/cleartext"
)

func newTestServer(detector *fakeDetector) *Server {
	deleter := cleartext.NewDeleter(detector, &copyInpainter{})
	return New(cleartext.NewRemover(deleter))
}

func TestNew(t *testing.T) {
	s := newTestServer(&fakeDetector{})
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
	if s.remover == nil {
		t.Fatal("New() did not keep the remover")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}

			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(&fakeDetector{})
	req := &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"}

	resp := s.handleRequest(t.Context(), req)

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if serverInfo["name"] != "banner-clear" {
		t.Errorf("serverInfo.name: got %v", serverInfo["name"])
	}
	if serverInfo["version"] != Version {
		t.Errorf("serverInfo.version: got %v, want %s", serverInfo["version"], Version)
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(&fakeDetector{})
	resp := s.handleRequest(t.Context(), &MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer(&fakeDetector{})
	resp := s.handleRequest(t.Context(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("got %d tools, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := newTestServer(&fakeDetector{})
	resp := s.handleRequest(t.Context(), &MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"})

	// Notifications don't get responses
	if resp != nil {
		t.Error("notifications/initialized should return nil response")
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer(&fakeDetector{})
	resp := s.handleRequest(t.Context(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "nonexistent/method"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error == nil {
		t.Fatal("Expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Error code: got %d, want -32601", resp.Error.Code)
	}
}

func TestServe(t *testing.T) {
	s := newTestServer(&fakeDetector{})

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	}, "\n")

	var out strings.Builder
	if err := s.Serve(t.Context(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	var ids []float64
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var resp MCPResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("bad response line %q: %v", scanner.Text(), err)
		}
		ids = append(ids, resp.ID.(float64))
	}

	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("response ids: got %v, want [1 2]", ids)
	}
}

func TestServe_CancelledContext(t *testing.T) {
	s := newTestServer(&fakeDetector{})
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var out strings.Builder
	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	if err == nil {
		t.Fatal("Serve should stop on a cancelled context")
	}
	if out.Len() != 0 {
		t.Errorf("no responses expected, got %q", out.String())
	}
}
