package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nick-dorsch/tasklist/internal/db"
	"github.com/nick-dorsch/tasklist/internal/store"
	"github.com/nick-dorsch/tasklist/pkg/models"
)

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	if tool == nil {
		t.Fatalf("tool %s not registered", name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := tool.Handler(context.Background(), req)
	if err != nil {
		t.Fatalf("%s handler failed: %v", name, err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("expected content in result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func decodeTask(t *testing.T, res *mcp.CallToolResult) *models.Task {
	t.Helper()
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	var out struct {
		Task *models.Task `json:"task"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("failed to decode task: %v", err)
	}
	if out.Task == nil {
		t.Fatal("expected task in result")
	}
	return out.Task
}

func countTasks(t *testing.T, s store.TaskStore) int {
	t.Helper()
	tasks, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	return len(tasks)
}

func TestServerInitialization(t *testing.T) {
	s := NewServer(store.NewMemory())
	stdio := server.NewStdioServer(s)

	r, w := io.Pipe()
	stdout := &bytes.Buffer{}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- stdio.Listen(ctx, r, stdout)
	}()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}

	rawReq := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params":  initReq.Params,
	}

	data, err := json.Marshal(rawReq)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	w.Write(data)
	w.Write([]byte("\n"))

	time.Sleep(200 * time.Millisecond)

	if stdout.Len() == 0 {
		t.Fatal("Expected response from server, got none")
	}

	var resp struct {
		ID     int `json:"id"`
		Result struct {
			ServerInfo struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
		} `json:"result"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v\nOutput: %s", err, stdout.String())
	}

	if resp.ID != 1 {
		t.Errorf("Expected id 1, got %v", resp.ID)
	}
	if resp.Result.ServerInfo.Name != ServerName {
		t.Errorf("Expected server name %s, got %v", ServerName, resp.Result.ServerInfo.Name)
	}
	if resp.Result.ServerInfo.Version != ServerVersion {
		t.Errorf("Expected server version %s, got %v", ServerVersion, resp.Result.ServerInfo.Version)
	}
}

func TestToolHandlers(t *testing.T) {
	database, err := db.Open(context.Background())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	s := NewServer(database)
	var first, second *models.Task

	t.Run("create_task", func(t *testing.T) {
		first = decodeTask(t, callTool(t, s, "create_task", map[string]interface{}{"text": "  Buy milk  "}))
		if first.Text != "Buy milk" {
			t.Errorf("expected trimmed text, got %q", first.Text)
		}
		if first.Done {
			t.Error("expected new task to be active")
		}
		second = decodeTask(t, callTool(t, s, "create_task", map[string]interface{}{"text": "Walk dog"}))
	})

	t.Run("create_task blank", func(t *testing.T) {
		res := callTool(t, s, "create_task", map[string]interface{}{"text": "   "})
		if res.IsError {
			t.Fatalf("blank text should not be an error: %s", resultText(t, res))
		}
		if !strings.Contains(resultText(t, res), "ignored") {
			t.Errorf("expected ignored message, got %s", resultText(t, res))
		}
	})

	t.Run("toggle_task", func(t *testing.T) {
		task := decodeTask(t, callTool(t, s, "toggle_task", map[string]interface{}{"id": first.ID}))
		if !task.Done {
			t.Error("expected task to be done")
		}
		task = decodeTask(t, callTool(t, s, "toggle_task", map[string]interface{}{"id": first.ID}))
		if task.Done {
			t.Error("expected second toggle to restore active")
		}
	})

	t.Run("list_tasks", func(t *testing.T) {
		res := callTool(t, s, "list_tasks", nil)
		var out struct {
			Tasks []*models.Task `json:"tasks"`
		}
		if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
			t.Fatalf("failed to decode tasks: %v", err)
		}
		if len(out.Tasks) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(out.Tasks))
		}
		if out.Tasks[0].ID != first.ID || out.Tasks[1].ID != second.ID {
			t.Error("expected tasks in insertion order")
		}
	})

	t.Run("delete_task", func(t *testing.T) {
		res := callTool(t, s, "delete_task", map[string]interface{}{"id": first.ID})
		if res.IsError {
			t.Fatalf("delete failed: %s", resultText(t, res))
		}

		res = callTool(t, s, "delete_task", map[string]interface{}{"id": first.ID})
		if !res.IsError {
			t.Error("expected error deleting a missing task")
		}
		if !strings.Contains(resultText(t, res), "not found") {
			t.Errorf("expected not found message, got %s", resultText(t, res))
		}

		res = callTool(t, s, "toggle_task", map[string]interface{}{"id": first.ID})
		if !res.IsError {
			t.Error("expected error toggling a deleted task")
		}
	})

	t.Run("clear_tasks requires confirm", func(t *testing.T) {
		res := callTool(t, s, "clear_tasks", nil)
		if res.IsError {
			t.Fatalf("unconfirmed clear should not be an error: %s", resultText(t, res))
		}
		total := countTasks(t, database)
		if total != 1 {
			t.Errorf("expected unconfirmed clear to keep tasks, got %d", total)
		}

		callTool(t, s, "clear_tasks", map[string]interface{}{"confirm": false})
		total = countTasks(t, database)
		if total != 1 {
			t.Errorf("expected declined clear to keep tasks, got %d", total)
		}
	})

	t.Run("clear_tasks", func(t *testing.T) {
		res := callTool(t, s, "clear_tasks", map[string]interface{}{"confirm": true})
		if res.IsError {
			t.Fatalf("clear failed: %s", resultText(t, res))
		}
		total := countTasks(t, database)
		if total != 0 {
			t.Errorf("expected empty list, got %d", total)
		}

		task := decodeTask(t, callTool(t, s, "create_task", map[string]interface{}{"text": "fresh start"}))
		if task.ID == first.ID || task.ID == second.ID {
			t.Error("expected a never-used id after clear")
		}
	})
}
