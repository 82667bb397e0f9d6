package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nick-dorsch/tasklist/internal/store"
	"github.com/nick-dorsch/tasklist/pkg/models"
)

const (
	ServerName    = "Tasklist"
	ServerVersion = "0.1.0"
)

// NewServer exposes the task list intents as MCP tools.
func NewServer(s store.TaskStore) *server.MCPServer {
	srv := server.NewMCPServer(ServerName, ServerVersion)

	srv.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Append a task to the end of the list. Surrounding whitespace is trimmed; blank text is ignored."),
		mcp.WithString("text", mcp.Description("Task text"), mcp.Required()),
	), createTaskHandler(s))

	srv.AddTool(mcp.NewTool("toggle_task",
		mcp.WithDescription("Mark a task done, or active again if it is already done."),
		mcp.WithString("id", mcp.Description("Task ID"), mcp.Required()),
	), toggleTaskHandler(s))

	srv.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a single task."),
		mcp.WithString("id", mcp.Description("Task ID"), mcp.Required()),
	), deleteTaskHandler(s))

	srv.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List all tasks in the order they were added."),
	), listTasksHandler(s))

	srv.AddTool(mcp.NewTool("clear_tasks",
		mcp.WithDescription("Delete every task. Nothing happens unless confirm is true; ask the user before confirming."),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to delete all tasks.")),
	), clearTasksHandler(s))

	return srv
}

// Serve starts the MCP server on stdio. Protocol errors go to logger.
func Serve(s *server.MCPServer, logger *slog.Logger) error {
	if logger == nil {
		return server.ServeStdio(s)
	}
	return server.ServeStdio(s, server.WithErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)))
}

func createTaskHandler(s store.TaskStore) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text := mcp.ParseString(request, "text", "")

		t, err := s.Create(ctx, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if t == nil {
			return mcp.NewToolResultText("ignored: blank task"), nil
		}

		return taskResult(t)
	}
}

func toggleTaskHandler(s store.TaskStore) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		t, err := s.ToggleDone(ctx, id)
		if err != nil {
			return notFoundOrError(err, id), nil
		}

		return taskResult(t)
	}
}

func deleteTaskHandler(s store.TaskStore) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		if err := s.Delete(ctx, id); err != nil {
			return notFoundOrError(err, id), nil
		}

		return mcp.NewToolResultText("Task deleted successfully"), nil
	}
}

func listTasksHandler(s store.TaskStore) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := s.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]any{"tasks": tasks})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func clearTasksHandler(s store.TaskStore) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		if confirm, _ := args["confirm"].(bool); !confirm {
			return mcp.NewToolResultText("not confirmed: no tasks were deleted"), nil
		}

		if err := s.Clear(ctx); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText("All tasks deleted"), nil
	}
}

func taskResult(t *models.Task) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(map[string]any{"task": t})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func notFoundOrError(err error, id string) *mcp.CallToolResult {
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id))
	}
	return mcp.NewToolResultError(err.Error())
}
