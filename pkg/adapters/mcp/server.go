package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/workpad"
	"github.com/aretw0/workpad/internal/logging"
	"github.com/aretw0/workpad/pkg/codec"
	"github.com/aretw0/workpad/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Sessions is the workpad access the MCP server needs (implemented by session.Manager).
type Sessions interface {
	Load(ctx context.Context, id string) (*domain.Workpad, error)
	List(ctx context.Context) ([]string, error)
	Apply(ctx context.Context, id string, cmds ...domain.Command) (*domain.Workpad, *domain.WorkpadDiff, error)
}

// ApplyResult is the payload returned by apply_command.
type ApplyResult struct {
	Workpad *domain.Workpad     `json:"workpad"`
	Diff    *domain.WorkpadDiff `json:"diff"`
}

// Server exposes workpad editing as MCP tools.
type Server struct {
	sessions  Sessions
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. A nil logger discards output.
func NewServer(sessions Sessions, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		sessions:  sessions,
		logger:    logger,
		mcpServer: server.NewMCPServer("workpad-mcp", strings.TrimSpace(workpad.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_workpads",
		mcp.WithDescription("List the IDs of all stored workpads."),
	), s.handleListWorkpads)

	s.mcpServer.AddTool(mcp.NewTool("get_workpad",
		mcp.WithDescription("Get a workpad document with all of its pages, elements and groups."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Workpad ID")),
	), s.handleGetWorkpad)

	s.mcpServer.AddTool(mcp.NewTool("get_element",
		mcp.WithDescription("Get one element or group of a workpad page."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Workpad ID")),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Page ID")),
		mcp.WithString("element_id", mcp.Required(), mcp.Description("Element or group ID")),
	), s.handleGetElement)

	s.mcpServer.AddTool(mcp.NewTool("apply_command",
		mcp.WithDescription("Apply an edit command to a workpad. "+
			"The command is a JSON envelope {\"type\": ..., \"payload\": {...}} or {\"commands\": [...]} for a batch. "+
			"Types: "+kindList()+". Layer movements are integers or \"Infinity\"/\"-Infinity\"."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Workpad ID")),
		mcp.WithString("command", mcp.Required(), mcp.Description("JSON command envelope or batch")),
	), s.handleApplyCommand)
}

func kindList() string {
	kinds := make([]string, len(domain.Kinds))
	for i, k := range domain.Kinds {
		kinds[i] = string(k)
	}
	return strings.Join(kinds, ", ")
}

func (s *Server) handleListWorkpads(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workpads: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return jsonResult(ids)
}

func (s *Server) handleGetWorkpad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	wp, err := s.sessions.Load(ctx, id)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(wp)
}

func (s *Server) handleGetElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pageID := req.GetString("page_id", "")
	elementID := req.GetString("element_id", "")

	wp, err := s.sessions.Load(ctx, id)
	if err != nil {
		return toolError(err)
	}
	el, _, ok := wp.FindNode(pageID, elementID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("element %s not found on page %s", elementID, pageID)), nil
	}
	return jsonResult(el)
}

func (s *Server) handleApplyCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cmds, err := codec.DecodeScriptCommands([]byte(raw), codec.FormatJSON)
	if err != nil {
		s.logger.Warn("MCP apply_command: Invalid command", "workpad_id", id, "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("invalid command: %v", err)), nil
	}

	wp, diff, err := s.sessions.Apply(ctx, id, cmds...)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(ApplyResult{Workpad: wp, Diff: diff})
}

// toolError reports domain failures to the model as tool errors and
// everything else as protocol errors.
func toolError(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, domain.ErrWorkpadNotFound),
		errors.Is(err, domain.ErrInvalidMovement),
		errors.Is(err, domain.ErrUnknownCommand):
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
