package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/plan"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Machine defines the interface required by the MCP server to control a plan.
// *cadence.Machine implements it.
type Machine interface {
	Definition() plan.Definition
	Snapshot() domain.Snapshot
	Skip(name string) error
	Freeze(name string, frozen bool) error
	EndState(name string) error
	Restart() error
}

// Server wraps a Machine and exposes it as an MCP Server.
type Server struct {
	machine   Machine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(machine Machine) *Server {
	s := &Server{
		machine:   machine,
		mcpServer: server.NewMCPServer("cadence-mcp", strings.TrimSpace(cadence.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE, until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: get_snapshot
	s.mcpServer.AddTool(mcp.NewTool("get_snapshot",
		mcp.WithDescription("Get the lifecycle snapshot of the running plan, or of one named state."),
		mcp.WithString("name", mcp.Description("Name of the state (optional, defaults to the root)")),
	), s.handleSnapshot)

	// TOOL: skip_state
	s.mcpServer.AddTool(mcp.NewTool("skip_state",
		mcp.WithDescription("Make a series move past its current state on the next tick, even if it is frozen."),
		mcp.WithString("name", mcp.Description("Name of the series (optional, defaults to the root)")),
	), s.control(func(req mcp.CallToolRequest) error {
		return s.machine.Skip(req.GetString("name", ""))
	}))

	// TOOL: freeze_state
	s.mcpServer.AddTool(mcp.NewTool("freeze_state",
		mcp.WithDescription("Freeze or unfreeze a state. Frozen states never end on their own."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the state")),
		mcp.WithBoolean("frozen", mcp.Description("New frozen flag (default true)")),
	), s.control(func(req mcp.CallToolRequest) error {
		return s.machine.Freeze(req.GetString("name", ""), req.GetBool("frozen", true))
	}))

	// TOOL: end_state
	s.mcpServer.AddTool(mcp.NewTool("end_state",
		mcp.WithDescription("End a state immediately."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the state")),
	), s.control(func(req mcp.CallToolRequest) error {
		return s.machine.EndState(req.GetString("name", ""))
	}))

	// TOOL: restart_plan
	s.mcpServer.AddTool(mcp.NewTool("restart_plan",
		mcp.WithDescription("End the current run and start the plan again from scratch."),
	), s.control(func(mcp.CallToolRequest) error {
		return s.machine.Restart()
	}))
}

func (s *Server) handleSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.machine.Snapshot()
	if name := request.GetString("name", ""); name != "" {
		node, ok := snap.Find(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("%v: %s", domain.ErrStateNotFound, name)), nil
		}
		snap = node
	}
	return jsonResult(snap)
}

// control wraps an action into a tool handler answering with the fresh snapshot.
func (s *Server) control(action func(mcp.CallToolRequest) error) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := action(request); err != nil {
			slog.Warn("MCP tool failed", "tool", request.Params.Name, "err", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(s.machine.Snapshot())
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: cadence://plan
	s.mcpServer.AddResource(mcp.NewResource("cadence://plan", "Plan Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.machine.Definition())
		if err != nil {
			return nil, fmt.Errorf("failed to encode plan: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "cadence://plan",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
