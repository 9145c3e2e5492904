package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"unliker/pkg/logger"
	"unliker/pkg/unlike"
)

// Tool names registered on the MCP server
const (
	ToolStart  = "start_unliking"
	ToolStop   = "stop_unliking"
	ToolStatus = "unlike_status"
)

// noArgs is the input of every tool
type noArgs struct{}

// Tools holds the MCP tool handlers
type Tools struct {
	ctrl   Controller
	runCtx context.Context
	log    logger.Logger
}

// NewTools binds the handlers to ctrl. Runs started by a tool are bound to runCtx.
func NewTools(runCtx context.Context, ctrl Controller, log logger.Logger) *Tools {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Tools{ctrl: ctrl, runCtx: runCtx, log: log.WithField("component", "mcp")}
}

// NewMCPServer registers the three tools on a new MCP server
func NewMCPServer(tools *Tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "unliker", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolStart,
		Description: "Start removing likes from the signed-in x.com account. Fails if a run is already active.",
	}, tools.Start)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolStop,
		Description: "Ask the running unlike loop to stop after its current batch.",
	}, tools.Stop)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolStatus,
		Description: "Report the unlike count, last error, pacing delay and whether start or stop is available.",
	}, tools.Status)

	return server
}

// ServeStdio runs the server on stdin/stdout until ctx ends or the client disconnects
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	err := server.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Start handles start_unliking
func (t *Tools) Start(ctx context.Context, req *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
	t.log.Info("MCP: start requested")
	if err := t.ctrl.Start(t.runCtx); err != nil {
		return textResult("Could not start: "+err.Error(), true), nil, nil
	}
	return textResult("Unliking started. "+t.ctrl.Status().ProgressLine(), false), nil, nil
}

// Stop handles stop_unliking
func (t *Tools) Stop(ctx context.Context, req *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
	t.log.Info("MCP: stop requested")
	if err := t.ctrl.Stop(); err != nil {
		return textResult("Could not stop: "+err.Error(), true), nil, nil
	}
	return textResult("Stop requested. The current batch will finish first.", false), nil, nil
}

// Status handles unlike_status
func (t *Tools) Status(ctx context.Context, req *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
	s := t.ctrl.Status()
	body, err := json.MarshalIndent(newStatusPayload(s), "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return textResult(statusSummary(s)+"\n\n"+string(body), false), nil, nil
}

func statusSummary(s unlike.Status) string {
	text := fmt.Sprintf("%s (state: %s, delay: %s)", s.ProgressLine(), s.State, s.Delay)
	if line := s.ErrorLine(); line != "" {
		text += "\n" + line
	}
	return text
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}
