package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vectorboard/internal/editor"
	"vectorboard/internal/service"
)

// Server is the MCP server for Vectorboard.
// It exposes tools, resources, and prompts so AI agents can edit boards.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	layout   *LayoutEngine

	docs    *service.DocumentService
	imports *service.ImportService
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter   EventEmitter
	Documents *service.DocumentService
	Imports   *service.ImportService
	// Approvals, when set, routes approvals through SQLite (standalone mode).
	Approvals ApprovalStore
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Emitter == nil {
		deps.Emitter = service.NopEmitter{}
	}
	approval := NewApprovalQueue(deps.Emitter)
	if deps.Approvals != nil {
		approval.SetStore(deps.Approvals)
	}
	s := &Server{
		emitter:  deps.Emitter,
		approval: approval,
		layout:   NewLayoutEngine(),
		docs:     deps.Documents,
		imports:  deps.Imports,
	}

	s.mcp = server.NewMCPServer(
		"vectorboard-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerDocumentTools()
	s.registerShapeTools()
	s.registerLayerTools()
	s.registerTransferTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) {
	s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) {
	s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }

// resolveDocument returns the editor of the documentId argument, falling
// back to the active document.
func (s *Server) resolveDocument(ctx context.Context, args map[string]any) (*editor.Editor, string, error) {
	id, _ := args["documentId"].(string)
	if id == "" {
		id = s.docs.Active()
	}
	if id == "" {
		return nil, "", fmt.Errorf("no documentId provided and no active document (use open_document first)")
	}
	ed, err := s.docs.Editor(ctx, id)
	if err != nil {
		return nil, "", err
	}
	// Pick up edits the desktop app saved since this editor was loaded.
	if stale, err := s.docs.Stale(id); err == nil && stale {
		if err := s.docs.Reload(id); err != nil {
			log.Printf("[MCP] reload %s: %v", id, err)
		}
	}
	return ed, id, nil
}

// commit saves a document after an agent edit so other processes, such as
// the desktop app, see it.
func (s *Server) commit(ctx context.Context, docID string) {
	if _, err := s.docs.Save(ctx, docID); err != nil {
		log.Printf("[MCP] save %s: %v", docID, err)
	}
}

// number reads a numeric argument. JSON numbers arrive as float64.
func number(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// idList splits a comma-separated id argument.
func idList(args map[string]any, key string) []string {
	raw, _ := args[key].(string)
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
