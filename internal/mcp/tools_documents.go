package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDocumentTools() {
	// ── list_documents ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all boards, most recently changed first"),
	), s.handleListDocuments)

	// ── create_document ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new empty board and make it the active document"),
		mcp.WithString("name",
			mcp.Description("Name of the board (default: Untitled)"),
		),
	), s.handleCreateDocument)

	// ── open_document ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_document",
		mcp.WithDescription("Set the active document for subsequent tool calls. Tools that accept documentId default to it."),
		mcp.WithString("documentId",
			mcp.Description("ID of the board"),
			mcp.Required(),
		),
	), s.handleOpenDocument)

	// ── rename_document ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rename_document",
		mcp.WithDescription("Rename a board"),
		mcp.WithString("documentId", mcp.Description("ID of the board"), mcp.Required()),
		mcp.WithString("name", mcp.Description("New name"), mcp.Required()),
	), s.handleRenameDocument)

	// ── delete_document ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_document",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a board and its undo history. Requires user approval."),
		mcp.WithString("documentId", mcp.Description("ID of the board"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteDocument)
}

func (s *Server) handleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.docs.List()
	if err != nil {
		return nil, err
	}
	return jsonResult(docs)
}

func (s *Server) handleCreateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := s.docs.Create(req.GetString("name", ""))
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	if _, err := s.docs.Open(ctx, d.ID); err != nil {
		return nil, err
	}
	return jsonResult(map[string]string{"id": d.ID, "name": d.Name})
}

func (s *Server) handleOpenDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("documentId", "")
	if id == "" {
		return nil, fmt.Errorf("documentId is required")
	}
	ed, err := s.docs.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Active document set to %s (%d layers)", id, len(ed.Layers()))), nil
}

func (s *Server) handleRenameDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("documentId", "")
	name := req.GetString("name", "")
	if id == "" || name == "" {
		return nil, fmt.Errorf("documentId and name are required")
	}
	if err := s.docs.Rename(id, name); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Renamed %s to %q", id, name)), nil
}

func (s *Server) handleDeleteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("documentId", "")
	d, err := s.docs.Get(id)
	if err != nil {
		return nil, err
	}
	meta := fmt.Sprintf(`{"documentId":%q}`, id)
	if err := s.approval.Request(ctx, "delete_document", fmt.Sprintf("Delete board %q", d.Name), meta); err != nil {
		return textResult(err.Error()), nil
	}
	if err := s.docs.Delete(id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted board %q", d.Name)), nil
}
