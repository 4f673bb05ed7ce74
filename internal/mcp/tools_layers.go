package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"vectorboard/internal/editor"
)

func (s *Server) registerLayerTools() {
	s.mcp.AddTool(mcp.NewTool("list_layers",
		mcp.WithDescription("List the top-level layers of a board, topmost first"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
	), s.handleListLayers)

	s.mcp.AddTool(mcp.NewTool("get_node",
		mcp.WithDescription("Get the type, name, parent and world bounds of a node"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
	), s.handleGetNode)

	s.mcp.AddTool(mcp.NewTool("select_nodes",
		mcp.WithDescription("Replace the selection. An empty list clears it."),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("nodeIds", mcp.Description("Comma-separated node IDs")),
	), s.handleSelectNodes)

	s.mcp.AddTool(mcp.NewTool("reorder_layer",
		mcp.WithDescription("Move a layer above or below another one in the layers panel"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("nodeId", mcp.Description("Layer to move"), mcp.Required()),
		mcp.WithString("targetId", mcp.Description("Layer to move next to"), mcp.Required()),
		mcp.WithString("position", mcp.Description("'before' (above the target) or 'after' (below it)"), mcp.Required()),
	), s.handleReorderLayer)

	s.mcp.AddTool(mcp.NewTool("toggle_layer",
		mcp.WithDescription("Flip a layer's visibility or lock"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("nodeId", mcp.Description("Layer ID"), mcp.Required()),
		mcp.WithString("flag", mcp.Description("'visible' or 'locked'"), mcp.Required()),
	), s.handleToggleLayer)

	s.mcp.AddTool(mcp.NewTool("remove_nodes",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove nodes and their children with a single approval. Requires user approval."),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("nodeIds", mcp.Description("Comma-separated node IDs"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveNodes)

	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last change on a board"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone change on a board"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
	), s.handleRedo)

	s.mcp.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("List the undo history labels of a board and the current position"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
	), s.handleGetHistory)
}

func (s *Server) handleListLayers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, _, err := s.resolveDocument(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return jsonResult(ed.Layers())
}

func (s *Server) handleGetNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, _, err := s.resolveDocument(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	id := req.GetString("nodeId", "")
	info := s.nodeSummary(ed, id)
	if info.Type == "" {
		return nil, fmt.Errorf("node %s: %w", id, editor.ErrNodeNotFound)
	}
	return jsonResult(info)
}

func (s *Server) handleSelectNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, _, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}
	ed.SelectMany(idList(args, "nodeIds"))
	return jsonResult(map[string]any{"selection": ed.Selection()})
}

func (s *Server) handleReorderLayer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, docID, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}
	err = ed.ReorderLayer(req.GetString("nodeId", ""), req.GetString("targetId", ""), req.GetString("position", ""))
	if err != nil {
		return nil, err
	}
	s.commit(ctx, docID)
	return jsonResult(ed.Layers())
}

func (s *Server) handleToggleLayer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, docID, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}
	id := req.GetString("nodeId", "")
	switch req.GetString("flag", "") {
	case "visible":
		err = ed.ToggleVisible(id)
	case "locked":
		err = ed.ToggleLock(id)
	default:
		return nil, fmt.Errorf("flag must be 'visible' or 'locked'")
	}
	if err != nil {
		return nil, err
	}
	s.commit(ctx, docID)
	for _, l := range ed.Layers() {
		if l.ID == id {
			return jsonResult(l)
		}
	}
	return textResult("Toggled " + id), nil
}

func (s *Server) handleRemoveNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, docID, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}
	ids := idList(args, "nodeIds")
	if len(ids) == 0 {
		return nil, fmt.Errorf("nodeIds is required")
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		info := s.nodeSummary(ed, id)
		if info.Type == "" {
			return nil, fmt.Errorf("node %s: %w", id, editor.ErrNodeNotFound)
		}
		label := info.Name
		if label == "" {
			label = info.Text
		}
		names = append(names, fmt.Sprintf("%s %q", info.Type, label))
	}
	desc := fmt.Sprintf("Remove %d node(s): %s", len(ids), strings.Join(names, ", "))
	meta, _ := json.Marshal(map[string]any{"documentId": docID, "nodeIds": ids})
	if err := s.approval.Request(ctx, "remove_nodes", desc, string(meta)); err != nil {
		return textResult(err.Error()), nil
	}

	removed := 0
	for _, id := range ids {
		// A node may already be gone with a removed ancestor.
		if err := ed.RemoveLayer(id); err == nil {
			removed++
		}
	}
	s.commit(ctx, docID)
	return textResult(fmt.Sprintf("Removed %d node(s)", removed)), nil
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.step(ctx, req, (*editor.Editor).Undo)
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.step(ctx, req, (*editor.Editor).Redo)
}

func (s *Server) step(ctx context.Context, req mcp.CallToolRequest, move func(*editor.Editor) (bool, error)) (*mcp.CallToolResult, error) {
	ed, docID, err := s.resolveDocument(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	moved, err := move(ed)
	if err != nil {
		return nil, err
	}
	if moved {
		s.commit(ctx, docID)
	}
	return jsonResult(map[string]any{"moved": moved, "state": ed.HistoryState()})
}

func (s *Server) handleGetHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, _, err := s.resolveDocument(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	entries := ed.History()
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}
	return jsonResult(map[string]any{"labels": labels, "state": ed.HistoryState()})
}
