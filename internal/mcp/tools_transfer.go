package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"vectorboard/internal/editor"
)

func (s *Server) registerTransferTools() {
	s.mcp.AddTool(mcp.NewTool("import_figma",
		mcp.WithDescription("Import a Figma design into a board, centered on the visible area. Pass either a Figma URL or file key (downloaded with the stored or given token) or the JSON of a Figma export."),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("source", mcp.Description("Figma file URL or file key; a node-id in the URL imports only that node")),
		mcp.WithString("token", mcp.Description("Figma personal access token (optional, defaults to the stored token)")),
		mcp.WithString("json", mcp.Description("Figma JSON (REST file response or plugin export) instead of source")),
	), s.handleImportFigma)

	s.mcp.AddTool(mcp.NewTool("export_document",
		mcp.WithDescription("Export a whole board as document JSON"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
	), s.handleExportDocument)

	s.mcp.AddTool(mcp.NewTool("replace_document",
		mcp.WithDescription("🛑 DESTRUCTIVE: Replace a board's content with document JSON. Undoable. Requires user approval."),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("json", mcp.Description("Document JSON as produced by export_document"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleReplaceDocument)

	s.mcp.AddTool(mcp.NewTool("export_image",
		mcp.WithDescription("Render nodes to a PNG or JPEG image. Several nodes are cropped to their combined bounds."),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("nodeIds", mcp.Description("Comma-separated node IDs (default: current selection)")),
		mcp.WithString("format", mcp.Description("png (default) or jpeg")),
		mcp.WithNumber("scale", mcp.Description("Pixel ratio (default 1)")),
	), s.handleExportImage)
}

func (s *Server) handleImportFigma(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	_, docID, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}

	var n int
	if data := req.GetString("json", ""); data != "" {
		n, err = s.imports.ImportFromJSON(ctx, docID, []byte(data))
	} else if source := req.GetString("source", ""); source != "" {
		n, err = s.imports.ImportFromAPI(ctx, docID, source, req.GetString("token", ""))
	} else {
		return nil, fmt.Errorf("either source or json is required")
	}
	if err != nil {
		return nil, fmt.Errorf("import figma: %w", err)
	}
	s.commit(ctx, docID)
	return textResult(fmt.Sprintf("Imported %d node(s) into %s", n, docID)), nil
}

func (s *Server) handleExportDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, _, err := s.resolveDocument(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	data, err := ed.ExportJSON()
	if err != nil {
		return nil, err
	}
	return textResult(string(data)), nil
}

func (s *Server) handleReplaceDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, docID, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}
	data := []byte(req.GetString("json", ""))
	doc, err := editor.ParseDocument(data)
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Replace %d layer(s) with %d from JSON", len(ed.Layers()), len(doc.Children))
	meta := fmt.Sprintf(`{"documentId":%q}`, docID)
	if err := s.approval.Request(ctx, "replace_document", desc, meta); err != nil {
		return textResult(err.Error()), nil
	}

	n, err := ed.ImportJSON(data)
	if err != nil {
		return nil, err
	}
	s.commit(ctx, docID)
	return textResult(fmt.Sprintf("Loaded %d node(s)", n)), nil
}

func (s *Server) handleExportImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, _, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}
	if ids := idList(args, "nodeIds"); len(ids) > 0 {
		ed.SelectMany(ids)
	}
	scale, _ := number(args, "scale")
	out, err := ed.ExportSelection(editor.ExportOptions{
		Scale:  scale,
		Format: req.GetString("format", "png"),
	})
	if err != nil {
		return nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: out.Filename},
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(out.Data),
				MIMEType: "image/" + out.Format,
			},
		},
	}, nil
}
