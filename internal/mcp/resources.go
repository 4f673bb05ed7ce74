package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	documentsURI   = "vectorboard://documents"
	documentPrefix = "vectorboard://document/"
)

func (s *Server) registerResources() {
	// ── vectorboard://documents ────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		documentsURI,
		"All Boards",
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentsResource)

	// ── vectorboard://document/{documentId}/layers ─────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			documentPrefix+"{documentId}/layers",
			"Layers of a Board",
		),
		s.handleLayersResource,
	)

	// ── vectorboard://document/{documentId}/json ───────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			documentPrefix+"{documentId}/json",
			"Board Document JSON",
		),
		s.handleDocumentJSONResource,
	)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleDocumentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	docs, err := s.docs.List()
	if err != nil {
		return nil, err
	}
	return jsonContents(documentsURI, docs)
}

func (s *Server) handleLayersResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := documentIDFromURI(uri, "layers")
	if id == "" {
		return nil, fmt.Errorf("could not extract documentId from URI: %s", uri)
	}
	ed, err := s.docs.Editor(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, ed.Layers())
}

func (s *Server) handleDocumentJSONResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := documentIDFromURI(uri, "json")
	if id == "" {
		return nil, fmt.Errorf("could not extract documentId from URI: %s", uri)
	}
	ed, err := s.docs.Editor(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := ed.ExportJSON()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}

// documentIDFromURI extracts the id from "vectorboard://document/{id}/{leaf}".
func documentIDFromURI(uri, leaf string) string {
	rest, ok := strings.CutPrefix(uri, documentPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, "/"+leaf)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
