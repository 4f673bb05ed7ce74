package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/mark3labs/mcp-go/mcp"

	"vectorboard/internal/editor"
	"vectorboard/internal/scene"
)

// Size used when an agent omits width and height.
const (
	defaultShapeW = 160.0
	defaultShapeH = 80.0
)

func (s *Server) registerShapeTools() {
	s.mcp.AddTool(mcp.NewTool("add_shape",
		mcp.WithDescription("Add a shape to the board. Shapes dropped inside a frame become its children. When x and y are omitted the shape is placed in free space near the visible area."),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("type", mcp.Description("Shape type: rect, ellipse, diamond, star, frame, line, arrow, text"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("X position (optional)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional)")),
		mcp.WithNumber("width", mcp.Description("Width (default 160)")),
		mcp.WithNumber("height", mcp.Description("Height (default 80)")),
		mcp.WithString("name", mcp.Description("Layer name (optional)")),
		mcp.WithString("text", mcp.Description("Text content, for type text")),
		mcp.WithString("fill", mcp.Description("Fill color hex (optional, e.g. #3b82f6)")),
		mcp.WithString("stroke", mcp.Description("Stroke color hex (optional)")),
		mcp.WithNumber("strokeWidth", mcp.Description("Stroke width (optional)")),
		mcp.WithString("points", mcp.Description("JSON array of relative coordinates for line and arrow, e.g. [0,0,120,40]")),
	), s.handleAddShape)

	s.mcp.AddTool(mcp.NewTool("add_shapes",
		mcp.WithDescription("Add several shapes at once. Shapes without x and y are placed automatically."),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("shapes", mcp.Description("JSON array of shape objects [{type, x?, y?, width?, height?, name?, text?, fill?, stroke?, strokeWidth?, points?}, ...]"), mcp.Required()),
	), s.handleAddShapes)

	s.mcp.AddTool(mcp.NewTool("connect_nodes",
		mcp.WithDescription("Draw an elbow arrow between two nodes, leaving and entering through their facing sides"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("fromId", mcp.Description("Source node ID"), mcp.Required()),
		mcp.WithString("toId", mcp.Description("Target node ID"), mcp.Required()),
	), s.handleConnectNodes)

	s.mcp.AddTool(mcp.NewTool("update_node",
		mcp.WithDescription("Update properties of a node"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithString("patch", mcp.Description("JSON object with any of: name, x, y, width, height, rotation, fill, stroke, strokeWidth, opacity, text, fontSize, visible, locked, points"), mcp.Required()),
	), s.handleUpdateNode)

	s.mcp.AddTool(mcp.NewTool("arrange_nodes",
		mcp.WithDescription("Lay top-level nodes out in rows on a grid without overlaps"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("nodeIds", mcp.Description("Comma-separated node IDs, in layout order"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Left edge of the layout (default: first node)")),
		mcp.WithNumber("y", mcp.Description("Top edge of the layout (default: first node)")),
	), s.handleArrangeNodes)

	s.mcp.AddTool(mcp.NewTool("duplicate_node",
		mcp.WithDescription("Copy a node next to itself"),
		mcp.WithString("documentId", mcp.Description("Board ID (optional, defaults to active document)")),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
	), s.handleDuplicateNode)
}

// shapeInput tells an omitted position apart from zero.
type shapeInput struct {
	editor.ShapeSpec
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// addShape places one shape, choosing a free position when none is given.
func (s *Server) addShape(ed *editor.Editor, in shapeInput) (string, error) {
	spec := in.ShapeSpec
	if spec.Type != "text" && spec.Width == 0 && spec.Height == 0 && len(spec.Points) == 0 {
		spec.Width, spec.Height = defaultShapeW, defaultShapeH
		if spec.Type == "line" || spec.Type == "arrow" {
			spec.Height = 0
		}
	}
	if in.X != nil && in.Y != nil {
		spec.X, spec.Y = *in.X, *in.Y
	} else {
		p := s.freeSpot(ed, max(spec.Width, defaultShapeW/2), max(spec.Height, defaultShapeH/2))
		spec.X, spec.Y = p.X, p.Y
	}
	return ed.AddShape(spec)
}

// freeSpot asks the layout engine for a w×h slot near the top-left of the
// visible area.
func (s *Server) freeSpot(ed *editor.Editor, w, h float64) scene.Point {
	var existing []scene.Bounds
	var origin scene.Point
	ed.Inspect(func(t *scene.Tree) {
		vb := t.VisibleBounds()
		origin = scene.Point{X: vb.X + Padding, Y: vb.Y + Padding}
		for _, n := range t.Children() {
			if !n.Internal {
				existing = append(existing, n.WorldBounds())
			}
		}
	})
	return s.layout.NextPosition(existing, origin, w, h)
}

func (s *Server) handleAddShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, docID, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}

	fields := maps.Clone(args)
	delete(fields, "points")
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var in shapeInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if pts, _ := args["points"].(string); pts != "" {
		if err := json.Unmarshal([]byte(pts), &in.Points); err != nil {
			return nil, fmt.Errorf("invalid points: %w", err)
		}
	}

	id, err := s.addShape(ed, in)
	if err != nil {
		return nil, err
	}
	s.commit(ctx, docID)
	return jsonResult(s.nodeSummary(ed, id))
}

func (s *Server) handleAddShapes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, docID, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}
	raw, _ := args["shapes"].(string)
	var inputs []shapeInput
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, fmt.Errorf("parse shapes: %w", err)
	}

	ids := make([]string, 0, len(inputs))
	var failed []string
	for i, in := range inputs {
		id, err := s.addShape(ed, in)
		if err != nil {
			failed = append(failed, fmt.Sprintf("#%d: %v", i, err))
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) > 0 {
		s.commit(ctx, docID)
	}
	return jsonResult(map[string]any{"ids": ids, "errors": failed})
}

func (s *Server) handleConnectNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, docID, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}
	id, err := ed.Connect(req.GetString("fromId", ""), req.GetString("toId", ""))
	if err != nil {
		return nil, err
	}
	s.commit(ctx, docID)
	return jsonResult(s.nodeSummary(ed, id))
}

func (s *Server) handleUpdateNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, docID, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}
	var patch editor.NodePatch
	if err := json.Unmarshal([]byte(req.GetString("patch", "")), &patch); err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	id := req.GetString("nodeId", "")
	if err := ed.UpdateNode(id, patch); err != nil {
		return nil, err
	}
	s.commit(ctx, docID)
	return jsonResult(s.nodeSummary(ed, id))
}

func (s *Server) handleArrangeNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, docID, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}
	ids := idList(args, "nodeIds")
	if len(ids) == 0 {
		return nil, fmt.Errorf("nodeIds is required")
	}

	boxes := make([]scene.Bounds, len(ids))
	origins := make([]scene.Point, len(ids))
	var missing []string
	ed.Inspect(func(t *scene.Tree) {
		for i, id := range ids {
			n := t.Find(id)
			if n == nil || n.Parent() != t.Root() {
				missing = append(missing, id)
				continue
			}
			boxes[i] = n.WorldBounds()
			origins[i] = scene.Point{X: n.X, Y: n.Y}
		}
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("not top-level nodes: %v: %w", missing, editor.ErrNodeNotFound)
	}

	x, hasX := number(args, "x")
	y, hasY := number(args, "y")
	if !hasX {
		x = boxes[0].X
	}
	if !hasY {
		y = boxes[0].Y
	}

	for i, p := range s.layout.ArrangeGroup(boxes, x, y) {
		// Shift by the bounds offset so rotated nodes land where asked.
		nx := origins[i].X + p.X - boxes[i].X
		ny := origins[i].Y + p.Y - boxes[i].Y
		if err := ed.UpdateNode(ids[i], editor.NodePatch{X: &nx, Y: &ny}); err != nil {
			return nil, err
		}
	}
	s.commit(ctx, docID)
	return textResult(fmt.Sprintf("Arranged %d nodes", len(ids))), nil
}

func (s *Server) handleDuplicateNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, docID, err := s.resolveDocument(ctx, args)
	if err != nil {
		return nil, err
	}
	id, err := ed.Duplicate(req.GetString("nodeId", ""))
	if err != nil {
		return nil, err
	}
	s.commit(ctx, docID)
	return jsonResult(s.nodeSummary(ed, id))
}

// nodeInfo is what agents get back for a node.
type nodeInfo struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Name     string  `json:"name,omitempty"`
	Text     string  `json:"text,omitempty"`
	ParentID string  `json:"parentId,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

func (s *Server) nodeSummary(ed *editor.Editor, id string) nodeInfo {
	info := nodeInfo{ID: id}
	ed.Inspect(func(t *scene.Tree) {
		n := t.Find(id)
		if n == nil {
			return
		}
		b := n.WorldBounds()
		info = nodeInfo{
			ID:     n.ID,
			Type:   string(n.Tag),
			Name:   n.Name,
			Text:   n.Text,
			X:      b.X,
			Y:      b.Y,
			Width:  b.Width,
			Height: b.Height,
		}
		if p := n.Parent(); p != nil && !p.IsRoot() {
			info.ParentID = p.ID
		}
	})
	return info
}
