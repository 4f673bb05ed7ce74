package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"vectorboard/internal/domain"
	"vectorboard/internal/editor"
	"vectorboard/internal/scene"
	"vectorboard/internal/secret"
	"vectorboard/internal/service"
	"vectorboard/internal/storage"
)

type quietLogger struct{}

func (quietLogger) Infof(string, ...any)  {}
func (quietLogger) Warnf(string, ...any)  {}
func (quietLogger) Errorf(string, ...any) {}

type testEnv struct {
	srv       *Server
	docs      *service.DocumentService
	emitter   *service.MockEmitter
	approvals *storage.ApprovalStore
}

func newTestEnv(t *testing.T, storeApprovals bool) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	emitter := &service.MockEmitter{}
	docs := service.NewDocumentService(
		storage.NewDocumentStore(db),
		storage.NewHistoryStore(db, 0),
		emitter,
		editor.Options{Logger: quietLogger{}, HistoryDebounce: 10 * time.Millisecond},
	)
	t.Cleanup(func() { docs.Shutdown(context.Background()) })

	env := &testEnv{docs: docs, emitter: emitter, approvals: storage.NewApprovalStore(db)}
	deps := Deps{
		Emitter:   emitter,
		Documents: docs,
		Imports:   service.NewImportService(docs, secret.NewMemoryStore(), emitter),
	}
	if storeApprovals {
		deps.Approvals = env.approvals
	}
	env.srv = New(deps)
	env.srv.approval.poll = 5 * time.Millisecond
	env.srv.approval.timeout = 2 * time.Second
	return env
}

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// call runs a tool handler and returns the text of its first content item.
func call(t *testing.T, h toolHandler, args map[string]any) string {
	t.Helper()
	res, err := callErr(h, args)
	if err != nil {
		t.Fatalf("tool failed: %v", err)
	}
	return res
}

func callErr(h toolHandler, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		return "", err
	}
	if len(res.Content) == 0 {
		return "", nil
	}
	if tc, ok := res.Content[0].(mcp.TextContent); ok {
		return tc.Text, nil
	}
	return "", nil
}

func decode[T any](t *testing.T, text string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	return v
}

// newBoard creates and activates a document through the tool.
func (env *testEnv) newBoard(t *testing.T) string {
	t.Helper()
	out := decode[map[string]string](t, call(t, env.srv.handleCreateDocument, map[string]any{"name": "Agent board"}))
	return out["id"]
}

func TestDocumentTools(t *testing.T) {
	env := newTestEnv(t, false)

	if _, err := callErr(env.srv.handleListLayers, nil); err == nil {
		t.Fatal("expected an error without an active document")
	}

	id := env.newBoard(t)
	if env.docs.Active() != id {
		t.Fatalf("expected %s to be active, got %q", id, env.docs.Active())
	}
	docs := decode[[]domain.DocumentSummary](t, call(t, env.srv.handleListDocuments, nil))
	if len(docs) != 1 || docs[0].Name != "Agent board" {
		t.Fatalf("unexpected documents: %+v", docs)
	}

	call(t, env.srv.handleRenameDocument, map[string]any{"documentId": id, "name": "Renamed"})
	d, _ := env.docs.Get(id)
	if d.Name != "Renamed" {
		t.Errorf("expected rename, got %q", d.Name)
	}
}

func TestAddShape_AutoPlacement(t *testing.T) {
	env := newTestEnv(t, false)
	env.newBoard(t)

	first := decode[nodeInfo](t, call(t, env.srv.handleAddShape, map[string]any{"type": "rect", "name": "API"}))
	second := decode[nodeInfo](t, call(t, env.srv.handleAddShape, map[string]any{"type": "rect", "name": "DB"}))

	if first.Width != defaultShapeW || first.Height != defaultShapeH {
		t.Errorf("expected default size, got %vx%v", first.Width, first.Height)
	}
	a := scene.Bounds{X: first.X, Y: first.Y, Width: first.Width, Height: first.Height}
	b := scene.Bounds{X: second.X, Y: second.Y, Width: second.Width, Height: second.Height}
	if overlaps(NewLayoutEngine().padded(a), b) {
		t.Errorf("auto-placed shapes overlap: %+v and %+v", a, b)
	}
}

func TestAddShape_ExplicitAndPersisted(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.newBoard(t)

	line := decode[nodeInfo](t, call(t, env.srv.handleAddShape, map[string]any{
		"type":   "line",
		"x":      0.0,
		"y":      0.0,
		"points": "[0,0,120,40]",
		"stroke": "#111111",
	}))
	if line.X != 0 || line.Y != 0 || line.Width != 120 || line.Height != 40 {
		t.Errorf("unexpected line bounds: %+v", line)
	}

	if _, err := callErr(env.srv.handleAddShape, map[string]any{"type": "hexagon"}); !errors.Is(err, editor.ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}

	d, _ := env.docs.Get(id)
	if !strings.Contains(d.Content, line.ID) {
		t.Error("expected the shape to be saved with the document")
	}
}

func TestAddShapes_Batch(t *testing.T) {
	env := newTestEnv(t, false)
	env.newBoard(t)

	out := decode[struct {
		IDs    []string `json:"ids"`
		Errors []string `json:"errors"`
	}](t, call(t, env.srv.handleAddShapes, map[string]any{
		"shapes": `[{"type":"frame","x":0,"y":0,"width":400,"height":300},
		            {"type":"ellipse","x":50,"y":50,"width":40,"height":40},
		            {"type":"blob"}]`,
	}))
	if len(out.IDs) != 2 || len(out.Errors) != 1 {
		t.Fatalf("expected 2 shapes and 1 error, got %+v", out)
	}

	child := decode[nodeInfo](t, call(t, env.srv.handleGetNode, map[string]any{"nodeId": out.IDs[1]}))
	if child.ParentID != out.IDs[0] {
		t.Errorf("expected the ellipse inside the frame, parent %q", child.ParentID)
	}
}

func TestConnectAndUpdate(t *testing.T) {
	env := newTestEnv(t, false)
	env.newBoard(t)

	a := decode[nodeInfo](t, call(t, env.srv.handleAddShape, map[string]any{"type": "rect", "x": 0.0, "y": 0.0}))
	b := decode[nodeInfo](t, call(t, env.srv.handleAddShape, map[string]any{"type": "rect", "x": 400.0, "y": 0.0}))

	arrow := decode[nodeInfo](t, call(t, env.srv.handleConnectNodes, map[string]any{"fromId": a.ID, "toId": b.ID}))
	if arrow.Type != string(scene.TagArrow) || arrow.X != a.X+a.Width || arrow.Width != b.X-(a.X+a.Width) {
		t.Errorf("unexpected connector: %+v", arrow)
	}

	updated := decode[nodeInfo](t, call(t, env.srv.handleUpdateNode, map[string]any{
		"nodeId": a.ID,
		"patch":  `{"name":"Gateway","fill":"#3b82f6","width":200}`,
	}))
	if updated.Name != "Gateway" || updated.Width != 200 {
		t.Errorf("patch not applied: %+v", updated)
	}
	if _, err := callErr(env.srv.handleUpdateNode, map[string]any{"nodeId": "nope", "patch": `{}`}); !errors.Is(err, editor.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestArrangeNodes(t *testing.T) {
	env := newTestEnv(t, false)
	env.newBoard(t)

	var ids []string
	for _, x := range []float64{0, 10, 20} {
		n := decode[nodeInfo](t, call(t, env.srv.handleAddShape, map[string]any{"type": "rect", "x": x, "y": 0.0}))
		ids = append(ids, n.ID)
	}
	call(t, env.srv.handleArrangeNodes, map[string]any{"nodeIds": strings.Join(ids, ","), "x": 100.0, "y": 100.0})

	var boxes []scene.Bounds
	for _, id := range ids {
		n := decode[nodeInfo](t, call(t, env.srv.handleGetNode, map[string]any{"nodeId": id}))
		boxes = append(boxes, scene.Bounds{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height})
	}
	if boxes[0].X != 100 || boxes[0].Y != 100 {
		t.Errorf("expected the first node at (100, 100), got %+v", boxes[0])
	}
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			if overlaps(boxes[i], boxes[j]) {
				t.Errorf("nodes %d and %d overlap after arrange", i, j)
			}
		}
	}
}

func TestLayerTools(t *testing.T) {
	env := newTestEnv(t, false)
	env.newBoard(t)

	a := decode[nodeInfo](t, call(t, env.srv.handleAddShape, map[string]any{"type": "rect", "name": "Bottom", "x": 0.0, "y": 0.0}))
	b := decode[nodeInfo](t, call(t, env.srv.handleAddShape, map[string]any{"type": "ellipse", "name": "Top", "x": 300.0, "y": 0.0}))

	layers := decode[[]editor.Layer](t, call(t, env.srv.handleListLayers, nil))
	if len(layers) != 2 || layers[0].ID != b.ID {
		t.Fatalf("expected Top first, got %+v", layers)
	}

	layers = decode[[]editor.Layer](t, call(t, env.srv.handleReorderLayer, map[string]any{
		"nodeId": a.ID, "targetId": b.ID, "position": "before",
	}))
	if layers[0].ID != a.ID {
		t.Errorf("expected Bottom moved to the top, got %+v", layers)
	}

	l := decode[editor.Layer](t, call(t, env.srv.handleToggleLayer, map[string]any{"nodeId": a.ID, "flag": "locked"}))
	if !l.Locked {
		t.Error("expected the layer to be locked")
	}
	if _, err := callErr(env.srv.handleToggleLayer, map[string]any{"nodeId": a.ID, "flag": "bold"}); err == nil {
		t.Error("expected an error for an unknown flag")
	}

	sel := decode[map[string][]string](t, call(t, env.srv.handleSelectNodes, map[string]any{"nodeIds": b.ID + ", missing"}))
	if len(sel["selection"]) != 1 || sel["selection"][0] != b.ID {
		t.Errorf("unexpected selection: %v", sel)
	}
}

func TestUndoRedoTools(t *testing.T) {
	env := newTestEnv(t, false)
	env.newBoard(t)
	call(t, env.srv.handleAddShape, map[string]any{"type": "rect", "x": 0.0, "y": 0.0})

	type stepResult struct {
		Moved bool `json:"moved"`
	}
	if r := decode[stepResult](t, call(t, env.srv.handleUndo, nil)); !r.Moved {
		t.Fatal("expected undo to move")
	}
	if layers := decode[[]editor.Layer](t, call(t, env.srv.handleListLayers, nil)); len(layers) != 0 {
		t.Errorf("expected an empty board after undo, got %d layers", len(layers))
	}
	if r := decode[stepResult](t, call(t, env.srv.handleRedo, nil)); !r.Moved {
		t.Fatal("expected redo to move")
	}

	h := decode[struct {
		Labels []string `json:"labels"`
	}](t, call(t, env.srv.handleGetHistory, nil))
	if strings.Join(h.Labels, ",") != "init,add-shape" {
		t.Errorf("unexpected history: %v", h.Labels)
	}
}

func TestRemoveNodes_ApprovedThroughStore(t *testing.T) {
	env := newTestEnv(t, true)
	env.newBoard(t)
	n := decode[nodeInfo](t, call(t, env.srv.handleAddShape, map[string]any{"type": "rect", "name": "Doomed", "x": 0.0, "y": 0.0}))

	go func() {
		for range 200 {
			pending, _ := env.approvals.Pending()
			if len(pending) == 1 {
				env.approvals.Resolve(pending[0].ID, true)
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	out := call(t, env.srv.handleRemoveNodes, map[string]any{"nodeIds": n.ID})
	if out != "Removed 1 node(s)" {
		t.Fatalf("unexpected result: %q", out)
	}
	if layers := decode[[]editor.Layer](t, call(t, env.srv.handleListLayers, nil)); len(layers) != 0 {
		t.Errorf("expected the node removed, got %+v", layers)
	}
	if pending, _ := env.approvals.Pending(); len(pending) != 0 {
		t.Errorf("expected the approval cleaned up, got %+v", pending)
	}
}

func TestRemoveNodes_RejectedInProcess(t *testing.T) {
	env := newTestEnv(t, false)
	env.newBoard(t)
	n := decode[nodeInfo](t, call(t, env.srv.handleAddShape, map[string]any{"type": "rect", "x": 0.0, "y": 0.0}))

	go func() {
		for range 200 {
			if evs := env.emitter.Named(domain.EventApprovalRequired); len(evs) == 1 {
				env.srv.Reject(evs[0].Data.(domain.PendingAction).ID)
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	out := call(t, env.srv.handleRemoveNodes, map[string]any{"nodeIds": n.ID})
	if !strings.Contains(out, ErrRejected.Error()) {
		t.Fatalf("expected a rejection, got %q", out)
	}
	if layers := decode[[]editor.Layer](t, call(t, env.srv.handleListLayers, nil)); len(layers) != 1 {
		t.Errorf("expected the node kept, got %d layers", len(layers))
	}
}

func TestTransferTools(t *testing.T) {
	env := newTestEnv(t, false)
	env.newBoard(t)

	figmaExport := `{"version":"1","children":[
		{"id":"a","type":"rect","name":"A","x":0,"y":0,"width":100,"height":50},
		{"id":"b","type":"rect","name":"B","x":200,"y":100,"width":100,"height":50}]}`
	out := call(t, env.srv.handleImportFigma, map[string]any{"json": figmaExport})
	if !strings.HasPrefix(out, "Imported 2 node(s)") {
		t.Fatalf("unexpected import result: %q", out)
	}
	if _, err := callErr(env.srv.handleImportFigma, nil); err == nil {
		t.Error("expected an error without source or json")
	}

	doc, err := editor.ParseDocument([]byte(call(t, env.srv.handleExportDocument, nil)))
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(doc.Children) != 2 {
		t.Errorf("expected 2 exported layers, got %d", len(doc.Children))
	}

	layers := decode[[]editor.Layer](t, call(t, env.srv.handleListLayers, nil))
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"nodeIds": layers[0].ID}
	res, err := env.srv.handleExportImage(context.Background(), req)
	if err != nil {
		t.Fatalf("export image: %v", err)
	}
	img, ok := res.Content[1].(mcp.ImageContent)
	if !ok || img.MIMEType != "image/png" || img.Data == "" {
		t.Errorf("expected PNG image content, got %+v", res.Content[1])
	}
}

func TestLayersResource(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.newBoard(t)
	call(t, env.srv.handleAddShape, map[string]any{"type": "star", "x": 0.0, "y": 0.0, "width": 50.0, "height": 50.0})

	req := mcp.ReadResourceRequest{}
	req.Params.URI = documentPrefix + id + "/layers"
	contents, err := env.srv.handleLayersResource(context.Background(), req)
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	if layers := decode[[]editor.Layer](t, text); len(layers) != 1 || layers[0].Name != "Star" {
		t.Errorf("unexpected layers: %s", text)
	}
}

func TestDocumentIDFromURI(t *testing.T) {
	tests := []struct {
		uri, leaf, want string
	}{
		{"vectorboard://document/abc-123/layers", "layers", "abc-123"},
		{"vectorboard://document/abc-123/json", "json", "abc-123"},
		{"vectorboard://document/abc-123/json", "layers", ""},
		{"vectorboard://document/a/b/layers", "layers", ""},
		{"notes://page/abc/layers", "layers", ""},
	}
	for _, tt := range tests {
		if got := documentIDFromURI(tt.uri, tt.leaf); got != tt.want {
			t.Errorf("documentIDFromURI(%q, %q) = %q, want %q", tt.uri, tt.leaf, got, tt.want)
		}
	}
}
