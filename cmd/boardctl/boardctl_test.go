package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vectorboard/internal/config"
	"vectorboard/internal/editor"
)

const figmaFile = `{
  "name": "Board",
  "version": "1",
  "document": {
    "id": "0:0", "type": "DOCUMENT",
    "children": [{
      "id": "0:1", "type": "CANVAS", "name": "Page 1",
      "children": [{
        "id": "1:1", "type": "RECTANGLE", "name": "Box",
        "absoluteBoundingBox": {"x": 10, "y": 10, "width": 40, "height": 30},
        "fills": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0}}]
      }]
    }]
  }
}`

func TestImportFigma_FromData(t *testing.T) {
	doc, n, err := importFigma(context.Background(), config.Default(), figmaSource{Data: []byte(figmaFile)})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 node, got %d", n)
	}
	parsed, err := editor.ParseDocument(doc)
	if err != nil {
		t.Fatalf("output is not a board document: %v", err)
	}
	if len(parsed.Children) != 1 || parsed.Children[0].Name != "Box" {
		t.Fatalf("unexpected children: %+v", parsed.Children)
	}
}

func TestImportFigma_FromAPI(t *testing.T) {
	var gotToken, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Figma-Token")
		gotPath = r.URL.Path
		w.Write([]byte(figmaFile))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Figma.APIBaseURL = srv.URL
	_, n, err := importFigma(context.Background(), cfg, figmaSource{URL: "AbCdEf123", Token: "secret"})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 node, got %d", n)
	}
	if gotToken != "secret" || gotPath != "/files/AbCdEf123" {
		t.Fatalf("unexpected request: token=%q path=%q", gotToken, gotPath)
	}
}

func TestImportFigma_MissingToken(t *testing.T) {
	if _, _, err := importFigma(context.Background(), config.Default(), figmaSource{URL: "AbCdEf123"}); err == nil {
		t.Fatal("expected an error without a token")
	}
}

func TestExportDocument(t *testing.T) {
	ed := editor.New(context.Background(), editor.Options{})
	id, err := ed.AddShape(editor.ShapeSpec{Type: "rect", X: 0, Y: 0, Width: 40, Height: 20})
	if err != nil {
		t.Fatalf("add shape: %v", err)
	}
	if _, err := ed.AddShape(editor.ShapeSpec{Type: "ellipse", X: 100, Y: 0, Width: 20, Height: 20}); err != nil {
		t.Fatalf("add shape: %v", err)
	}
	data, err := ed.ExportJSON()
	ed.Close()
	if err != nil {
		t.Fatalf("export json: %v", err)
	}

	out, err := exportDocument(data, nil, editor.ExportOptions{Format: "png"})
	if err != nil {
		t.Fatalf("export all: %v", err)
	}
	if !bytes.HasPrefix(out.Data, []byte("\x89PNG")) {
		t.Fatal("expected PNG data")
	}

	one, err := exportDocument(data, []string{id}, editor.ExportOptions{Format: "jpg"})
	if err != nil {
		t.Fatalf("export one: %v", err)
	}
	if one.Format != "jpeg" || one.Filename != "Rectangle.jpg" {
		t.Fatalf("unexpected export: %s %s", one.Format, one.Filename)
	}

	if _, err := exportDocument(data, []string{"missing"}, editor.ExportOptions{}); err == nil {
		t.Fatal("expected an empty selection to fail")
	}
}

func TestSplitIDs(t *testing.T) {
	got, _ := json.Marshal(splitIDs(" a, ,b ,c"))
	if string(got) != `["a","b","c"]` {
		t.Fatalf("unexpected ids: %s", got)
	}
	if splitIDs("") != nil {
		t.Fatal("expected nil for empty input")
	}
}
