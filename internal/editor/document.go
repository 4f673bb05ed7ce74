package editor

import (
	"encoding/json"
	"errors"
	"fmt"

	"vectorboard/internal/scene"
)

// DocumentVersion is written into every exported document.
const DocumentVersion = "1.0"

var ErrInvalidDocument = errors.New("invalid document")

// Document is the portable JSON form of a whole board.
type Document struct {
	Version  string         `json:"version"`
	Viewport scene.Viewport `json:"viewport"`
	Children []scene.Record `json:"children"`
}

// ExportJSON serializes the board without internal nodes.
func (e *Editor) ExportJSON() ([]byte, error) {
	e.lock()
	defer e.unlock()
	return json.Marshal(e.document())
}

func (e *Editor) document() Document {
	var doc Document
	e.highlight.Suspend(func() {
		doc = Document{
			Version:  DocumentVersion,
			Viewport: e.tree.Viewport(),
			Children: scene.ToRecords(e.tree.Children(), scene.SerializeOptions{ExcludeInternal: true}),
		}
	})
	return doc
}

// ImportJSON replaces the board with an exported document and records
// "import-json". The viewport is kept when the document has none.
func (e *Editor) ImportJSON(data []byte) (int, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return 0, err
	}
	e.lock()
	defer e.unlock()
	n := e.replace(doc)
	e.record("import-json")
	return n, nil
}

// Load replaces the board with a stored document and starts a fresh
// history with it as the "init" entry.
func (e *Editor) Load(data []byte) error {
	var doc Document
	if len(data) > 0 {
		var err error
		if doc, err = ParseDocument(data); err != nil {
			return err
		}
	}
	e.lock()
	defer e.unlock()
	e.replace(doc)
	e.history.Reset()
	e.record("init")
	return nil
}

// ParseDocument decodes an exported document. A bare array of records is
// accepted as well.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		var records []scene.Record
		if json.Unmarshal(data, &records) != nil {
			return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		doc.Children = records
	}
	return doc, nil
}

func (e *Editor) replace(doc Document) int {
	e.highlight.Clear()
	e.drag = nil
	if e.session != nil && e.session.node != nil {
		e.session.node.Detach()
	}
	e.session = nil
	e.tree.Clear()
	e.cancelSelection()
	e.clip.ResetOffset()
	if doc.Viewport.Zoom > 0 {
		v := e.tree.Viewport()
		v.Zoom, v.PanX, v.PanY = doc.Viewport.Zoom, doc.Viewport.PanX, doc.Viewport.PanY
		e.tree.SetViewport(v)
	}
	nodes := scene.FromRecords(doc.Children, scene.BuildOptions{FrameLabels: true, Logf: e.log.Warnf})
	return len(e.addAll(nodes))
}
