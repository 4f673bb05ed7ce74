package editor

import (
	"encoding/json"
	"fmt"

	"vectorboard/internal/history"
	"vectorboard/internal/scene"
)

// target adapts the editor's tree to history.Target. It is only called
// with the editor lock held.
type target struct{ e *Editor }

func (t target) Snapshot() ([]byte, error) {
	var (
		data []byte
		err  error
	)
	t.e.highlight.Suspend(func() {
		records := scene.ToRecords(t.e.tree.Children(), scene.SerializeOptions{})
		data, err = json.Marshal(records)
	})
	return data, err
}

func (t target) Restore(snapshot []byte) error {
	var records []scene.Record
	if err := json.Unmarshal(snapshot, &records); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	e := t.e
	e.highlight.Clear()
	e.drag = nil
	e.session = nil
	e.tree.Clear()
	for _, n := range scene.FromRecords(records, scene.BuildOptions{Logf: e.log.Warnf}) {
		if err := e.tree.Add(n); err != nil {
			e.log.Warnf("editor: restore %s: %v", n.ID, err)
		}
	}
	scene.MarkInternal(e.tree.Root())
	e.cancelSelection()
	e.layersDirty = true
	return nil
}

func (t target) Ready() bool { return !t.e.closed }

// Undo steps back one history entry. It reports whether anything changed.
func (e *Editor) Undo() (bool, error) {
	e.lock()
	defer e.unlock()
	moved, err := e.history.Undo()
	if err != nil {
		e.emitError(err)
	}
	return moved, err
}

// Redo steps forward one history entry.
func (e *Editor) Redo() (bool, error) {
	e.lock()
	defer e.unlock()
	moved, err := e.history.Redo()
	if err != nil {
		e.emitError(err)
	}
	return moved, err
}

// HistoryState returns the undo/redo availability.
func (e *Editor) HistoryState() history.State {
	e.lock()
	defer e.unlock()
	return e.history.State()
}

// History returns the recorded entries, oldest first.
func (e *Editor) History() []history.Entry {
	e.lock()
	defer e.unlock()
	return e.history.Entries()
}

// ResumeHistory restores a journaled stack and the document of its
// current entry.
func (e *Editor) ResumeHistory(entries []history.Entry, current string) error {
	e.lock()
	defer e.unlock()
	if len(entries) == 0 {
		return nil
	}
	e.history.Resume(entries, current)
	snap := entries[len(entries)-1].Snapshot
	for _, en := range entries {
		if en.ID == current {
			snap = en.Snapshot
			break
		}
	}
	return target{e}.Restore(snap)
}

// NodePatch lists the properties UpdateNode may change. Nil fields are
// left alone.
type NodePatch struct {
	Name        *string     `json:"name,omitempty"`
	X           *float64    `json:"x,omitempty"`
	Y           *float64    `json:"y,omitempty"`
	Width       *float64    `json:"width,omitempty"`
	Height      *float64    `json:"height,omitempty"`
	Rotation    *float64    `json:"rotation,omitempty"`
	Fill        *scene.Fill `json:"fill,omitempty"`
	Stroke      *string     `json:"stroke,omitempty"`
	StrokeWidth *float64    `json:"strokeWidth,omitempty"`
	Opacity     *float64    `json:"opacity,omitempty"`
	Text        *string     `json:"text,omitempty"`
	FontSize    *float64    `json:"fontSize,omitempty"`
	Visible     *bool       `json:"visible,omitempty"`
	Locked      *bool       `json:"locked,omitempty"`
	Points      []float64   `json:"points,omitempty"`
}

// UpdateNode applies a property patch. Bursts of updates, such as a color
// picker being dragged, collapse into one "update" history entry.
func (e *Editor) UpdateNode(id string, p NodePatch) error {
	e.lock()
	defer e.unlock()
	n := e.tree.Find(id)
	if n == nil || n.Internal {
		return fmt.Errorf("update %q: %w", id, ErrNodeNotFound)
	}

	if p.Name != nil {
		n.SetName(*p.Name)
	}
	if p.X != nil || p.Y != nil {
		x, y := n.X, n.Y
		if p.X != nil {
			x = *p.X
		}
		if p.Y != nil {
			y = *p.Y
		}
		n.SetPosition(x, y)
	}
	if p.Width != nil || p.Height != nil {
		w, h := n.Width, n.Height
		if p.Width != nil {
			w = max(0, *p.Width)
		}
		if p.Height != nil {
			h = max(0, *p.Height)
		}
		n.SetSize(w, h)
	}
	if p.Rotation != nil {
		n.SetRotation(*p.Rotation)
	}
	if p.Fill != nil {
		n.SetFill(p.Fill)
	}
	if p.Stroke != nil || p.StrokeWidth != nil {
		color, width := n.Stroke, n.StrokeWidth
		if p.Stroke != nil {
			color = *p.Stroke
		}
		if p.StrokeWidth != nil {
			width = *p.StrokeWidth
		}
		n.SetStroke(color, width)
	}
	if p.Opacity != nil {
		n.Opacity = min(1, max(0, *p.Opacity))
	}
	if p.Text != nil {
		n.SetText(*p.Text)
	}
	if p.FontSize != nil && *p.FontSize > 0 {
		n.FontSize = *p.FontSize
	}
	if p.Visible != nil {
		n.SetVisible(*p.Visible)
	}
	if p.Locked != nil {
		n.SetLocked(*p.Locked)
	}
	if p.Points != nil {
		n.SetPoints(p.Points)
	}
	e.history.Debounced("update")
	return nil
}
