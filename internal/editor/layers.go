package editor

import (
	"errors"
	"fmt"

	"vectorboard/internal/scene"
)

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrBadPosition  = errors.New("position must be before or after")
)

// Layer is one row of the layers panel.
type Layer struct {
	ID      string `json:"id"`
	Name    string `json:"displayName"`
	Type    string `json:"type"`
	Visible bool   `json:"visible"`
	Locked  bool   `json:"locked"`
}

// layers projects the top-level nodes, topmost first.
func (e *Editor) layers() []Layer {
	children := e.tree.Children()
	out := make([]Layer, 0, len(children))
	for i := len(children) - 1; i >= 0; i-- {
		n := children[i]
		if n.Internal {
			continue
		}
		out = append(out, Layer{
			ID:      n.ID,
			Name:    layerName(n),
			Type:    string(n.Tag),
			Visible: n.Visible,
			Locked:  n.Locked,
		})
	}
	return out
}

func layerName(n *scene.Node) string {
	if n.Tag == scene.TagText {
		if n.Text != "" {
			return n.Text
		}
		return "Text"
	}
	if n.Name != "" {
		return n.Name
	}
	if n.Tag != "" {
		return string(n.Tag)
	}
	return n.ID
}

// Layers returns the current layer list.
func (e *Editor) Layers() []Layer {
	e.lock()
	defer e.unlock()
	return e.layers()
}

// layer resolves a top-level node by id.
func (e *Editor) layer(id string) (*scene.Node, error) {
	n := e.tree.Find(id)
	if n == nil || n.Internal {
		return nil, fmt.Errorf("layer %q: %w", id, ErrNodeNotFound)
	}
	return n, nil
}

// SelectLayer selects the node behind a layer row.
func (e *Editor) SelectLayer(id string) error {
	e.lock()
	defer e.unlock()
	n, err := e.layer(id)
	if err != nil {
		return err
	}
	e.selectNodes(n)
	return nil
}

// ToggleVisible flips a node's visibility. Hidden nodes leave the selection.
func (e *Editor) ToggleVisible(id string) error {
	e.lock()
	defer e.unlock()
	n, err := e.layer(id)
	if err != nil {
		return err
	}
	n.SetVisible(!n.Visible)
	if !n.Visible {
		e.deselect(n.ID)
	}
	e.record("toggle-visible")
	return nil
}

// ToggleLock flips a node's locked flag. Locked nodes cannot be dragged.
func (e *Editor) ToggleLock(id string) error {
	e.lock()
	defer e.unlock()
	n, err := e.layer(id)
	if err != nil {
		return err
	}
	n.SetLocked(!n.Locked)
	e.record("toggle-lock")
	return nil
}

// RemoveLayer deletes a node and its subtree, along with any of them
// that were selected.
func (e *Editor) RemoveLayer(id string) error {
	e.lock()
	defer e.unlock()
	n, err := e.layer(id)
	if err != nil {
		return err
	}
	n.Detach()
	e.pruneSelection()
	e.record("remove")
	return nil
}

// RemoveSelected deletes every selected node and returns how many went.
func (e *Editor) RemoveSelected() int {
	e.lock()
	defer e.unlock()
	nodes := e.selected()
	if len(nodes) == 0 {
		return 0
	}
	for _, n := range nodes {
		n.Detach()
	}
	e.cancelSelection()
	e.record("remove")
	return len(nodes)
}

// ReorderLayer moves dragID next to targetID in the layers panel. "before"
// places it visually above the target, which is after it in child order.
// An unknown target moves the node to the top.
func (e *Editor) ReorderLayer(dragID, targetID, position string) error {
	e.lock()
	defer e.unlock()
	if position != "before" && position != "after" {
		return fmt.Errorf("reorder %q: %w", position, ErrBadPosition)
	}
	n, err := e.layer(dragID)
	if err != nil {
		return err
	}
	if dragID == targetID {
		return nil
	}

	root := e.tree.Root()
	target := e.tree.Find(targetID)
	n.Detach()
	index := len(root.Children())
	if target != nil && target.Parent() == root {
		index = root.IndexOf(target)
		if position == "before" {
			index++
		}
	}
	if err := e.tree.Insert(n, index); err != nil {
		return fmt.Errorf("reorder %q: %w", dragID, err)
	}
	e.record("reorder")
	return nil
}

func (e *Editor) deselect(id string) {
	ids := make([]string, 0, len(e.selection))
	for _, s := range e.selection {
		if s != id {
			ids = append(ids, s)
		}
	}
	e.setSelection(ids)
}

// pruneSelection drops ids whose nodes left the tree, such as the
// descendants of a removed container.
func (e *Editor) pruneSelection() {
	ids := make([]string, 0, len(e.selection))
	for _, id := range e.selection {
		if e.tree.Find(id) != nil {
			ids = append(ids, id)
		}
	}
	e.setSelection(ids)
}
