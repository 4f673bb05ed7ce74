package editor

import (
	"fmt"

	"vectorboard/internal/clipboard"
	"vectorboard/internal/scene"
)

// Copy stores the selected subtrees and returns how many were copied.
func (e *Editor) Copy() int {
	e.lock()
	defer e.unlock()
	return e.clip.Copy(e.selected())
}

// Paste inserts the clipboard content at the top level, each paste one
// step further from the source, and selects it. It returns the new ids.
func (e *Editor) Paste() []string {
	e.lock()
	defer e.unlock()
	nodes := e.clip.Paste()
	if len(nodes) == 0 {
		return nil
	}
	added := e.addAll(nodes)
	if len(added) == 0 {
		return nil
	}
	e.selectNodes(added...)
	e.record("paste")
	return ids(added)
}

// Duplicate copies one node next to itself and selects the copy. The
// clipboard is left untouched.
func (e *Editor) Duplicate(id string) (string, error) {
	e.lock()
	defer e.unlock()
	n := e.tree.Find(id)
	if n == nil || n.Internal {
		return "", fmt.Errorf("duplicate %q: %w", id, ErrNodeNotFound)
	}
	c := clipboard.Duplicate(n, e.opts.PasteStep, e.log.Warnf)
	if c == nil {
		return "", fmt.Errorf("duplicate %q: nothing to copy", id)
	}
	if err := e.tree.Add(c); err != nil {
		return "", fmt.Errorf("duplicate %q: %w", id, err)
	}
	e.selectNodes(c)
	e.record("duplicate")
	return c.ID, nil
}

// addAll appends nodes at the top level and returns the ones that were added.
func (e *Editor) addAll(nodes []*scene.Node) []*scene.Node {
	added := make([]*scene.Node, 0, len(nodes))
	for _, n := range nodes {
		if err := e.tree.Add(n); err != nil {
			e.log.Warnf("editor: add %s: %v", n.Tag, err)
			continue
		}
		added = append(added, n)
	}
	return added
}

func ids(nodes []*scene.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
