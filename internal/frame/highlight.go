package frame

import "vectorboard/internal/scene"

const (
	HighlightColor = "#18a0fb"
	HighlightWidth = 2
)

type savedStroke struct {
	color string
	width float64
}

// Highlighter outlines at most one candidate container during a drag.
// The original stroke of every outlined node is kept on the side and put
// back before the highlight moves elsewhere.
type Highlighter struct {
	Color string
	Width float64

	current *scene.Node
	saved   map[*scene.Node]savedStroke
}

// NewHighlighter returns a Highlighter using the default outline.
func NewHighlighter() *Highlighter {
	return &Highlighter{Color: HighlightColor, Width: HighlightWidth, saved: map[*scene.Node]savedStroke{}}
}

// Current returns the highlighted node, if any.
func (h *Highlighter) Current() *scene.Node { return h.current }

// Set moves the highlight to n. A nil n clears it.
func (h *Highlighter) Set(n *scene.Node) {
	if n == h.current {
		return
	}
	h.Clear()
	if n == nil {
		return
	}
	h.saved[n] = savedStroke{color: n.Stroke, width: n.StrokeWidth}
	n.Stroke, n.StrokeWidth = h.Color, h.Width
	h.current = n
}

// Clear restores the original stroke of the highlighted node.
func (h *Highlighter) Clear() {
	if h.current == nil {
		return
	}
	if s, ok := h.saved[h.current]; ok {
		h.current.Stroke, h.current.StrokeWidth = s.color, s.width
		delete(h.saved, h.current)
	}
	h.current = nil
}

// Suspend runs fn with the original stroke in place and re-applies the
// highlight afterwards.
func (h *Highlighter) Suspend(fn func()) {
	n := h.current
	h.Clear()
	defer h.Set(n)
	fn()
}

// Track recomputes the candidate container for dragged and highlights it.
func (h *Highlighter) Track(tree *scene.Tree, dragged *scene.Node) *scene.Node {
	target := FindContainer(tree, dragged, dragged.WorldCenter())
	if target == dragged.Parent() {
		target = nil
	}
	h.Set(target)
	return target
}
