package editor

import (
	"slices"

	"vectorboard/internal/domain"
	"vectorboard/internal/frame"
	"vectorboard/internal/scene"
)

// dragState tracks a select-mode drag or a move-mode pan.
type dragState struct {
	pan   bool
	nodes []*scene.Node
	last  scene.Point
	moved bool
	// single is set when exactly one node is selected; only then does the
	// drag highlight and reparent.
	single bool

	screen     scene.Point
	panX, panY float64
}

// beginDrag hit-tests p and starts dragging the selection. Shift adds the
// hit node to the selection; clicking empty canvas clears it.
func (e *Editor) beginDrag(ev PointerEvent, p scene.Point) {
	hit := e.tree.HitTest(p)
	if hit == nil || hit.Locked {
		if !ev.Shift {
			e.cancelSelection()
		}
		return
	}

	current := e.selected()
	switch {
	case ev.Shift:
		if !slices.Contains(current, hit) {
			current = append(current, hit)
		}
		e.selectNodes(current...)
	case !slices.Contains(current, hit):
		e.selectNodes(hit)
	}

	selected := e.selected()
	var nodes []*scene.Node
	for _, n := range selected {
		if !n.Draggable || n.Locked {
			continue
		}
		// A node moves with a selected ancestor already.
		if slices.ContainsFunc(selected, func(a *scene.Node) bool { return a.IsAncestorOf(n) }) {
			continue
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 0 {
		return
	}
	e.drag = &dragState{nodes: nodes, last: p, single: len(selected) == 1}
}

// updateDrag moves every dragged node by the pointer delta, expressed in
// each node's parent space. A single selected node highlights the container
// it would drop into.
func (e *Editor) updateDrag(p scene.Point) {
	d := e.drag
	if p == d.last {
		return
	}
	for _, n := range d.nodes {
		from, to := d.last, p
		if parent := n.Parent(); parent != nil && !parent.IsRoot() {
			from, to = parent.ToLocal(from), parent.ToLocal(to)
		}
		n.SetPosition(n.X+to.X-from.X, n.Y+to.Y-from.Y)
	}
	d.last = p
	d.moved = true
	if d.single {
		e.highlight.Track(e.tree, d.nodes[0])
	}
}

// finishDrag ends the drag. A single selected node is reparented into the
// container under its center, or out to the top level.
func (e *Editor) finishDrag() {
	d := e.drag
	e.endDrag()
	if d.pan || !d.moved {
		return
	}
	if !d.single {
		e.record("move")
		return
	}

	n := d.nodes[0]
	res, err := frame.Reparent(e.tree, n)
	if err != nil {
		e.emitError(err)
		e.record("move")
		return
	}
	if res.Action == frame.Unchanged {
		e.record("move")
		return
	}
	e.log.Infof("editor: %s %s", res.Action, n.ID)
	e.selectNodes(n)
	e.layersDirty = true
	e.record(res.Action.String())
}

func (e *Editor) endDrag() {
	e.highlight.Clear()
	e.drag = nil
}

// ── Pan ────────────────────────────────────────────────────

func (e *Editor) beginPan(ev PointerEvent) {
	v := e.tree.Viewport()
	e.drag = &dragState{pan: true, screen: ev.point(), panX: v.PanX, panY: v.PanY}
}

func (e *Editor) updatePan(ev PointerEvent) {
	d := e.drag
	v := e.tree.Viewport()
	v.PanX = d.panX + ev.X - d.screen.X
	v.PanY = d.panY + ev.Y - d.screen.Y
	e.tree.SetViewport(v)
}

// ── Hover ──────────────────────────────────────────────────

func (e *Editor) hover(p scene.Point) {
	var id string
	if hit := e.tree.HitTest(p); hit != nil {
		id = hit.ID
	}
	if id == e.hovered {
		return
	}
	if e.hovered != "" {
		e.queue(domain.EventHoverEnd, map[string]string{"id": e.hovered})
	}
	if id != "" {
		e.queue(domain.EventHoverStart, map[string]string{"id": id})
	}
	e.hovered = id
}
