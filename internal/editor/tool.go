package editor

import (
	"errors"
	"fmt"
	"math"

	"vectorboard/internal/domain"
	"vectorboard/internal/scene"
)

var ErrUnknownMode = errors.New("unknown tool mode")

// Mode is the active tool.
type Mode string

const (
	ModeSelect  Mode = "select"
	ModeMove    Mode = "move"
	ModeText    Mode = "text"
	ModeRect    Mode = "rect"
	ModeEllipse Mode = "ellipse"
	ModeDiamond Mode = "diamond"
	ModeFrame   Mode = "frame"
	ModeLine    Mode = "line"
	ModeArrow   Mode = "arrow"
	ModePen     Mode = "pen"
)

// ModeConfig describes how the canvas behaves under a tool.
type ModeConfig struct {
	Cursor         string `json:"cursor"`
	EditorVisible  bool   `json:"editorVisible"`
	EditorHittable bool   `json:"editorHittable"`
	HitChildren    bool   `json:"hitChildren"`
	PanDrag        bool   `json:"panDrag"`
}

var modes = map[Mode]ModeConfig{
	ModeSelect:  {Cursor: "auto", EditorVisible: true, EditorHittable: true, HitChildren: true},
	ModeMove:    {Cursor: "grab", PanDrag: true},
	ModeText:    {Cursor: "text", EditorVisible: true, EditorHittable: true, HitChildren: true},
	ModeRect:    {Cursor: "crosshair", HitChildren: true},
	ModeEllipse: {Cursor: "crosshair", HitChildren: true},
	ModeDiamond: {Cursor: "crosshair", HitChildren: true},
	ModeFrame:   {Cursor: "crosshair", HitChildren: true},
	ModeLine:    {Cursor: "crosshair", HitChildren: true},
	ModeArrow:   {Cursor: "crosshair", HitChildren: true},
	ModePen:     {Cursor: "crosshair", HitChildren: true},
}

// ModeState is sent with editor:mode-changed.
type ModeState struct {
	Mode Mode `json:"mode"`
	ModeConfig
}

func (m Mode) draws() bool {
	switch m {
	case ModeRect, ModeEllipse, ModeDiamond, ModeFrame, ModeLine, ModeArrow, ModePen:
		return true
	}
	return false
}

func (m Mode) boxed() bool {
	switch m {
	case ModeRect, ModeEllipse, ModeDiamond, ModeFrame:
		return true
	}
	return false
}

// PointerEvent is a pointer position in screen pixels.
type PointerEvent struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Shift bool    `json:"shift"`
	// Pressed reports whether a button is held during a move.
	Pressed bool `json:"pressed"`
}

func (p PointerEvent) point() scene.Point { return scene.Point{X: p.X, Y: p.Y} }

// drawingSession lives from pointer-down to pointer-up in a drawing mode.
type drawingSession struct {
	mode  Mode
	start scene.Point
	node  *scene.Node
	// points collects pen samples in tree space.
	points []scene.Point
}

// Mode returns the active tool.
func (e *Editor) Mode() ModeState {
	e.lock()
	defer e.unlock()
	return ModeState{Mode: e.mode, ModeConfig: modes[e.mode]}
}

// SetMode switches tools. Leaving select clears the selection; any
// unfinished drawing is discarded.
func (e *Editor) SetMode(mode string) error {
	e.lock()
	defer e.unlock()
	return e.setMode(Mode(mode))
}

func (e *Editor) setMode(m Mode) error {
	cfg, ok := modes[m]
	if !ok {
		return fmt.Errorf("set mode %q: %w", m, ErrUnknownMode)
	}
	if e.session != nil {
		if e.session.node != nil {
			e.session.node.Detach()
		}
		e.session = nil
	}
	e.endDrag()
	if m != ModeSelect {
		e.cancelSelection()
	}
	e.clip.ResetOffset()
	e.mode = m
	e.tree.Root().HitChildren = cfg.HitChildren
	e.queue(domain.EventModeChanged, ModeState{Mode: m, ModeConfig: cfg})
	return nil
}

// ── Pointer protocol ───────────────────────────────────────

// PointerDown starts a drawing gesture, a text placement, a drag or a pan
// depending on the active tool.
func (e *Editor) PointerDown(ev PointerEvent) {
	e.lock()
	defer e.unlock()
	if e.closed {
		return
	}
	p := e.tree.InnerPoint(ev.point())

	switch {
	case e.mode.draws():
		e.cancelSelection()
		n := newShape(e.mode, p)
		if err := e.tree.Add(n); err != nil {
			e.emitError(err)
			return
		}
		e.session = &drawingSession{mode: e.mode, start: p, node: n, points: []scene.Point{p}}
	case e.mode == ModeText:
		e.session = &drawingSession{mode: ModeText, start: p}
	case e.mode == ModeMove:
		e.beginPan(ev)
	default:
		e.beginDrag(ev, p)
	}
}

// PointerMove updates the gesture in progress, or reports hover changes
// when nothing is pressed.
func (e *Editor) PointerMove(ev PointerEvent) {
	e.lock()
	defer e.unlock()
	if e.closed {
		return
	}
	p := e.tree.InnerPoint(ev.point())

	switch {
	case e.session != nil && e.session.node != nil:
		e.updateShape(p)
	case e.drag != nil && e.drag.pan:
		e.updatePan(ev)
	case e.drag != nil:
		e.updateDrag(p)
	case !ev.Pressed:
		e.hover(p)
	}
}

// PointerUp finishes the gesture in progress.
func (e *Editor) PointerUp(ev PointerEvent) {
	e.lock()
	defer e.unlock()
	if e.closed {
		return
	}
	p := e.tree.InnerPoint(ev.point())

	switch {
	case e.session != nil && e.session.mode == ModeText:
		e.session = nil
		_, _ = e.addText(p, "")
		_ = e.setMode(ModeSelect)
	case e.session != nil:
		e.updateShape(p)
		e.finishShape()
	case e.drag != nil:
		e.finishDrag()
	}
}

// ── Shape construction ─────────────────────────────────────

// newShape returns the zero-size placeholder inserted on pointer-down.
func newShape(m Mode, p scene.Point) *scene.Node {
	var n *scene.Node
	switch m {
	case ModeRect:
		n = scene.New(scene.TagRect)
		n.Name = "Rectangle"
		n.Fill = scene.Solid("#32cd79")
		n.CornerRadius = scene.UniformRadius(10)
	case ModeEllipse:
		n = scene.New(scene.TagEllipse)
		n.Name = "Ellipse"
		n.Fill = scene.Solid("#ffff00")
	case ModeDiamond:
		n = scene.New(scene.TagPolygon)
		n.Name = "Diamond"
		n.Fill = scene.Solid("#0000ff")
	case ModeFrame:
		n = scene.New(scene.TagFrame)
		n.Fill = scene.Solid("#ffffff")
		n.Overflow = "hidden"
	case ModeLine, ModePen:
		n = scene.New(scene.TagLine)
		n.Name = "Line"
		n.Stroke, n.StrokeWidth = "#333333", 2
		n.Points = []float64{0, 0}
	case ModeArrow:
		n = scene.New(scene.TagArrow)
		n.Name = "Arrow"
		n.Stroke, n.StrokeWidth = "#333333", 2
		n.Points = []float64{0, 0}
	}
	n.X, n.Y = p.X, p.Y
	return n
}

func (e *Editor) updateShape(p scene.Point) {
	s := e.session
	n := s.node
	switch {
	case s.mode.boxed():
		x, y := math.Min(p.X, s.start.X), math.Min(p.Y, s.start.Y)
		w, h := math.Abs(p.X-s.start.X), math.Abs(p.Y-s.start.Y)
		n.SetPosition(x, y)
		n.SetSize(w, h)
		if s.mode == ModeDiamond {
			n.SetPoints([]float64{w / 2, 0, w, h / 2, w / 2, h, 0, h / 2})
		}
	case s.mode == ModeLine || s.mode == ModeArrow:
		n.SetPoints([]float64{0, 0, p.X - s.start.X, p.Y - s.start.Y})
	case s.mode == ModePen:
		last := s.points[len(s.points)-1]
		if p.Distance(last) <= e.opts.Thresholds.PenStep/e.tree.Zoom() {
			return
		}
		s.points = append(s.points, p)
		n.SetPoints(relative(s.points, s.start))
	}
}

// finishShape validates the gesture, keeping or discarding the node, and
// returns to select mode.
func (e *Editor) finishShape() {
	s := e.session
	e.session = nil
	defer func() { _ = e.setMode(ModeSelect) }()

	zoom := e.tree.Zoom()
	minSize := e.opts.Thresholds.MinSize / zoom
	n := s.node

	switch {
	case s.mode == ModePen:
		n = e.finishPen(s)
		if n == nil {
			return
		}
	case s.mode == ModeLine || s.mode == ModeArrow:
		pts := n.PointList()
		if len(pts) < 2 || pts[0].Distance(pts[1]) < minSize {
			n.Detach()
			return
		}
	default:
		if n.Width < minSize || n.Height < minSize {
			n.Detach()
			return
		}
		if n.Tag == scene.TagFrame {
			scene.AttachFrameLabel(n)
		}
	}

	e.selectNodes(n)
	e.clip.ResetOffset()
	e.record("draw-" + string(s.mode))
}

// finishPen turns the sampled path into a line, or into a polygon when it
// ends near its start. Degenerate paths are removed and nil is returned.
func (e *Editor) finishPen(s *drawingSession) *scene.Node {
	s.node.Detach()
	pts := s.points
	if len(pts) < 3 {
		return nil
	}

	closeDist := e.opts.Thresholds.CloseDistance / e.tree.Zoom()
	tag := scene.TagLine
	if pts[len(pts)-1].Distance(pts[0]) < closeDist {
		tag = scene.TagPolygon
		for len(pts) > 3 && pts[len(pts)-1].Distance(pts[0]) < closeDist {
			pts = pts[:len(pts)-1]
		}
	}

	n := scene.New(tag)
	n.Stroke, n.StrokeWidth = s.node.Stroke, s.node.StrokeWidth
	n.Name = "Line"
	if tag == scene.TagPolygon {
		n.Name = "Shape"
	}
	b := pointBounds(pts)
	n.X, n.Y, n.Width, n.Height = b.X, b.Y, b.Width, b.Height
	n.Points = relative(pts, scene.Point{X: b.X, Y: b.Y})
	if err := e.tree.Add(n); err != nil {
		e.emitError(err)
		return nil
	}
	return n
}

// relative flattens pts into coordinates relative to origin.
func relative(pts []scene.Point, origin scene.Point) []float64 {
	out := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		out = append(out, p.X-origin.X, p.Y-origin.Y)
	}
	return out
}

func pointBounds(pts []scene.Point) scene.Bounds {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}
	return scene.Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
