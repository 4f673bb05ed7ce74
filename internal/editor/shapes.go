package editor

import (
	"errors"
	"fmt"
	"math"

	"vectorboard/internal/frame"
	"vectorboard/internal/scene"
)

var ErrInvalidShape = errors.New("invalid shape")

// ShapeSpec describes a node placed without a pointer gesture, in tree
// coordinates. Type takes the drawing mode names plus "star" and "text".
type ShapeSpec struct {
	Type        string    `json:"type"`
	Name        string    `json:"name,omitempty"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Points      []float64 `json:"points,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	Text        string    `json:"text,omitempty"`
}

// AddShape creates a node from spec, drops it into the container under its
// center, selects it and records "add-shape".
func (e *Editor) AddShape(spec ShapeSpec) (string, error) {
	e.lock()
	defer e.unlock()
	if e.closed {
		return "", ErrClosed
	}
	p := scene.Point{X: spec.X, Y: spec.Y}

	if spec.Type == string(ModeText) {
		n, err := e.addText(p, spec.Text)
		if err != nil {
			return "", err
		}
		return n.ID, nil
	}

	n, err := buildShape(spec, p)
	if err != nil {
		return "", err
	}
	if err := e.tree.Add(n); err != nil {
		return "", err
	}
	if n.Tag == scene.TagFrame {
		scene.AttachFrameLabel(n)
	}
	if _, err := frame.Reparent(e.tree, n); err != nil {
		e.log.Warnf("editor: place %s: %v", n.ID, err)
	}

	e.selectNodes(n)
	e.clip.ResetOffset()
	e.record("add-shape")
	return n.ID, nil
}

func buildShape(spec ShapeSpec, p scene.Point) (*scene.Node, error) {
	var n *scene.Node
	m := Mode(spec.Type)
	switch {
	case spec.Type == "star":
		n = scene.New(scene.TagStar)
		n.Name = "Star"
		n.Fill = scene.Solid("#ffa500")
		n.X, n.Y = p.X, p.Y
	case m.draws() && m != ModePen:
		n = newShape(m, p)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidShape, spec.Type)
	}

	switch {
	case m == ModeLine || m == ModeArrow:
		pts := spec.Points
		if len(pts) == 0 {
			pts = []float64{0, 0, spec.Width, spec.Height}
		}
		if len(pts) < 4 || len(pts)%2 != 0 {
			return nil, fmt.Errorf("%w: a line needs at least two points", ErrInvalidShape)
		}
		n.Points = append([]float64(nil), pts...)
		b := pointBounds(n.PointList())
		n.Width, n.Height = b.Width, b.Height
	default:
		if spec.Width <= 0 || spec.Height <= 0 {
			return nil, fmt.Errorf("%w: width and height must be positive", ErrInvalidShape)
		}
		n.Width, n.Height = spec.Width, spec.Height
		if m == ModeDiamond {
			w, h := spec.Width, spec.Height
			n.Points = []float64{w / 2, 0, w, h / 2, w / 2, h, 0, h / 2}
		}
	}

	if spec.Name != "" {
		n.Name = spec.Name
	}
	if spec.Fill != "" {
		n.Fill = scene.Solid(spec.Fill)
	}
	if spec.Stroke != "" {
		n.Stroke = spec.Stroke
		if n.StrokeWidth == 0 {
			n.StrokeWidth = 2
		}
	}
	if spec.StrokeWidth > 0 {
		n.StrokeWidth = spec.StrokeWidth
	}
	return n, nil
}

// ── Connectors ─────────────────────────────────────────────

// Connect draws an elbow arrow from one node to another, leaving and
// entering through the facing sides of their bounds, and records "connect".
func (e *Editor) Connect(fromID, toID string) (string, error) {
	e.lock()
	defer e.unlock()
	from, to := e.tree.Find(fromID), e.tree.Find(toID)
	if from == nil {
		return "", fmt.Errorf("connect from %s: %w", fromID, ErrNodeNotFound)
	}
	if to == nil {
		return "", fmt.Errorf("connect to %s: %w", toID, ErrNodeNotFound)
	}
	if from == to {
		return "", fmt.Errorf("%w: cannot connect a node to itself", ErrInvalidShape)
	}

	src, dst := anchors(from.WorldBounds(), to.WorldBounds())
	n := newShape(ModeArrow, src)
	n.Name = "Connector"
	n.Points = elbow(dst.X-src.X, dst.Y-src.Y, verticalLink(from.WorldBounds(), to.WorldBounds()))
	b := pointBounds(n.PointList())
	n.Width, n.Height = b.Width, b.Height
	n.Data = map[string]string{"from": fromID, "to": toID}
	if err := e.tree.Add(n); err != nil {
		return "", err
	}

	e.selectNodes(n)
	e.record("connect")
	return n.ID, nil
}

// verticalLink reports whether two boxes are linked top-to-bottom rather
// than side-to-side.
func verticalLink(a, b scene.Bounds) bool {
	d := b.Center()
	c := a.Center()
	return math.Abs(d.Y-c.Y) > math.Abs(d.X-c.X)
}

// anchors returns the mid-points of the facing sides of a and b.
func anchors(a, b scene.Bounds) (scene.Point, scene.Point) {
	ca, cb := a.Center(), b.Center()
	if verticalLink(a, b) {
		if cb.Y > ca.Y {
			return scene.Point{X: ca.X, Y: a.Y + a.Height}, scene.Point{X: cb.X, Y: b.Y}
		}
		return scene.Point{X: ca.X, Y: a.Y}, scene.Point{X: cb.X, Y: b.Y + b.Height}
	}
	if cb.X > ca.X {
		return scene.Point{X: a.X + a.Width, Y: ca.Y}, scene.Point{X: b.X, Y: cb.Y}
	}
	return scene.Point{X: a.X, Y: ca.Y}, scene.Point{X: b.X + b.Width, Y: cb.Y}
}

// elbow routes from (0,0) to (dx,dy) with a bend half way, dropping the
// bend when both ends line up.
func elbow(dx, dy float64, vertical bool) []float64 {
	var pts []float64
	if vertical {
		mid := dy / 2
		pts = []float64{0, 0, 0, mid, dx, mid, dx, dy}
	} else {
		mid := dx / 2
		pts = []float64{0, 0, mid, 0, mid, dy, dx, dy}
	}
	if math.Abs(dx) < 0.5 || math.Abs(dy) < 0.5 {
		return []float64{0, 0, dx, dy}
	}
	return pts
}
