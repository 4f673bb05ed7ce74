package figma

import (
	"vectorboard/internal/scene"
)

// convertREST maps a REST node to a record positioned relative to the
// absolute origin of its parent. Hidden and unsupported nodes yield false.
func (p *parser) convertREST(n *Node, parentX, parentY float64) (scene.Record, bool) {
	if n == nil || !visible(n.Visible) {
		return scene.Record{}, false
	}

	var absX, absY, width, height float64
	if bb := n.AbsoluteBoundingBox; bb != nil {
		absX, absY, width, height = bb.X, bb.Y, bb.Width, bb.Height
	}
	if width == 0 && n.Size != nil {
		width = n.Size.X
	}
	if height == 0 && n.Size != nil {
		height = n.Size.Y
	}

	r := scene.Record{
		Name:      n.Name,
		X:         absX - parentX,
		Y:         absY - parentY,
		Width:     width,
		Height:    height,
		Rotation:  -n.Rotation,
		Fill:      resolveFill(n.Fills),
		Shadow:    resolveShadow(n.Effects),
		BlendMode: resolveBlendMode(n.BlendMode),
		Editable:  scene.Bool(true),
	}
	if n.Opacity != nil && *n.Opacity != 1 {
		r.Opacity = scene.Float(*n.Opacity)
	}
	r.Stroke, r.StrokeWidth = resolveStroke(n.Strokes, n.StrokeWeight)

	children := func() []scene.Record {
		var out []scene.Record
		for i := range n.Children {
			if c, ok := p.convertREST(&n.Children[i], absX, absY); ok {
				out = append(out, c)
			}
		}
		return out
	}

	switch n.Type {
	case "FRAME", "COMPONENT", "COMPONENT_SET", "INSTANCE":
		r.Tag = scene.TagFrame
		r.CornerRadius = resolveCornerRadius(n)
		r.Overflow = "show"
		if n.ClipsContent {
			r.Overflow = "hidden"
		}
		r.Children = children()
	case "SECTION":
		r.Tag = scene.TagFrame
		r.Children = children()
	case "GROUP":
		r.Tag = scene.TagGroup
		r.Children = children()
	case "BOOLEAN_OPERATION":
		r.Tag = scene.TagGroup
		r.Name = "[Boolean] " + n.Name
		r.Children = children()
	case "RECTANGLE", "ROUNDED_RECTANGLE":
		r.Tag = scene.TagRect
		r.CornerRadius = resolveCornerRadius(n)
	case "ELLIPSE":
		r.Tag = scene.TagEllipse
	case "POLYGON":
		r.Tag = scene.TagPolygon
	case "STAR":
		r.Tag = scene.TagStar
	case "LINE":
		r.Tag = scene.TagLine
		r.Points = []float64{0, 0, width, 0}
	case "VECTOR":
		r.Tag = scene.TagRect
		r.Name = "[Vector] " + n.Name
	case "TEXT":
		r.Tag = scene.TagText
		r.Text = n.Characters
		r.TextStyle = resolveTextStyle(n.Style)
		if r.Fill == nil {
			r.Fill = scene.Solid("#000000")
		}
	default:
		p.log.Warnf("figma: unsupported node type %s (%s)", n.Type, n.Name)
		return scene.Record{}, false
	}
	return r, true
}

func findREST(n *Node, id string) *Node {
	if n.ID == id {
		return n
	}
	for i := range n.Children {
		if found := findREST(&n.Children[i], id); found != nil {
			return found
		}
	}
	return nil
}
