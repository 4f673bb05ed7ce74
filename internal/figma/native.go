package figma

import (
	"encoding/json"
	"strconv"
	"strings"

	"vectorboard/internal/scene"
)

// NativeNode is the flat export format: lower-case types, direct geometry
// and paints already expressed as CSS values.
type NativeNode struct {
	ID           string              `json:"id,omitempty"`
	Type         string              `json:"type"`
	Name         string              `json:"name,omitempty"`
	X            float64             `json:"x"`
	Y            float64             `json:"y"`
	Width        float64             `json:"width"`
	Height       float64             `json:"height"`
	Opacity      *float64            `json:"opacity,omitempty"`
	Rotation     float64             `json:"rotation,omitempty"`
	Fill         *scene.Fill         `json:"fill,omitempty"`
	Stroke       string              `json:"stroke,omitempty"`
	StrokeWidth  float64             `json:"strokeWidth,omitempty"`
	CornerRadius *scene.CornerRadius `json:"cornerRadius,omitempty"`
	Shadow       *scene.Shadow       `json:"shadow,omitempty"`
	Clip         bool                `json:"clip,omitempty"`
	Points       []float64           `json:"points,omitempty"`

	Content       string            `json:"content,omitempty"`
	Text          string            `json:"text,omitempty"`
	Characters    string            `json:"characters,omitempty"`
	FontSize      float64           `json:"fontSize,omitempty"`
	FontWeight    json.RawMessage   `json:"fontWeight,omitempty"`
	FontFamily    string            `json:"fontFamily,omitempty"`
	TextAlign     string            `json:"textAlign,omitempty"`
	LineHeight    *scene.LineHeight `json:"lineHeight,omitempty"`
	LetterSpacing float64           `json:"letterSpacing,omitempty"`

	URL string `json:"url,omitempty"`
	Src string `json:"src,omitempty"`

	Children []NativeNode `json:"children,omitempty"`
}

func (p *parser) convertNative(n *NativeNode) (scene.Record, bool) {
	if n == nil || n.Type == "" {
		return scene.Record{}, false
	}
	r := scene.Record{
		Name:         n.Name,
		X:            n.X,
		Y:            n.Y,
		Width:        n.Width,
		Height:       n.Height,
		Rotation:     n.Rotation,
		Fill:         n.Fill,
		Stroke:       n.Stroke,
		StrokeWidth:  n.StrokeWidth,
		CornerRadius: n.CornerRadius,
		Shadow:       n.Shadow,
		Editable:     scene.Bool(true),
	}
	if n.Opacity != nil && *n.Opacity != 1 {
		r.Opacity = scene.Float(*n.Opacity)
	}

	children := func() []scene.Record {
		var out []scene.Record
		for i := range n.Children {
			if c, ok := p.convertNative(&n.Children[i]); ok {
				out = append(out, c)
			}
		}
		return out
	}
	points := func() []float64 {
		if len(n.Points) > 0 {
			return n.Points
		}
		return []float64{0, 0, n.Width, 0}
	}

	switch strings.ToLower(n.Type) {
	case "frame":
		r.Tag = scene.TagFrame
		r.Overflow = "show"
		if n.Clip {
			r.Overflow = "hidden"
		}
		r.Children = children()
	case "group":
		r.Tag = scene.TagGroup
		r.Children = children()
	case "boolean", "boolean_operation":
		r.Tag = scene.TagGroup
		r.Name = "[Boolean] " + n.Name
		r.Children = children()
	case "rect", "rectangle":
		r.Tag = scene.TagRect
	case "ellipse", "circle":
		r.Tag = scene.TagEllipse
	case "polygon":
		r.Tag = scene.TagPolygon
	case "star":
		r.Tag = scene.TagStar
	case "line":
		r.Tag = scene.TagLine
		r.Points = points()
	case "arrow":
		r.Tag = scene.TagArrow
		r.Points = points()
	case "text":
		r.Tag = scene.TagText
		r.Text = firstNonEmpty(n.Content, n.Text, n.Characters)
		r.TextStyle = scene.TextStyle{
			FontSize:      n.FontSize,
			FontWeight:    fontWeight(n.FontWeight),
			FontFamily:    n.FontFamily,
			TextAlign:     n.TextAlign,
			LineHeight:    n.LineHeight,
			LetterSpacing: n.LetterSpacing,
		}
	case "image":
		r.Tag = scene.TagImage
		r.URL = firstNonEmpty(n.URL, n.Src)
	case "vector":
		r.Tag = scene.TagRect
		r.Name = "[Vector] " + n.Name
	default:
		p.log.Warnf("figma: unsupported native node type %s (%s)", n.Type, n.Name)
		return scene.Record{}, false
	}
	return r, true
}

// fontWeight accepts "bold", "600" or 600.
func fontWeight(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func findNative(n *NativeNode, id string) *NativeNode {
	if n.ID == id {
		return n
	}
	for i := range n.Children {
		if found := findNative(&n.Children[i], id); found != nil {
			return found
		}
	}
	return nil
}
