package render

import (
	"math"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"vectorboard/internal/scene"
)

const (
	defaultFontSize = 16
	lineSpacing     = 1.2
	arrowHead       = 10
)

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func defaultFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

type renderer struct {
	dc     *gg.Context
	images ImageLoader
	base   scene.Matrix
}

// toGG converts a canvas-style matrix to gg's row-major layout.
func toGG(m scene.Matrix) gg.Matrix {
	return gg.Matrix{A: m.A, B: m.C, C: m.E, D: m.B, E: m.D, F: m.F}
}

// draw paints n and its subtree. parent maps n's parent space to pixels.
func (r *renderer) draw(n *scene.Node, parent scene.Matrix, alpha float64) error {
	if !n.Visible || n.Internal {
		return nil
	}
	m := parent.Mul(n.Local())
	alpha *= n.Opacity

	r.dc.Push()
	defer r.dc.Pop()
	r.dc.SetTransform(toGG(m))

	switch n.Tag {
	case scene.TagGroup:
	case scene.TagFrame, scene.TagBox:
		r.shape(n, alpha, func() { r.roundedRect(n.Width, n.Height, n.CornerRadius) })
		if n.Overflow == "hidden" {
			r.dc.DrawRectangle(0, 0, n.Width, n.Height)
			r.dc.Clip()
		}
	case scene.TagRect:
		r.shape(n, alpha, func() { r.roundedRect(n.Width, n.Height, n.CornerRadius) })
	case scene.TagEllipse:
		r.shape(n, alpha, func() { r.dc.DrawEllipse(n.Width/2, n.Height/2, n.Width/2, n.Height/2) })
	case scene.TagPolygon:
		r.shape(n, alpha, func() { r.polygon(n) })
	case scene.TagStar:
		r.shape(n, alpha, func() { r.star(n.Width, n.Height) })
	case scene.TagLine, scene.TagArrow:
		r.line(n, alpha)
	case scene.TagText:
		if err := r.text(n, alpha); err != nil {
			return err
		}
	case scene.TagImage:
		r.image(n, alpha)
	}

	for _, c := range n.Children() {
		if err := r.draw(c, m, alpha); err != nil {
			return err
		}
	}
	return nil
}

// shape fills then strokes the path produced by build, preceded by its
// shadow when one is set.
func (r *renderer) shape(n *scene.Node, alpha float64, build func()) {
	if sh := n.Shadow; sh != nil && sh.Color != "" {
		r.dc.Push()
		r.dc.Translate(sh.X, sh.Y)
		build()
		r.dc.SetFillBrush(gg.Solid(parseColor(sh.Color, alpha)))
		_ = r.dc.Fill()
		r.dc.Pop()
	}
	if n.Fill != nil {
		build()
		r.setFill(n.Fill, n.Width, alpha)
		_ = r.dc.Fill()
	}
	if n.Stroke != "" && n.StrokeWidth > 0 {
		build()
		r.dc.SetStrokeBrush(gg.Solid(parseColor(n.Stroke, alpha)))
		r.dc.SetLineWidth(n.StrokeWidth)
		_ = r.dc.Stroke()
	}
}

func (r *renderer) setFill(f *scene.Fill, width, alpha float64) {
	if !f.IsGradient() {
		r.dc.SetFillBrush(gg.Solid(parseColor(f.Color, alpha)))
		return
	}
	x0, y0 := r.dc.TransformPoint(0, 0)
	x1, y1 := r.dc.TransformPoint(width, 0)
	g := gg.NewLinearGradientBrush(x0, y0, x1, y1)
	for _, s := range f.Stops {
		g.AddColorStop(s.Offset, parseColor(s.Color, alpha))
	}
	r.dc.SetFillBrush(g)
}

// roundedRect builds a rectangle path with per-corner radii, each clamped
// to half of the shorter side.
func (r *renderer) roundedRect(w, h float64, radius *scene.CornerRadius) {
	if radius == nil || radius.Max() == 0 {
		r.dc.DrawRectangle(0, 0, w, h)
		return
	}
	tl, tr, br, bl := radius.Uniform, radius.Uniform, radius.Uniform, radius.Uniform
	if len(radius.Corners) == 4 {
		tl, tr, br, bl = radius.Corners[0], radius.Corners[1], radius.Corners[2], radius.Corners[3]
	}
	limit := math.Min(w, h) / 2
	tl, tr, br, bl = math.Min(tl, limit), math.Min(tr, limit), math.Min(br, limit), math.Min(bl, limit)

	dc := r.dc
	dc.NewSubPath()
	dc.MoveTo(tl, 0)
	dc.LineTo(w-tr, 0)
	dc.QuadraticTo(w, 0, w, tr)
	dc.LineTo(w, h-br)
	dc.QuadraticTo(w, h, w-br, h)
	dc.LineTo(bl, h)
	dc.QuadraticTo(0, h, 0, h-bl)
	dc.LineTo(0, tl)
	dc.QuadraticTo(0, 0, tl, 0)
	dc.ClosePath()
}

func (r *renderer) polygon(n *scene.Node) {
	pts := n.PointList()
	if len(pts) < 3 {
		r.dc.DrawRegularPolygon(3, n.Width/2, n.Height/2, math.Min(n.Width, n.Height)/2, -math.Pi/2)
		return
	}
	r.dc.NewSubPath()
	r.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.dc.ClosePath()
}

// star builds a five-pointed star inscribed in the w×h box.
func (r *renderer) star(w, h float64) {
	cx, cy := w/2, h/2
	r.dc.NewSubPath()
	for i := range 10 {
		rad := 1.0
		if i%2 == 1 {
			rad = 0.382
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		x, y := cx+math.Cos(a)*cx*rad, cy+math.Sin(a)*cy*rad
		if i == 0 {
			r.dc.MoveTo(x, y)
		} else {
			r.dc.LineTo(x, y)
		}
	}
	r.dc.ClosePath()
}

func (r *renderer) line(n *scene.Node, alpha float64) {
	pts := n.PointList()
	if len(pts) < 2 {
		return
	}
	color := n.Stroke
	if color == "" {
		color = "#000000"
	}
	width := n.StrokeWidth
	if width <= 0 {
		width = 1
	}
	r.dc.SetStrokeBrush(gg.Solid(parseColor(color, alpha)))
	r.dc.SetLineWidth(width)

	r.dc.NewSubPath()
	r.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	_ = r.dc.Stroke()

	if n.Tag != scene.TagArrow {
		return
	}
	tip, from := pts[len(pts)-1], pts[len(pts)-2]
	a := math.Atan2(tip.Y-from.Y, tip.X-from.X)
	size := arrowHead + width*2
	r.dc.NewSubPath()
	r.dc.MoveTo(tip.X-size*math.Cos(a-math.Pi/6), tip.Y-size*math.Sin(a-math.Pi/6))
	r.dc.LineTo(tip.X, tip.Y)
	r.dc.LineTo(tip.X-size*math.Cos(a+math.Pi/6), tip.Y-size*math.Sin(a+math.Pi/6))
	_ = r.dc.Stroke()
}

func (r *renderer) text(n *scene.Node, alpha float64) error {
	if n.Text == "" {
		return nil
	}
	src, err := defaultFont()
	if err != nil {
		return err
	}
	size := n.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	r.dc.SetFont(src.Face(size))

	color := "#000000"
	if n.Fill != nil && !n.Fill.IsGradient() && n.Fill.Color != "" {
		color = n.Fill.Color
	}
	r.dc.SetFillBrush(gg.Solid(parseColor(color, alpha)))

	lead := size * lineSpacing
	if lh := n.LineHeight; lh != nil && lh.Value > 0 {
		lead = lh.Value
		if lh.Type == "percent" {
			lead = size * lh.Value
		}
	}
	ax := 0.0
	x := 0.0
	switch n.TextAlign {
	case "center":
		ax, x = 0.5, n.Width/2
	case "right":
		ax, x = 1, n.Width
	}
	for i, line := range strings.Split(n.Text, "\n") {
		r.dc.DrawStringAnchored(line, x, size+float64(i)*lead, ax, 0)
	}
	return nil
}

func (r *renderer) image(n *scene.Node, alpha float64) {
	if n.URL == "" {
		return
	}
	img, err := r.images(n.URL)
	if err != nil || img == nil {
		r.dc.DrawRectangle(0, 0, n.Width, n.Height)
		r.dc.SetFillBrush(gg.Solid(parseColor("#e5e5e5", alpha)))
		_ = r.dc.Fill()
		return
	}
	r.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		DstWidth:  n.Width,
		DstHeight: n.Height,
		Opacity:   alpha,
	})
}
