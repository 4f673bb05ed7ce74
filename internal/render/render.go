// Package render rasterizes scene nodes to PNG or JPEG.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gogpu/gg"

	"vectorboard/internal/scene"
)

var (
	ErrNothingToRender = errors.New("render: nothing to render")
	ErrUnknownFormat   = errors.New("render: unknown format")
)

// Format is an output image format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// ParseFormat accepts png, jpg and jpeg in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Options controls Encode.
type Options struct {
	Format Format
	// Scale multiplies the output size. Zero means 1.
	Scale float64
	// Quality is the JPEG quality in [0, 1]. Zero means 1.
	Quality float64
	// Background fills the canvas before drawing. JPEG defaults to white.
	Background string
	// Images resolves image node URLs. Nil uses LoadImage.
	Images ImageLoader
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

func (o Options) jpegQuality() int {
	q := o.Quality
	if q <= 0 || q > 1 {
		q = 1
	}
	return int(math.Round(q * 100))
}

// Bounds is the union of the world bounds of nodes, grown by half of each
// stroke width. ok is false when there is nothing to draw.
func Bounds(nodes []*scene.Node) (out scene.Bounds, ok bool) {
	for _, n := range nodes {
		if n == nil || n.Internal || !n.Visible {
			continue
		}
		b := n.WorldBounds()
		if pad := n.StrokeWidth / 2; pad > 0 {
			b = scene.Bounds{X: b.X - pad, Y: b.Y - pad, Width: b.Width + 2*pad, Height: b.Height + 2*pad}
		}
		if !ok {
			out, ok = b, true
			continue
		}
		out = out.Union(b)
	}
	return out, ok
}

// Encode draws nodes (with their subtrees) cropped to their union bounds and
// writes the image to w.
func Encode(w io.Writer, nodes []*scene.Node, opts Options) error {
	if opts.Format == "" {
		opts.Format = PNG
	}
	if opts.Format != PNG && opts.Format != JPEG {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	b, ok := Bounds(nodes)
	if !ok {
		return ErrNothingToRender
	}

	s := opts.scale()
	width := max(1, int(math.Ceil(b.Width*s)))
	height := max(1, int(math.Ceil(b.Height*s)))

	dc := gg.NewContext(width, height)
	defer dc.Close()

	bg := opts.Background
	if bg == "" && opts.Format == JPEG {
		bg = "#ffffff"
	}
	if bg != "" {
		dc.ClearWithColor(parseColor(bg, 1))
	}

	r := &renderer{
		dc:     dc,
		images: opts.Images,
		base:   scene.Matrix{A: s, D: s}.Mul(scene.Translate(-b.X, -b.Y)),
	}
	if r.images == nil {
		r.images = LoadImage
	}
	for _, n := range nodes {
		if n == nil || n.Internal || !n.Visible {
			continue
		}
		parent := scene.Identity
		if p := n.Parent(); p != nil {
			parent = p.World()
		}
		if err := r.draw(n, r.base.Mul(parent), 1); err != nil {
			return err
		}
	}

	switch opts.Format {
	case JPEG:
		if err := dc.EncodeJPEG(w, opts.jpegQuality()); err != nil {
			return fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		if err := dc.EncodePNG(w); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
	}
	return nil
}
