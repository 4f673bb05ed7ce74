package editor

import (
	"bytes"
	"fmt"
	"image"
	"unicode/utf8"

	"vectorboard/internal/render"
	"vectorboard/internal/scene"
)

const (
	defaultTextContent = "Double-click to edit"
	textFontSize       = 24
	minFontSize        = 8
	maxFontSize        = 120
	imageFitRatio      = 0.8
)

// AddText places a text node at the screen position (x, y). An empty text
// gets the placeholder content.
func (e *Editor) AddText(x, y float64, text string) (string, error) {
	e.lock()
	defer e.unlock()
	if e.closed {
		return "", ErrClosed
	}
	n, err := e.addText(e.tree.InnerPoint(scene.Point{X: x, Y: y}), text)
	if err != nil {
		return "", err
	}
	return n.ID, nil
}

// addText inserts a text node at p (tree space). The font size compensates
// for the zoom so new text always looks the same size on screen.
func (e *Editor) addText(p scene.Point, text string) (*scene.Node, error) {
	if text == "" {
		text = defaultTextContent
	}
	n := scene.New(scene.TagText)
	n.X, n.Y = p.X, p.Y
	n.Text = text
	n.Fill = scene.Solid("#333")
	n.FontSize = min(maxFontSize, max(minFontSize, textFontSize/e.tree.Zoom()))
	n.Width = float64(utf8.RuneCountInString(text)) * n.FontSize * 0.6
	n.Height = n.FontSize * 1.2
	if err := e.tree.Add(n); err != nil {
		err = fmt.Errorf("add text: %w", err)
		e.emitError(err)
		return nil, err
	}
	e.selectNodes(n)
	e.clip.ResetOffset()
	e.record("add-text")
	return n, nil
}

// ImageOptions places an image. X and Y are screen coordinates; when
// either is nil the image is centred on the visible area.
type ImageOptions struct {
	// Src is read when no bytes are given: a data: URL or a local path.
	Src  string   `json:"src,omitempty"`
	Name string   `json:"name,omitempty"`
	X    *float64 `json:"x,omitempty"`
	Y    *float64 `json:"y,omitempty"`
}

// AddImage decodes an image, scales it down to fit 80% of the visible area
// and adds it. Decode failures are reported on editor:error and returned.
func (e *Editor) AddImage(data []byte, opts ImageOptions) (string, error) {
	e.lock()
	defer e.unlock()
	if e.closed {
		return "", ErrClosed
	}

	if len(data) == 0 && opts.Src != "" {
		var err error
		if data, err = render.ReadSource(opts.Src); err != nil {
			err = fmt.Errorf("add image: %w", err)
			e.emitError(err)
			return "", err
		}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		err = fmt.Errorf("add image: decode: %w", err)
		e.emitError(err)
		return "", err
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		err = fmt.Errorf("add image: empty %s image", format)
		e.emitError(err)
		return "", err
	}

	w, h := float64(cfg.Width), float64(cfg.Height)
	visible := e.tree.VisibleBounds()
	scale := min(1, visible.Width*imageFitRatio/w, visible.Height*imageFitRatio/h)
	w, h = w*scale, h*scale

	n := scene.New(scene.TagImage)
	n.Name = opts.Name
	if n.Name == "" {
		n.Name = "Image"
	}
	n.Width, n.Height = w, h
	n.URL = render.EncodeDataURL(data, format)
	if opts.X != nil && opts.Y != nil {
		p := e.tree.InnerPoint(scene.Point{X: *opts.X, Y: *opts.Y})
		n.X, n.Y = p.X, p.Y
	} else {
		c := visible.Center()
		n.X, n.Y = c.X-w/2, c.Y-h/2
	}
	if err := e.tree.Add(n); err != nil {
		return "", fmt.Errorf("add image: %w", err)
	}
	e.selectNodes(n)
	e.clip.ResetOffset()
	e.record("add-image")
	return n.ID, nil
}
