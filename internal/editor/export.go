package editor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"vectorboard/internal/render"
)

var ErrEmptySelection = errors.New("nothing selected")

// ExportOptions controls ExportSelection.
type ExportOptions struct {
	Scale float64 `json:"scale"`
	// Format is png, jpg or jpeg.
	Format string `json:"format"`
	// Quality is the JPEG quality in [0, 1].
	Quality float64 `json:"quality"`
}

// Export is a rendered image ready to be saved.
type Export struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Data     []byte `json:"data"`
}

// ExportSelection rasterizes the selection. A single node exports under
// its own name; several nodes are cropped to their union bounds and
// exported as one image.
func (e *Editor) ExportSelection(opts ExportOptions) (Export, error) {
	e.lock()
	defer e.unlock()
	if e.closed {
		return Export{}, ErrClosed
	}
	format, err := render.ParseFormat(opts.Format)
	if err != nil {
		return Export{}, err
	}
	ext := strings.ToLower(strings.TrimSpace(opts.Format))
	if ext == "" {
		ext = string(format)
	}

	nodes := e.selected()
	if len(nodes) == 0 {
		return Export{}, ErrEmptySelection
	}
	name := "export_selection"
	if len(nodes) == 1 {
		name = nodes[0].Name
		if name == "" {
			name = "export"
		}
	}

	var buf bytes.Buffer
	e.highlight.Suspend(func() {
		err = render.Encode(&buf, nodes, render.Options{
			Format:  format,
			Scale:   opts.Scale,
			Quality: opts.Quality,
		})
	})
	if err != nil {
		err = fmt.Errorf("export %s: %w", name, err)
		e.emitError(err)
		return Export{}, err
	}
	return Export{Filename: name + "." + ext, Format: string(format), Data: buf.Bytes()}, nil
}
