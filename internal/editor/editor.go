// Package editor is the editing session over one scene tree: tools,
// selection, dragging, layers, clipboard, history and import/export.
//
// Every exported method takes the editor lock, so an Editor may be driven
// from several goroutines (UI bindings, MCP tools, timers) while keeping a
// single-threaded view of the tree. Notifications are collected while the
// lock is held and delivered after it is released.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"vectorboard/internal/clipboard"
	"vectorboard/internal/domain"
	"vectorboard/internal/figma"
	"vectorboard/internal/frame"
	"vectorboard/internal/history"
	"vectorboard/internal/scene"
)

var ErrClosed = errors.New("editor is closed")

// Emitter delivers notifications to the frontend.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Fetcher downloads a Figma file.
type Fetcher interface {
	GetFile(ctx context.Context, fileKey, nodeID string) (json.RawMessage, error)
}

// Thresholds are screen-pixel distances, divided by the zoom before use.
type Thresholds struct {
	MinSize       float64
	CloseDistance float64
	PenStep       float64
}

var DefaultThresholds = Thresholds{MinSize: 5, CloseDistance: 20, PenStep: 2}

// Options configures an Editor. Zero values select the defaults.
type Options struct {
	Thresholds      Thresholds
	PasteStep       float64
	HistoryLimit    int
	HistoryDebounce time.Duration
	Journal         history.Journal
	Emitter         Emitter
	Logger          figma.Logger
	// NewFetcher builds the Figma client for a token. Defaults to figma.NewClient.
	NewFetcher func(token string) Fetcher
	Viewport   scene.Viewport
}

type event struct {
	name string
	data any
}

// Editor is one editing session.
type Editor struct {
	mu  sync.Mutex
	ctx context.Context

	opts    Options
	emitter Emitter
	log     figma.Logger

	tree      *scene.Tree
	mode      Mode
	selection []string
	session   *drawingSession
	drag      *dragState
	hovered   string
	highlight *frame.Highlighter
	clip      *clipboard.Clipboard
	history   *history.Manager
	importing bool
	closed    bool

	layersDirty bool
	pending     []event
}

// New returns an editor with an empty tree. An "init" history entry is
// recorded so the first change can be undone.
func New(ctx context.Context, opts Options) *Editor {
	if opts.Thresholds.MinSize <= 0 {
		opts.Thresholds.MinSize = DefaultThresholds.MinSize
	}
	if opts.Thresholds.CloseDistance <= 0 {
		opts.Thresholds.CloseDistance = DefaultThresholds.CloseDistance
	}
	if opts.Thresholds.PenStep <= 0 {
		opts.Thresholds.PenStep = DefaultThresholds.PenStep
	}
	if opts.Emitter == nil {
		opts.Emitter = nopEmitter{}
	}
	if opts.Logger == nil {
		opts.Logger = figma.DefaultLogger
	}
	if opts.NewFetcher == nil {
		opts.NewFetcher = func(token string) Fetcher { return figma.NewClient(token) }
	}
	if ctx == nil {
		ctx = context.Background()
	}

	e := &Editor{
		ctx:       ctx,
		opts:      opts,
		emitter:   opts.Emitter,
		log:       opts.Logger,
		tree:      scene.NewTree(),
		mode:      ModeSelect,
		highlight: frame.NewHighlighter(),
	}
	if opts.Viewport.Width > 0 {
		e.tree.SetViewport(opts.Viewport)
	}
	e.clip = clipboard.New(opts.PasteStep, e.log.Warnf)
	e.tree.OnChange(e.onChange)
	e.history = history.New(target{e}, history.Options{
		Limit:    opts.HistoryLimit,
		Debounce: opts.HistoryDebounce,
		Dispatch: e.dispatch,
		Journal:  opts.Journal,
		OnChange: func(s history.State) { e.queue(domain.EventHistoryChanged, s) },
	})

	e.lock()
	defer e.unlock()
	e.record("init")
	return e
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, string, any) {}

// ── Locking and notifications ──────────────────────────────

func (e *Editor) lock() { e.mu.Lock() }

// unlock releases the lock and then delivers queued notifications, so
// listeners may call back into the editor.
func (e *Editor) unlock() {
	if e.layersDirty {
		e.layersDirty = false
		e.pending = append(e.pending, event{domain.EventLayersChanged, e.layers()})
	}
	events := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, ev := range events {
		e.emitter.Emit(e.ctx, ev.name, ev.data)
	}
}

// dispatch runs a history timer callback under the editor lock.
func (e *Editor) dispatch(fn func()) {
	e.lock()
	defer e.unlock()
	if e.closed {
		return
	}
	fn()
}

func (e *Editor) queue(name string, data any) {
	e.pending = append(e.pending, event{name, data})
}

func (e *Editor) emitError(err error) {
	e.log.Errorf("editor: %v", err)
	e.queue(domain.EventError, map[string]string{"message": err.Error()})
}

func (e *Editor) onChange(c scene.Change) {
	switch c.Kind {
	case scene.ChildAdded, scene.ChildRemoved:
		e.layersDirty = true
	case scene.PropertyChanged:
		switch c.Attr {
		case "visible", "locked", "name", "text":
			e.layersDirty = true
		}
	}
}

func (e *Editor) record(label string) {
	if err := e.history.Record(label); err != nil {
		e.emitError(err)
	}
}

// Close stops pending timers. Later calls that need the tree are no-ops.
func (e *Editor) Close() {
	e.lock()
	defer e.unlock()
	e.history.Cancel()
	e.closed = true
}

// ── Viewport ───────────────────────────────────────────────

// Viewport returns the current viewport.
func (e *Editor) Viewport() scene.Viewport {
	e.lock()
	defer e.unlock()
	return e.tree.Viewport()
}

// SetViewport updates the visible window, e.g. after a resize or zoom.
func (e *Editor) SetViewport(v scene.Viewport) {
	e.lock()
	defer e.unlock()
	e.tree.SetViewport(v)
}

// Inspect runs fn with the tree under the editor lock. fn must not retain
// the tree or call back into the editor.
func (e *Editor) Inspect(fn func(t *scene.Tree)) {
	e.lock()
	defer e.unlock()
	fn(e.tree)
}

// ── Selection ──────────────────────────────────────────────

// Selection returns the selected node ids in selection order.
func (e *Editor) Selection() []string {
	e.lock()
	defer e.unlock()
	return append([]string{}, e.selection...)
}

// Select replaces the selection with the node id. Unknown ids clear it.
func (e *Editor) Select(id string) {
	e.lock()
	defer e.unlock()
	if n := e.tree.Find(id); n != nil {
		e.selectNodes(n)
		return
	}
	e.cancelSelection()
}

// SelectMany replaces the selection, ignoring unknown ids.
func (e *Editor) SelectMany(ids []string) {
	e.lock()
	defer e.unlock()
	var nodes []*scene.Node
	for _, id := range ids {
		if n := e.tree.Find(id); n != nil {
			nodes = append(nodes, n)
		}
	}
	e.selectNodes(nodes...)
}

// Cancel clears the selection.
func (e *Editor) Cancel() {
	e.lock()
	defer e.unlock()
	e.cancelSelection()
}

func (e *Editor) selectNodes(nodes ...*scene.Node) {
	ids := make([]string, 0, len(nodes))
	seen := map[string]bool{}
	for _, n := range nodes {
		if n == nil || n.Internal || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		ids = append(ids, n.ID)
	}
	e.setSelection(ids)
}

func (e *Editor) cancelSelection() { e.setSelection(nil) }

func (e *Editor) setSelection(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	if slices.Equal(e.selection, ids) {
		return
	}
	e.selection = ids
	e.queue(domain.EventSelectionChanged, append([]string{}, ids...))
}

// selected resolves the selection to live nodes, dropping stale ids.
func (e *Editor) selected() []*scene.Node {
	out := make([]*scene.Node, 0, len(e.selection))
	for _, id := range e.selection {
		if n := e.tree.Find(id); n != nil {
			out = append(out, n)
		}
	}
	return out
}
