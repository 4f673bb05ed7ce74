package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"vectorboard/internal/domain"
	"vectorboard/internal/editor"
	"vectorboard/internal/history"
	"vectorboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Document Service: stored boards and their open editors
// ─────────────────────────────────────────────────────────────

const defaultDocumentName = "Untitled"

var ErrDocumentNotOpen = errors.New("document is not open")

// DocumentService owns the persisted documents and one editor per open
// document. Every editor journals its history into SQLite so undo survives
// a restart.
type DocumentService struct {
	docs    *storage.DocumentStore
	history *storage.HistoryStore
	emitter EventEmitter
	base    editor.Options

	mu     sync.Mutex
	open   map[string]*openDocument
	active string

	cronSched *cron.Cron
}

type openDocument struct {
	editor  *editor.Editor
	journal *gatedJournal
	// saved is the content last written to the store.
	saved string
}

// NewDocumentService creates a DocumentService. base is the template for
// every editor it opens; Journal and Emitter are filled in per document.
func NewDocumentService(
	docs *storage.DocumentStore,
	hist *storage.HistoryStore,
	emitter EventEmitter,
	base editor.Options,
) *DocumentService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &DocumentService{
		docs:    docs,
		history: hist,
		emitter: emitter,
		base:    base,
		open:    make(map[string]*openDocument),
	}
}

// ── Document CRUD ──────────────────────────────────────────

func (s *DocumentService) Create(name string) (*domain.Document, error) {
	if name == "" {
		name = defaultDocumentName
	}
	d := &domain.Document{
		ID:           uuid.New().String(),
		Name:         name,
		ViewportZoom: 1,
	}
	if err := s.docs.CreateDocument(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DocumentService) Get(id string) (*domain.Document, error) {
	return s.docs.GetDocument(id)
}

func (s *DocumentService) List() ([]domain.DocumentSummary, error) {
	docs, err := s.docs.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []domain.DocumentSummary{}
	}
	return docs, nil
}

func (s *DocumentService) Rename(id, name string) error {
	d, err := s.docs.GetDocument(id)
	if err != nil {
		return err
	}
	d.Name = name
	return s.docs.UpdateDocument(d)
}

// Delete closes the document if it is open, then removes it with its history.
func (s *DocumentService) Delete(id string) error {
	s.mu.Lock()
	if od, ok := s.open[id]; ok {
		od.editor.Close()
		delete(s.open, id)
	}
	if s.active == id {
		s.active = ""
	}
	s.mu.Unlock()
	return s.docs.DeleteDocument(id)
}

// ── Editors ────────────────────────────────────────────────

// Open returns the editor of a document, loading it on first use, and
// makes it the active document.
func (s *DocumentService) Open(ctx context.Context, id string) (*editor.Editor, error) {
	ed, err := s.Editor(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.active = id
	s.mu.Unlock()
	return ed, nil
}

// Editor returns the editor of a document, loading it on first use,
// without changing the active document.
func (s *DocumentService) Editor(ctx context.Context, id string) (*editor.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if od, ok := s.open[id]; ok {
		return od.editor, nil
	}

	d, err := s.docs.GetDocument(id)
	if err != nil {
		return nil, err
	}

	opts := s.base
	journal := &gatedJournal{inner: s.history.Journal(id)}
	opts.Journal = journal
	opts.Emitter = s.emitter
	od := &openDocument{editor: editor.New(ctx, opts), journal: journal}
	if err := s.restore(od, d); err != nil {
		od.editor.Close()
		return nil, fmt.Errorf("open document %s: %w", id, err)
	}
	s.open[id] = od
	log.Printf("documents: opened %s (%s)", d.Name, id)
	return od.editor, nil
}

// restore loads d into the editor. A journaled history wins over the stored
// content since it also carries the undo stack.
func (s *DocumentService) restore(od *openDocument, d *domain.Document) error {
	od.journal.on.Store(false)
	defer od.journal.on.Store(true)

	entries, current, err := s.history.Load(d.ID)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		if err := od.editor.ResumeHistory(entries, current); err != nil {
			return err
		}
		v := od.editor.Viewport()
		if d.ViewportZoom > 0 {
			v.PanX, v.PanY, v.Zoom = d.ViewportX, d.ViewportY, d.ViewportZoom
		}
		od.editor.SetViewport(v)
	} else {
		// The fresh "init" entry becomes the root of the journal.
		od.journal.on.Store(true)
		if err := od.editor.Load([]byte(d.Content)); err != nil {
			return err
		}
	}
	od.saved = d.Content
	return nil
}

// Active returns the active document id, or "" when none is open.
func (s *DocumentService) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveEditor returns the editor of the active document.
func (s *DocumentService) ActiveEditor() (*editor.Editor, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	od, ok := s.open[s.active]
	if !ok {
		return nil, "", ErrDocumentNotOpen
	}
	return od.editor, s.active, nil
}

// OpenIDs lists the documents with a live editor.
func (s *DocumentService) OpenIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	return ids
}

// ── Saving ─────────────────────────────────────────────────

// Save writes the board and viewport of an open document. It returns
// false when nothing changed since the last save.
func (s *DocumentService) Save(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	od, ok := s.open[id]
	var prev string
	if ok {
		prev = od.saved
	}
	s.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("save %s: %w", id, ErrDocumentNotOpen)
	}

	data, err := od.editor.ExportJSON()
	if err != nil {
		return false, fmt.Errorf("save %s: %w", id, err)
	}
	content := string(data)
	if content == prev {
		return false, nil
	}

	d, err := s.docs.GetDocument(id)
	if err != nil {
		return false, err
	}
	v := od.editor.Viewport()
	d.Content = content
	d.ViewportX, d.ViewportY, d.ViewportZoom = v.PanX, v.PanY, v.Zoom
	if err := s.docs.UpdateDocument(d); err != nil {
		return false, err
	}

	s.mu.Lock()
	od.saved = content
	s.mu.Unlock()

	s.emitter.Emit(ctx, domain.EventDocumentSaved, map[string]any{
		"id":        id,
		"updatedAt": d.UpdatedAt,
	})
	return true, nil
}

// SaveAll saves every open document that changed. Failures are logged.
func (s *DocumentService) SaveAll(ctx context.Context) int {
	saved := 0
	for _, id := range s.OpenIDs() {
		ok, err := s.Save(ctx, id)
		if err != nil {
			log.Printf("documents: save %s failed: %v", id, err)
			continue
		}
		if ok {
			saved++
		}
	}
	return saved
}

// Reload discards the editor state of an open document and loads it again
// from the store, e.g. after another process changed it.
func (s *DocumentService) Reload(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	od, ok := s.open[id]
	if !ok {
		return fmt.Errorf("reload %s: %w", id, ErrDocumentNotOpen)
	}
	d, err := s.docs.GetDocument(id)
	if err != nil {
		return err
	}
	return s.restore(od, d)
}

// Stale reports whether the stored content of an open document differs
// from what this service last loaded or saved, i.e. another process wrote it.
func (s *DocumentService) Stale(id string) (bool, error) {
	s.mu.Lock()
	od, ok := s.open[id]
	var saved string
	if ok {
		saved = od.saved
	}
	s.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("stale %s: %w", id, ErrDocumentNotOpen)
	}
	d, err := s.docs.GetDocument(id)
	if err != nil {
		return false, err
	}
	return d.Content != saved, nil
}

// CloseDocument saves and closes one document.
func (s *DocumentService) CloseDocument(ctx context.Context, id string) error {
	_, err := s.Save(ctx, id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if od, ok := s.open[id]; ok {
		od.editor.Close()
		delete(s.open, id)
	}
	if s.active == id {
		s.active = ""
	}
	return err
}

// ── Autosave ───────────────────────────────────────────────

// StartAutosave saves changed documents on a cron schedule such as
// "@every 30s". A running schedule is replaced.
func (s *DocumentService) StartAutosave(ctx context.Context, schedule string) error {
	s.StopAutosave()

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := s.SaveAll(ctx); n > 0 {
			log.Printf("documents: autosaved %d document(s)", n)
		}
	})
	if err != nil {
		return fmt.Errorf("autosave schedule %q: %w", schedule, err)
	}
	c.Start()

	s.mu.Lock()
	s.cronSched = c
	s.mu.Unlock()
	log.Printf("documents: autosave scheduled %q", schedule)
	return nil
}

// StopAutosave stops the schedule and waits for a save in progress.
func (s *DocumentService) StopAutosave() {
	s.mu.Lock()
	c := s.cronSched
	s.cronSched = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// Shutdown stops autosave, saves everything and closes all editors.
func (s *DocumentService) Shutdown(ctx context.Context) {
	s.StopAutosave()
	s.SaveAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, od := range s.open {
		od.editor.Close()
		delete(s.open, id)
	}
	s.active = ""
}

// gatedJournal forwards to the store only while on, so entries created
// while a document is being loaded never reach SQLite.
type gatedJournal struct {
	inner history.Journal
	on    atomic.Bool
}

func (j *gatedJournal) Append(e history.Entry, parentID string) error {
	if !j.on.Load() {
		return nil
	}
	return j.inner.Append(e, parentID)
}

func (j *gatedJournal) MoveTo(entryID string) error {
	if !j.on.Load() {
		return nil
	}
	return j.inner.MoveTo(entryID)
}
