package app

import (
	"context"
	"log"
	"sync"
	"time"

	"vectorboard/internal/domain"
	"vectorboard/internal/service"
)

const watchInterval = 2 * time.Second

// documentWatcher polls the database for writes to the open document made
// by another process (the standalone MCP server), reloads the editor and
// tells the frontend. It also surfaces approval requests queued by that
// process.
type documentWatcher struct {
	ctx      context.Context
	b        *backend
	emitter  service.EventEmitter
	interval time.Duration

	mu          sync.Mutex
	documentID  string
	lastUpdated time.Time
	stopCh      chan struct{}
	// approvals already announced, so each is emitted once
	emitted map[string]bool
}

func newDocumentWatcher(ctx context.Context, b *backend, emitter service.EventEmitter) *documentWatcher {
	return &documentWatcher{
		ctx:      ctx,
		b:        b,
		emitter:  emitter,
		interval: watchInterval,
		emitted:  map[string]bool{},
	}
}

// SetDocument switches the watched document.
func (w *documentWatcher) SetDocument(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.documentID = id
	w.lastUpdated = time.Time{}
}

func (w *documentWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		return
	}
	w.stopCh = make(chan struct{})
	go w.pollLoop(w.stopCh)
}

func (w *documentWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *documentWatcher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.check()
		case <-stop:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *documentWatcher) check() {
	w.checkDocument()
	w.checkApprovals()
}

func (w *documentWatcher) checkDocument() {
	w.mu.Lock()
	id := w.documentID
	last := w.lastUpdated
	w.mu.Unlock()
	if id == "" {
		return
	}

	d, err := w.b.docs.Get(id)
	if err != nil {
		return
	}
	w.mu.Lock()
	if w.documentID == id {
		w.lastUpdated = d.UpdatedAt
	}
	w.mu.Unlock()
	if last.IsZero() || d.UpdatedAt.Equal(last) {
		return
	}

	stale, err := w.b.docs.Stale(id)
	if err != nil || !stale {
		return
	}
	if err := w.b.docs.Reload(id); err != nil {
		log.Printf("document watcher: reload %s: %v", id, err)
		return
	}
	w.emitter.Emit(w.ctx, domain.EventDocumentChanged, map[string]string{"documentId": id})
}

func (w *documentWatcher) checkApprovals() {
	pending, err := w.b.approvals.Pending()
	if err != nil {
		return
	}
	live := make(map[string]bool, len(pending))
	for _, a := range pending {
		live[a.ID] = true
		w.mu.Lock()
		sent := w.emitted[a.ID]
		w.emitted[a.ID] = true
		w.mu.Unlock()
		if !sent {
			w.emitter.Emit(w.ctx, domain.EventApprovalRequired, a)
		}
	}

	// Forget approvals that were resolved or dropped by the requester.
	w.mu.Lock()
	for id := range w.emitted {
		if !live[id] {
			delete(w.emitted, id)
			w.emitter.Emit(w.ctx, domain.EventApprovalDismissed, map[string]string{"id": id})
		}
	}
	w.mu.Unlock()
}
