package storage_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"vectorboard/internal/domain"
	"vectorboard/internal/history"
	"vectorboard/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "db", "board.db"), filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createDoc(t *testing.T, s *storage.DocumentStore, id string) *domain.Document {
	t.Helper()
	d := &domain.Document{ID: id, Name: "Board " + id, Content: `{"version":"1.0","children":[]}`}
	if err := s.CreateDocument(d); err != nil {
		t.Fatalf("create document: %v", err)
	}
	return d
}

// ─────────────────────────────────────────────────────────────
// DocumentStore
// ─────────────────────────────────────────────────────────────

func TestDocumentStore_CRUD(t *testing.T) {
	db := openDB(t)
	s := storage.NewDocumentStore(db)

	d := createDoc(t, s, "doc-1")
	if d.ViewportZoom != 1 {
		t.Errorf("expected default zoom 1, got %v", d.ViewportZoom)
	}

	got, err := s.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Board doc-1" || got.Content != d.Content {
		t.Errorf("unexpected document: %+v", got)
	}

	got.Name = "Renamed"
	got.ViewportX, got.ViewportZoom = 40, 2
	got.Content = `{"version":"1.0","children":[{"tag":"Rect"}]}`
	if err := s.UpdateDocument(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, err := s.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if again.Name != "Renamed" || again.ViewportX != 40 || again.ViewportZoom != 2 || again.Content != got.Content {
		t.Errorf("update not persisted: %+v", again)
	}

	if err := s.DeleteDocument("doc-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetDocument("doc-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDocumentStore_UpdateMissing(t *testing.T) {
	s := storage.NewDocumentStore(openDB(t))
	err := s.UpdateDocument(&domain.Document{ID: "nope"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDocumentStore_ListNewestFirst(t *testing.T) {
	s := storage.NewDocumentStore(openDB(t))
	createDoc(t, s, "a")
	time.Sleep(10 * time.Millisecond)
	createDoc(t, s, "b")

	docs, err := s.ListDocuments()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "b" {
		t.Errorf("expected newest first, got %q", docs[0].ID)
	}
}

// ─────────────────────────────────────────────────────────────
// HistoryStore
// ─────────────────────────────────────────────────────────────

func entry(id, label string) history.Entry {
	return history.Entry{ID: id, Label: label, Snapshot: []byte(`[{"tag":"Rect","id":"` + id + `"}]`), CreatedAt: time.Now()}
}

func TestHistoryStore_AppendAndLoad(t *testing.T) {
	db := openDB(t)
	createDoc(t, storage.NewDocumentStore(db), "doc")
	s := storage.NewHistoryStore(db, 0)
	j := s.Journal("doc")

	if err := j.Append(entry("e1", "init"), ""); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Append(entry("e2", "draw-rect"), "e1"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.MoveTo("e1"); err != nil {
		t.Fatalf("move: %v", err)
	}

	entries, current, err := s.Load("doc")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Label != "draw-rect" || string(entries[1].Snapshot) != string(entry("e2", "").Snapshot) {
		t.Errorf("unexpected entry: %+v", entries[1])
	}
	if current != "e1" {
		t.Errorf("expected current e1, got %q", current)
	}
}

func TestHistoryStore_AppendAfterUndoDropsRedo(t *testing.T) {
	db := openDB(t)
	createDoc(t, storage.NewDocumentStore(db), "doc")
	s := storage.NewHistoryStore(db, 0)

	for i, id := range []string{"e1", "e2", "e3"} {
		parent := ""
		if i > 0 {
			parent = fmt.Sprintf("e%d", i)
		}
		if err := s.Append("doc", entry(id, id), parent); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}
	// undo twice, then record
	if err := s.Append("doc", entry("e4", "e4"), "e1"); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, current, err := s.Load("doc")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if fmt.Sprint(ids) != "[e1 e4]" {
		t.Errorf("expected [e1 e4], got %v", ids)
	}
	if current != "e4" {
		t.Errorf("expected current e4, got %q", current)
	}
}

func TestHistoryStore_Prune(t *testing.T) {
	db := openDB(t)
	createDoc(t, storage.NewDocumentStore(db), "doc")
	s := storage.NewHistoryStore(db, 3)

	parent := ""
	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("e%d", i)
		if err := s.Append("doc", entry(id, id), parent); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
		parent = id
	}

	entries, current, err := s.Load("doc")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries after prune, got %d", len(entries))
	}
	if entries[0].ID != "e3" || current != "e5" {
		t.Errorf("unexpected state: first=%s current=%s", entries[0].ID, current)
	}
}

func TestHistoryStore_EmptyAndClear(t *testing.T) {
	db := openDB(t)
	createDoc(t, storage.NewDocumentStore(db), "doc")
	s := storage.NewHistoryStore(db, 0)

	entries, current, err := s.Load("doc")
	if err != nil || entries != nil || current != "" {
		t.Fatalf("expected empty history, got %v %q %v", entries, current, err)
	}

	if err := s.Append("doc", entry("e1", "init"), ""); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Clear("doc"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, _, _ = s.Load("doc")
	if len(entries) != 0 {
		t.Errorf("expected no entries after clear, got %d", len(entries))
	}
}

// ─────────────────────────────────────────────────────────────
// SettingsStore
// ─────────────────────────────────────────────────────────────

func TestSettingsStore(t *testing.T) {
	s := storage.NewSettingsStore(openDB(t))

	if _, ok, err := s.Get("missing"); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := s.Set("window_width", "1440"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("window_width", "1600"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := s.Int("window_width", 0); got != 1600 {
		t.Errorf("expected 1600, got %d", got)
	}
	if err := s.Set("bad", "x"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := s.Int("bad", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
}

// ─────────────────────────────────────────────────────────────
// ApprovalStore
// ─────────────────────────────────────────────────────────────

func TestApprovalStore_Lifecycle(t *testing.T) {
	s := storage.NewApprovalStore(openDB(t))

	for i, id := range []string{"a-1", "a-2"} {
		a := &domain.PendingAction{
			ID:          id,
			Tool:        "remove_nodes",
			Description: "Remove 1 node",
			CreatedAt:   time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := s.Create(a); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	pending, err := s.Pending()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != "a-1" || pending[0].Metadata != "{}" {
		t.Fatalf("unexpected pending actions: %+v", pending)
	}

	if err := s.Resolve("a-1", true); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if st, _ := s.Status("a-1"); st != domain.ApprovalApproved {
		t.Errorf("expected approved, got %q", st)
	}
	if err := s.Resolve("a-1", false); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound resolving twice, got %v", err)
	}
	if err := s.Resolve("a-2", false); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if st, _ := s.Status("a-2"); st != domain.ApprovalRejected {
		t.Errorf("expected rejected, got %q", st)
	}

	if err := s.Delete("a-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Status("a-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if pending, _ := s.Pending(); len(pending) != 0 {
		t.Errorf("expected nothing pending, got %d", len(pending))
	}
}
