package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vectorboard/internal/editor"
	"vectorboard/internal/secret"
	"vectorboard/internal/service"
	"vectorboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────

type quietLogger struct{}

func (quietLogger) Infof(string, ...any)  {}
func (quietLogger) Warnf(string, ...any)  {}
func (quietLogger) Errorf(string, ...any) {}

type fixture struct {
	db       *storage.DB
	emitter  *service.MockEmitter
	docs     *service.DocumentService
	imports  *service.ImportService
	secrets  *secret.MemoryStore
	settings *storage.SettingsStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, editor.Options{})
}

func newFixtureWith(t *testing.T, opts editor.Options) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	emitter := &service.MockEmitter{}
	docs := service.NewDocumentService(
		storage.NewDocumentStore(db),
		storage.NewHistoryStore(db, 0),
		emitter,
		withDefaults(opts),
	)
	t.Cleanup(func() { docs.Shutdown(context.Background()) })

	secrets := secret.NewMemoryStore()
	return &fixture{
		db:       db,
		emitter:  emitter,
		docs:     docs,
		imports:  service.NewImportService(docs, secrets, emitter),
		secrets:  secrets,
		settings: storage.NewSettingsStore(db),
	}
}

func withDefaults(opts editor.Options) editor.Options {
	opts.Logger = quietLogger{}
	opts.HistoryDebounce = 10 * time.Millisecond
	return opts
}

// ─────────────────────────────────────────────────────────────
// RunningGuard tests
// ─────────────────────────────────────────────────────────────

func TestRunningGuard_TryLock(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("doc-1") {
		t.Fatal("expected first TryLock to succeed")
	}
	if g.TryLock("doc-1") {
		t.Fatal("expected second TryLock for same key to fail")
	}
	if !g.Running("doc-1") {
		t.Fatal("expected doc-1 to be running")
	}
	if !g.TryLock("doc-2") {
		t.Fatal("expected TryLock for different key to succeed")
	}
	g.Unlock("doc-1")
	g.Unlock("doc-2")

	if g.Running("doc-1") {
		t.Fatal("expected doc-1 to be released")
	}
	if !g.TryLock("doc-1") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("doc-1")
}

func TestRunningGuard_WaitAll(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("doc-a") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("doc-a")
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "test:event", map[string]string{"foo": "bar"})
	m.Emit(ctx, "test:event2", nil)
	m.Emit(ctx, "test:event", "again")

	if len(m.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(m.Events))
	}
	if got := m.Named("test:event"); len(got) != 2 || got[1].Data != "again" {
		t.Errorf("unexpected filtered events: %+v", got)
	}
}

// ─────────────────────────────────────────────────────────────
// WindowSettingsService tests
// ─────────────────────────────────────────────────────────────

func TestWindowSettings_DefaultsAndRoundTrip(t *testing.T) {
	f := newFixture(t)
	svc := service.NewWindowSettingsService(f.settings)

	if got := svc.LoadWindowSize(); got.Width != 1440 || got.Height != 900 {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if err := svc.SaveWindowSize(1024, 700); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := svc.LoadWindowSize(); got.Width != 1024 || got.Height != 700 {
		t.Fatalf("expected saved size, got %+v", got)
	}

	// Sizes below the minimum fall back to defaults.
	if err := svc.SaveWindowSize(300, 200); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := svc.LoadWindowSize(); got.Width != 1440 || got.Height != 900 {
		t.Fatalf("expected defaults for tiny window, got %+v", got)
	}

	if err := svc.SetLastDocument("doc-9"); err != nil {
		t.Fatalf("set last document: %v", err)
	}
	if got := svc.LastDocument(); got != "doc-9" {
		t.Fatalf("expected doc-9, got %q", got)
	}
}

func TestWindowSettings_NilStore(t *testing.T) {
	svc := service.NewWindowSettingsService(nil)
	if got := svc.LoadWindowSize(); got.Width != 1440 {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if err := svc.SaveWindowSize(1, 1); err == nil {
		t.Fatal("expected error without a store")
	}
}
