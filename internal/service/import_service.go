package service

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"vectorboard/internal/domain"
	"vectorboard/internal/editor"
	"vectorboard/internal/figma"
	"vectorboard/internal/secret"
)

// ─────────────────────────────────────────────────────────────
// Import Service: Figma imports into stored documents
// ─────────────────────────────────────────────────────────────

// ErrImportInProgress is returned when a document already has an import
// running.
var ErrImportInProgress = editor.ErrImportInProgress

const defaultWatchDebounce = 500 * time.Millisecond

// ImportService runs Figma imports against documents, reading the access
// token from a SecretStore, and optionally imports JSON files dropped into
// a watch folder into the active document.
type ImportService struct {
	docs    *DocumentService
	secrets secret.SecretStore
	emitter EventEmitter
	running runningGuard

	// WatchDebounce delays a watch-folder import until writes settle.
	// Zero means 500ms.
	WatchDebounce time.Duration

	mu          sync.Mutex
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
}

// NewImportService creates an ImportService.
func NewImportService(docs *DocumentService, secrets secret.SecretStore, emitter EventEmitter) *ImportService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &ImportService{docs: docs, secrets: secrets, emitter: emitter}
}

// ── Token ──────────────────────────────────────────────────

// SetToken stores the Figma personal access token. An empty token removes it.
func (s *ImportService) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.secrets.Delete(secret.FigmaTokenKey)
	}
	if err := s.secrets.Set(secret.FigmaTokenKey, []byte(token)); err != nil {
		return fmt.Errorf("store figma token: %w", err)
	}
	return nil
}

// HasToken reports whether a token is stored.
func (s *ImportService) HasToken() bool {
	t, err := s.token()
	return err == nil && t != ""
}

func (s *ImportService) token() (string, error) {
	b, err := s.secrets.Get(secret.FigmaTokenKey)
	if err != nil {
		return "", fmt.Errorf("read figma token: %w", err)
	}
	if len(b) == 0 {
		return "", figma.ErrMissingToken
	}
	return string(b), nil
}

// ── Imports ────────────────────────────────────────────────

// ImportFromAPI downloads a Figma file (or one node of it) into a document.
// token overrides the stored token when not empty.
func (s *ImportService) ImportFromAPI(ctx context.Context, docID, urlOrKey, token string) (int, error) {
	if !s.running.TryLock(docID) {
		return 0, fmt.Errorf("import into %s: %w", docID, ErrImportInProgress)
	}
	defer s.running.Unlock(docID)

	if token == "" {
		var err error
		if token, err = s.token(); err != nil {
			return 0, err
		}
	}
	ed, err := s.docs.Editor(ctx, docID)
	if err != nil {
		return 0, err
	}
	return ed.ImportFigmaAPI(ctx, urlOrKey, token)
}

// ImportFromJSON imports a pasted or uploaded Figma payload into a document.
func (s *ImportService) ImportFromJSON(ctx context.Context, docID string, data []byte) (int, error) {
	if !s.running.TryLock(docID) {
		return 0, fmt.Errorf("import into %s: %w", docID, ErrImportInProgress)
	}
	defer s.running.Unlock(docID)

	ed, err := s.docs.Editor(ctx, docID)
	if err != nil {
		return 0, err
	}
	return ed.ImportFigmaJSON(data)
}

// ImportFile reads a Figma JSON export from disk into a document and
// reports the outcome to the frontend.
func (s *ImportService) ImportFile(ctx context.Context, docID, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read figma export: %w", err)
	}
	s.emitter.Emit(ctx, domain.EventImportStarted, map[string]string{
		"documentId": docID,
		"file":       path,
	})
	n, err := s.ImportFromJSON(ctx, docID, data)
	if err != nil {
		s.emitter.Emit(ctx, domain.EventImportFailed, map[string]string{
			"documentId": docID,
			"file":       path,
			"message":    err.Error(),
		})
		return 0, err
	}
	s.emitter.Emit(ctx, domain.EventImportCompleted, map[string]any{
		"documentId": docID,
		"file":       path,
		"count":      n,
	})
	return n, nil
}

// WaitRunning blocks until all running imports finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *ImportService) WaitRunning(ctx context.Context) {
	s.running.WaitAll(ctx)
}

// ── Watch folder ───────────────────────────────────────────

// Watch imports files under dir whose slash-separated relative path matches
// pattern (e.g. "**/*.json") into the active document whenever they are
// created or rewritten. A running watch is replaced.
func (s *ImportService) Watch(ctx context.Context, dir, pattern string) error {
	s.StopWatching()

	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("watch pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create watch folder: %w", err)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := addTree(watcher, root); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.watcher = watcher
	s.watchCancel = cancel
	s.mu.Unlock()

	debounce := s.WatchDebounce
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}

	go func() {
		timers := make(map[string]*time.Timer)
		defer func() {
			for _, t := range timers {
				t.Stop()
			}
		}()
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				path := event.Name
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					if err := addTree(watcher, path); err != nil {
						log.Printf("import watcher: %v", err)
					}
					continue
				}
				if !matches(root, pattern, path) {
					continue
				}
				if t, exists := timers[path]; exists {
					t.Stop()
				}
				timers[path] = time.AfterFunc(debounce, func() {
					s.importDropped(ctx, path)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("import watcher: error: %v", err)
			}
		}
	}()

	log.Printf("import watcher: watching %s for %s", root, pattern)
	return nil
}

func (s *ImportService) importDropped(ctx context.Context, path string) {
	docID := s.docs.Active()
	if docID == "" {
		log.Printf("import watcher: no open document, skipping %s", path)
		return
	}
	n, err := s.ImportFile(ctx, docID, path)
	if err != nil {
		log.Printf("import watcher: import %s failed: %v", path, err)
		return
	}
	log.Printf("import watcher: imported %d node(s) from %s", n, path)
}

// StopWatching tears down the watch folder.
func (s *ImportService) StopWatching() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
}

// addTree watches dir and every directory below it.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func matches(root, pattern, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel))
	return ok
}
