package app

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"vectorboard/internal/config"
	"vectorboard/internal/editor"
	"vectorboard/internal/service"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx     context.Context
	cfgPath string
	cfg     config.Config

	*backend
	watcher *documentWatcher
}

// New creates a new App reading its configuration from cfgPath.
func New(cfgPath string) *App {
	return &App{cfgPath: cfgPath}
}

// wailsEmitter forwards editor and service events to the frontend.
type wailsEmitter struct{}

func (wailsEmitter) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(ctx, event, data)
}

// wailsLogger routes editor and import logs to the Wails log.
type wailsLogger struct{ ctx context.Context }

func (l wailsLogger) Infof(format string, args ...any) {
	wailsRuntime.LogInfof(l.ctx, format, args...)
}

func (l wailsLogger) Warnf(format string, args ...any) {
	wailsRuntime.LogWarningf(l.ctx, format, args...)
}

func (l wailsLogger) Errorf(format string, args ...any) {
	wailsRuntime.LogErrorf(l.ctx, format, args...)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	if runtime.GOOS == "darwin" {
		// Key repeat instead of the accent popup while holding keys on the canvas.
		exec.Command("defaults", "write", "com.wails.vectorboard", "ApplePressAndHoldEnabled", "-bool", "false").Run()
	}

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Config %s: %v (using defaults)", a.cfgPath, err)
		cfg = config.Default()
	}
	a.cfg = cfg

	b, err := openBackend(cfg, wailsEmitter{}, wailsLogger{ctx})
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}
	a.backend = b

	if cfg.Autosave.Enabled {
		if err := a.docs.StartAutosave(ctx, cfg.Autosave.Schedule); err != nil {
			wailsRuntime.LogErrorf(ctx, "Autosave: %v", err)
		}
	}
	if dir := cfg.WatchPath(); dir != "" {
		if err := a.imports.Watch(ctx, dir, cfg.Figma.WatchPattern); err != nil {
			wailsRuntime.LogErrorf(ctx, "Figma watch folder: %v", err)
		}
	}

	a.watcher = newDocumentWatcher(ctx, a.backend, wailsEmitter{})
	a.watcher.Start()

	if id := a.window.LastDocument(); id != "" {
		if _, err := a.docs.Open(ctx, id); err != nil {
			wailsRuntime.LogWarningf(ctx, "Reopen last document %s: %v", id, err)
		}
	}
}

// BeforeClose remembers the window size and the open document.
func (a *App) BeforeClose(ctx context.Context) bool {
	if a.backend == nil {
		return false
	}
	w, h := wailsRuntime.WindowGetSize(ctx)
	if err := a.window.SaveWindowSize(w, h); err != nil {
		wailsRuntime.LogWarningf(ctx, "Save window size: %v", err)
	}
	if err := a.window.SetLastDocument(a.docs.Active()); err != nil {
		wailsRuntime.LogWarningf(ctx, "Save last document: %v", err)
	}
	return false
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.backend != nil {
		a.close(ctx)
	}
}

// WindowSize returns the size to open the main window with. It is read
// before Wails starts, so it opens its own connection.
func WindowSize(cfgPath string) service.WindowSize {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Default()
	}
	b, err := openBackend(cfg, service.NopEmitter{}, nil)
	if err != nil {
		return service.NewWindowSettingsService(nil).LoadWindowSize()
	}
	defer b.db.Close()
	return b.window.LoadWindowSize()
}

// active returns the editor of the open document.
func (a *App) active() (*editor.Editor, error) {
	if a.backend == nil {
		return nil, fmt.Errorf("app is not started")
	}
	ed, _, err := a.docs.ActiveEditor()
	return ed, err
}
