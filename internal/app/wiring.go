package app

import (
	"context"
	"fmt"
	"net/http"

	"vectorboard/internal/config"
	"vectorboard/internal/editor"
	"vectorboard/internal/figma"
	"vectorboard/internal/secret"
	"vectorboard/internal/service"
	"vectorboard/internal/storage"
)

// backend is the storage and service graph shared by the desktop app and
// the standalone MCP server.
type backend struct {
	db        *storage.DB
	settings  *storage.SettingsStore
	approvals *storage.ApprovalStore
	docs      *service.DocumentService
	imports   *service.ImportService
	window    *service.WindowSettingsService
}

func openBackend(cfg config.Config, emitter service.EventEmitter, logger figma.Logger) (*backend, error) {
	db, err := storage.New(cfg.DBPath(), cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	settings := storage.NewSettingsStore(db)
	docs := service.NewDocumentService(
		storage.NewDocumentStore(db),
		storage.NewHistoryStore(db, cfg.History.Limit),
		emitter,
		editorOptions(cfg, logger),
	)
	// FIGMA_TOKEN wins over the keychain so CI and headless runs work.
	secrets := secret.EnvStore{Fallback: secret.NewKeychainStore()}

	return &backend{
		db:        db,
		settings:  settings,
		approvals: storage.NewApprovalStore(db),
		docs:      docs,
		imports:   service.NewImportService(docs, secrets, emitter),
		window:    service.NewWindowSettingsService(settings),
	}, nil
}

func editorOptions(cfg config.Config, logger figma.Logger) editor.Options {
	httpClient := &http.Client{Timeout: cfg.Figma.Timeout}
	return editor.Options{
		Thresholds: editor.Thresholds{
			MinSize:       cfg.Tools.MinSize,
			CloseDistance: cfg.Tools.CloseDistance,
			PenStep:       cfg.Tools.PenStep,
		},
		PasteStep:       cfg.Tools.PasteStep,
		HistoryLimit:    cfg.History.Limit,
		HistoryDebounce: cfg.History.Debounce,
		Logger:          logger,
		NewFetcher: func(token string) editor.Fetcher {
			return figma.NewClient(token,
				figma.WithBaseURL(cfg.Figma.APIBaseURL),
				figma.WithHTTPClient(httpClient),
			)
		},
	}
}

// close saves open documents and releases the database.
func (b *backend) close(ctx context.Context) {
	b.imports.StopWatching()
	b.imports.WaitRunning(ctx)
	b.docs.Shutdown(ctx)
	b.db.Close()
}
