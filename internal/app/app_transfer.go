package app

import (
	"fmt"
	"os"
	"path/filepath"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"vectorboard/internal/domain"
	"vectorboard/internal/editor"
)

var jsonFilter = []wailsRuntime.FileFilter{{DisplayName: "JSON", Pattern: "*.json"}}

// ============================================================
// Figma
// ============================================================

func (a *App) SetFigmaToken(token string) error {
	return a.imports.SetToken(token)
}

func (a *App) HasFigmaToken() bool {
	return a.imports.HasToken()
}

// ImportFigmaURL downloads a Figma file or node into the active board.
// An empty token uses the stored one.
func (a *App) ImportFigmaURL(urlOrKey, token string) (*ImportResult, error) {
	id := a.docs.Active()
	if id == "" {
		return nil, fmt.Errorf("import figma: no open document")
	}
	n, err := a.imports.ImportFromAPI(a.ctx, id, urlOrKey, token)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Count: n}, nil
}

// ImportFigmaFile asks for a Figma JSON export and imports it into the
// active board. A cancelled dialog returns nil.
func (a *App) ImportFigmaFile() (*ImportResult, error) {
	id := a.docs.Active()
	if id == "" {
		return nil, fmt.Errorf("import figma: no open document")
	}
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title:   "Import Figma JSON",
		Filters: jsonFilter,
	})
	if err != nil || path == "" {
		return nil, err
	}
	n, err := a.imports.ImportFile(a.ctx, id, path)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Count: n, File: path}, nil
}

// ImportFigmaJSON imports pasted Figma JSON into the active board.
func (a *App) ImportFigmaJSON(data string) (*ImportResult, error) {
	id := a.docs.Active()
	if id == "" {
		return nil, fmt.Errorf("import figma: no open document")
	}
	n, err := a.imports.ImportFromJSON(a.ctx, id, []byte(data))
	if err != nil {
		return nil, err
	}
	return &ImportResult{Count: n}, nil
}

// ============================================================
// Document files
// ============================================================

// ExportDocumentFile writes the active board as JSON to a chosen file.
func (a *App) ExportDocumentFile() (string, error) {
	ed, err := a.active()
	if err != nil {
		return "", err
	}
	data, err := ed.ExportJSON()
	if err != nil {
		return "", err
	}
	d, err := a.docs.Get(a.docs.Active())
	if err != nil {
		return "", err
	}
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export Board",
		DefaultFilename: d.Name + ".json",
		Filters:         jsonFilter,
	})
	if err != nil || path == "" {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write board: %w", err)
	}
	return path, nil
}

// ImportDocumentFile replaces the active board with a chosen JSON file.
// The replacement is undoable.
func (a *App) ImportDocumentFile() (*ImportResult, error) {
	ed, err := a.active()
	if err != nil {
		return nil, err
	}
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title:   "Open Board JSON",
		Filters: jsonFilter,
	})
	if err != nil || path == "" {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	n, err := ed.ImportJSON(data)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Count: n, File: path}, nil
}

// ExportSelection renders the selection and saves it where the user picks.
func (a *App) ExportSelection(opts editor.ExportOptions) (string, error) {
	ed, err := a.active()
	if err != nil {
		return "", err
	}
	out, err := ed.ExportSelection(opts)
	if err != nil {
		return "", err
	}
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export Image",
		DefaultFilename: out.Filename,
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Image", Pattern: "*" + filepath.Ext(out.Filename)},
		},
	})
	if err != nil || path == "" {
		return "", err
	}
	if err := os.WriteFile(path, out.Data, 0644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}

// ============================================================
// Agent approvals
// ============================================================

// ListPendingActions returns destructive agent actions awaiting a decision.
func (a *App) ListPendingActions() ([]domain.PendingAction, error) {
	actions, err := a.approvals.Pending()
	if actions == nil {
		actions = []domain.PendingAction{}
	}
	return actions, err
}

func (a *App) ApproveAction(id string) error {
	return a.approvals.Resolve(id, true)
}

func (a *App) RejectAction(id string) error {
	return a.approvals.Resolve(id, false)
}
