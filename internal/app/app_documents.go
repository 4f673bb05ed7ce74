package app

import (
	"vectorboard/internal/domain"
)

// ============================================================
// Documents
// ============================================================

func (a *App) ListDocuments() ([]domain.DocumentSummary, error) {
	return a.docs.List()
}

func (a *App) CreateDocument(name string) (*DocumentState, error) {
	d, err := a.docs.Create(name)
	if err != nil {
		return nil, err
	}
	return a.OpenDocument(d.ID)
}

// OpenDocument makes a board the active one and returns its state.
func (a *App) OpenDocument(id string) (*DocumentState, error) {
	ed, err := a.docs.Open(a.ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := a.docs.Get(id)
	if err != nil {
		return nil, err
	}
	content, err := ed.ExportJSON()
	if err != nil {
		return nil, err
	}
	if err := a.window.SetLastDocument(id); err != nil {
		return nil, err
	}
	a.watcher.SetDocument(id)
	return &DocumentState{
		Document:  domain.DocumentSummary{ID: d.ID, Name: d.Name, UpdatedAt: d.UpdatedAt},
		Content:   string(content),
		Viewport:  ed.Viewport(),
		Mode:      ed.Mode(),
		Layers:    ed.Layers(),
		Selection: ed.Selection(),
		History:   ed.HistoryState(),
	}, nil
}

func (a *App) RenameDocument(id, name string) error {
	return a.docs.Rename(id, name)
}

func (a *App) DeleteDocument(id string) error {
	if a.docs.Active() == id {
		a.watcher.SetDocument("")
	}
	return a.docs.Delete(id)
}

// SaveDocument saves the active board. It reports whether anything changed.
func (a *App) SaveDocument() (bool, error) {
	id := a.docs.Active()
	if id == "" {
		return false, nil
	}
	return a.docs.Save(a.ctx, id)
}

// CloseDocument saves and closes the active board.
func (a *App) CloseDocument() error {
	id := a.docs.Active()
	if id == "" {
		return nil
	}
	a.watcher.SetDocument("")
	return a.docs.CloseDocument(a.ctx, id)
}
