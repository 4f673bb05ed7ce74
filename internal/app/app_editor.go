package app

import (
	"vectorboard/internal/editor"
	"vectorboard/internal/history"
	"vectorboard/internal/scene"
)

// ============================================================
// Tools and pointer
// ============================================================

func (a *App) SetMode(mode string) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	return ed.SetMode(mode)
}

func (a *App) PointerDown(ev editor.PointerEvent) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	ed.PointerDown(ev)
	return nil
}

func (a *App) PointerMove(ev editor.PointerEvent) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	ed.PointerMove(ev)
	return nil
}

func (a *App) PointerUp(ev editor.PointerEvent) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	ed.PointerUp(ev)
	return nil
}

// SetViewport reports a canvas resize, pan or zoom.
func (a *App) SetViewport(v scene.Viewport) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	ed.SetViewport(v)
	return nil
}

// ============================================================
// Selection and layers
// ============================================================

func (a *App) Select(id string) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	ed.Select(id)
	return nil
}

func (a *App) SelectMany(ids []string) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	ed.SelectMany(ids)
	return nil
}

func (a *App) CancelSelection() error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	ed.Cancel()
	return nil
}

func (a *App) Layers() ([]editor.Layer, error) {
	ed, err := a.active()
	if err != nil {
		return nil, err
	}
	return ed.Layers(), nil
}

func (a *App) SelectLayer(id string) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	return ed.SelectLayer(id)
}

func (a *App) ToggleVisible(id string) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	return ed.ToggleVisible(id)
}

func (a *App) ToggleLock(id string) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	return ed.ToggleLock(id)
}

func (a *App) RemoveLayer(id string) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	return ed.RemoveLayer(id)
}

// RemoveSelected deletes the selection and returns how many nodes went.
func (a *App) RemoveSelected() (int, error) {
	ed, err := a.active()
	if err != nil {
		return 0, err
	}
	return ed.RemoveSelected(), nil
}

func (a *App) ReorderLayer(dragID, targetID, position string) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	return ed.ReorderLayer(dragID, targetID, position)
}

// ============================================================
// Editing
// ============================================================

func (a *App) UpdateNode(id string, patch editor.NodePatch) error {
	ed, err := a.active()
	if err != nil {
		return err
	}
	return ed.UpdateNode(id, patch)
}

func (a *App) AddText(x, y float64, text string) (string, error) {
	ed, err := a.active()
	if err != nil {
		return "", err
	}
	return ed.AddText(x, y, text)
}

func (a *App) AddShape(spec editor.ShapeSpec) (string, error) {
	ed, err := a.active()
	if err != nil {
		return "", err
	}
	return ed.AddShape(spec)
}

func (a *App) Connect(fromID, toID string) (string, error) {
	ed, err := a.active()
	if err != nil {
		return "", err
	}
	return ed.Connect(fromID, toID)
}

// AddImage places an image given as a data URL or a local path in opts.Src.
func (a *App) AddImage(opts editor.ImageOptions) (string, error) {
	ed, err := a.active()
	if err != nil {
		return "", err
	}
	return ed.AddImage(nil, opts)
}

// Copy returns the number of nodes copied.
func (a *App) Copy() (int, error) {
	ed, err := a.active()
	if err != nil {
		return 0, err
	}
	return ed.Copy(), nil
}

// Paste returns the ids of the pasted nodes.
func (a *App) Paste() ([]string, error) {
	ed, err := a.active()
	if err != nil {
		return nil, err
	}
	return ed.Paste(), nil
}

func (a *App) Duplicate(id string) (string, error) {
	ed, err := a.active()
	if err != nil {
		return "", err
	}
	return ed.Duplicate(id)
}

// ============================================================
// History
// ============================================================

func (a *App) Undo() (bool, error) {
	ed, err := a.active()
	if err != nil {
		return false, err
	}
	return ed.Undo()
}

func (a *App) Redo() (bool, error) {
	ed, err := a.active()
	if err != nil {
		return false, err
	}
	return ed.Redo()
}

func (a *App) HistoryState() (history.State, error) {
	ed, err := a.active()
	if err != nil {
		return history.State{}, err
	}
	return ed.HistoryState(), nil
}
