package app

import (
	"vectorboard/internal/domain"
	"vectorboard/internal/editor"
	"vectorboard/internal/history"
	"vectorboard/internal/scene"
)

// DocumentState is everything the frontend needs to show an opened board.
type DocumentState struct {
	Document  domain.DocumentSummary `json:"document"`
	Content   string                 `json:"content"`
	Viewport  scene.Viewport         `json:"viewport"`
	Mode      editor.ModeState       `json:"mode"`
	Layers    []editor.Layer         `json:"layers"`
	Selection []string               `json:"selection"`
	History   history.State          `json:"history"`
}

// ImportResult reports a finished Figma or JSON import.
type ImportResult struct {
	Count int    `json:"count"`
	File  string `json:"file,omitempty"`
}
