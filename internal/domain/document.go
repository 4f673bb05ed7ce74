package domain

import "time"

type Document struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ViewportX    float64   `json:"viewportX"`
	ViewportY    float64   `json:"viewportY"`
	ViewportZoom float64   `json:"viewportZoom"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DocumentSummary is a Document without its content, for listings.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DocumentStore interface {
	CreateDocument(d *Document) error
	GetDocument(id string) (*Document, error)
	ListDocuments() ([]DocumentSummary, error)
	UpdateDocument(d *Document) error
	DeleteDocument(id string) error
}
