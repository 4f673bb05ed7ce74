package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vectorboard/internal/domain"
)

var ErrNotFound = errors.New("not found")

// DocumentStore implements domain.DocumentStore using SQLite.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) CreateDocument(d *domain.Document) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.ViewportZoom == 0 {
		d.ViewportZoom = 1
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO documents (id, name, viewport_x, viewport_y, viewport_zoom, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.ViewportX, d.ViewportY, d.ViewportZoom, d.Content, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *DocumentStore) GetDocument(id string) (*domain.Document, error) {
	d := &domain.Document{}
	err := s.db.conn.QueryRow(
		`SELECT id, name, viewport_x, viewport_y, viewport_zoom, content, created_at, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.ViewportX, &d.ViewportY, &d.ViewportZoom, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *DocumentStore) ListDocuments() ([]domain.DocumentSummary, error) {
	rows, err := s.db.conn.Query(`SELECT id, name, updated_at FROM documents ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.DocumentSummary
	for rows.Next() {
		var d domain.DocumentSummary
		if err := rows.Scan(&d.ID, &d.Name, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *DocumentStore) UpdateDocument(d *domain.Document) error {
	d.UpdatedAt = time.Now()
	res, err := s.db.conn.Exec(
		`UPDATE documents SET name = ?, viewport_x = ?, viewport_y = ?, viewport_zoom = ?, content = ?, updated_at = ? WHERE id = ?`,
		d.Name, d.ViewportX, d.ViewportY, d.ViewportZoom, d.Content, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update document %s: %w", d.ID, ErrNotFound)
	}
	return nil
}

// DeleteDocument removes a document together with its history.
func (s *DocumentStore) DeleteDocument(id string) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, q := range []string{
		`DELETE FROM history_state WHERE document_id = ?`,
		`DELETE FROM history_entries WHERE document_id = ?`,
		`DELETE FROM documents WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
	}
	return tx.Commit()
}
