package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vectorboard/internal/domain"
)

// ApprovalStore persists pending agent actions so a standalone MCP process
// and the desktop app can hand approvals to each other.
type ApprovalStore struct {
	db *DB
}

func NewApprovalStore(db *DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

func (s *ApprovalStore) Create(a *domain.PendingAction) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.Metadata == "" {
		a.Metadata = "{}"
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO mcp_approvals (id, tool, description, status, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Tool, a.Description, domain.ApprovalPending, a.Metadata, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func (s *ApprovalStore) Status(id string) (domain.ApprovalStatus, error) {
	var status string
	err := s.db.conn.QueryRow(`SELECT status FROM mcp_approvals WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("approval %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("approval status: %w", err)
	}
	return domain.ApprovalStatus(status), nil
}

// Resolve approves or rejects a pending action. Resolving an action that
// is gone or already resolved returns ErrNotFound.
func (s *ApprovalStore) Resolve(id string, approved bool) error {
	status := domain.ApprovalRejected
	if approved {
		status = domain.ApprovalApproved
	}
	res, err := s.db.conn.Exec(
		`UPDATE mcp_approvals SET status = ? WHERE id = ? AND status = ?`,
		status, id, domain.ApprovalPending,
	)
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resolve approval %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *ApprovalStore) Delete(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM mcp_approvals WHERE id = ?`, id)
	return err
}

// Pending lists unresolved actions, oldest first.
func (s *ApprovalStore) Pending() ([]domain.PendingAction, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, tool, description, metadata, created_at FROM mcp_approvals WHERE status = ? ORDER BY created_at`,
		domain.ApprovalPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PendingAction
	for rows.Next() {
		var a domain.PendingAction
		if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
