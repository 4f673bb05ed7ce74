package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"vectorboard/internal/history"
)

// DefaultHistoryLimit caps the stored entries per document.
const DefaultHistoryLimit = 50

// HistoryStore persists history entries per document in SQLite.
type HistoryStore struct {
	db    *DB
	limit int
}

func NewHistoryStore(db *DB, limit int) *HistoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryStore{db: db, limit: limit}
}

// Load returns the stored entries of a document, oldest first, and the id
// of the current entry. A document without history yields no entries.
func (s *HistoryStore) Load(documentID string) ([]history.Entry, string, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, parent_id, label, snapshot_json, created_at
		 FROM history_entries WHERE document_id = ? ORDER BY rowid ASC`, documentID,
	)
	if err != nil {
		return nil, "", fmt.Errorf("load history entries: %w", err)
	}
	defer rows.Close()

	var (
		entries []history.Entry
		rootID  string
	)
	for rows.Next() {
		var (
			e        history.Entry
			parentID sql.NullString
			snapshot string
		)
		if err := rows.Scan(&e.ID, &parentID, &e.Label, &snapshot, &e.CreatedAt); err != nil {
			return nil, "", fmt.Errorf("scan history entry: %w", err)
		}
		if !parentID.Valid {
			rootID = e.ID
		}
		e.Snapshot = []byte(snapshot)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", nil
	}

	var currentID string
	err = s.db.Conn().QueryRow(
		`SELECT current_entry_id FROM history_state WHERE document_id = ?`, documentID,
	).Scan(&currentID)
	if err != nil {
		currentID = rootID
	}
	return entries, currentID, nil
}

// Append stores an entry below parentID and makes it current.
func (s *HistoryStore) Append(documentID string, e history.Entry, parentID string) error {
	var pID *string
	if parentID != "" {
		pID = &parentID
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	// Recording after an undo abandons the entries past the cursor.
	if pID != nil {
		if err := s.dropAfter(documentID, parentID); err != nil {
			return err
		}
	}

	_, err := s.db.Conn().Exec(
		`INSERT INTO history_entries (id, document_id, parent_id, label, snapshot_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, documentID, pID, e.Label, string(e.Snapshot), created,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	if err := s.MoveTo(documentID, e.ID); err != nil {
		return err
	}
	s.pruneIfNeeded(documentID)
	return nil
}

// MoveTo updates the current position pointer.
func (s *HistoryStore) MoveTo(documentID, entryID string) error {
	_, err := s.db.Conn().Exec(
		`INSERT INTO history_state (document_id, current_entry_id) VALUES (?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET current_entry_id = excluded.current_entry_id`,
		documentID, entryID,
	)
	if err != nil {
		return fmt.Errorf("update history state: %w", err)
	}
	return nil
}

// Clear removes all history of a document.
func (s *HistoryStore) Clear(documentID string) error {
	_, _ = s.db.Conn().Exec(`DELETE FROM history_state WHERE document_id = ?`, documentID)
	_, err := s.db.Conn().Exec(`DELETE FROM history_entries WHERE document_id = ?`, documentID)
	return err
}

// Journal binds the store to one document for history.Manager.
func (s *HistoryStore) Journal(documentID string) history.Journal {
	return journal{store: s, documentID: documentID}
}

type journal struct {
	store      *HistoryStore
	documentID string
}

func (j journal) Append(e history.Entry, parentID string) error {
	return j.store.Append(j.documentID, e, parentID)
}

func (j journal) MoveTo(entryID string) error {
	return j.store.MoveTo(j.documentID, entryID)
}

// dropAfter deletes the entries recorded after parentID.
func (s *HistoryStore) dropAfter(documentID, parentID string) error {
	_, err := s.db.Conn().Exec(
		`DELETE FROM history_entries WHERE document_id = ? AND rowid > (
			SELECT rowid FROM history_entries WHERE id = ?)`,
		documentID, parentID,
	)
	if err != nil {
		return fmt.Errorf("drop redo entries: %w", err)
	}
	return nil
}

// pruneIfNeeded removes the oldest entries when the count exceeds the limit.
// The entry after a removed one is re-parented so the chain stays intact.
func (s *HistoryStore) pruneIfNeeded(documentID string) {
	var count int
	s.db.Conn().QueryRow(`SELECT COUNT(*) FROM history_entries WHERE document_id = ?`, documentID).Scan(&count)
	if count <= s.limit {
		return
	}
	toDelete := count - s.limit

	// Read the cursor before opening the rows cursor
	var currentID string
	s.db.Conn().QueryRow(`SELECT current_entry_id FROM history_state WHERE document_id = ?`, documentID).Scan(&currentID)

	rows, err := s.db.Conn().Query(
		`SELECT id FROM history_entries WHERE document_id = ?
		 ORDER BY rowid ASC LIMIT ?`, documentID, toDelete,
	)
	if err != nil {
		log.Printf("history store: prune %s: %v", documentID, err)
		return
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		if id != currentID {
			ids = append(ids, id)
		}
	}
	rows.Close()

	for _, id := range ids {
		var parentID sql.NullString
		s.db.Conn().QueryRow(`SELECT parent_id FROM history_entries WHERE id = ?`, id).Scan(&parentID)
		if parentID.Valid {
			s.db.Conn().Exec(`UPDATE history_entries SET parent_id = ? WHERE parent_id = ?`, parentID.String, id)
		} else {
			s.db.Conn().Exec(`UPDATE history_entries SET parent_id = NULL WHERE parent_id = ?`, id)
		}
		s.db.Conn().Exec(`DELETE FROM history_entries WHERE id = ?`, id)
	}
}
