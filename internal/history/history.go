// Package history keeps a linear undo/redo stack of document snapshots.
//
// Every recorded entry is a full snapshot of the target. Recording after an
// undo discards the redo future, and the stack is capped by dropping the
// oldest entries. A Manager is not safe for concurrent use on its own: the
// owner serializes calls, and timer callbacks go through Options.Dispatch so
// they run under the same serialization.
package history

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit    = 50
	DefaultDebounce = 500 * time.Millisecond
)

// Target is the document the manager snapshots and restores.
type Target interface {
	Snapshot() ([]byte, error)
	Restore(snapshot []byte) error
	// Ready reports whether a document is loaded.
	Ready() bool
}

// Entry is one recorded snapshot.
type Entry struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Snapshot  []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// State is the externally visible position in the stack.
type State struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
	Index   int  `json:"index"`
	Length  int  `json:"length"`
}

// Journal persists entries so a stack can be resumed later.
type Journal interface {
	Append(e Entry, parentID string) error
	MoveTo(entryID string) error
}

// Options configures a Manager. Zero values select the defaults.
type Options struct {
	Limit    int
	Debounce time.Duration
	// Dispatch runs timer callbacks; it must serialize them with every
	// other call into the Manager. Defaults to calling fn directly.
	Dispatch func(fn func())
	// OnChange observes every state change.
	OnChange func(State)
	Journal  Journal
	Now      func() time.Time
}

// Manager owns the snapshot stack and the cursor into it.
type Manager struct {
	target Target
	opts   Options

	entries   []Entry
	index     int
	restoring bool

	timer        *time.Timer
	timerGen     uint64
	pendingLabel string
	pending      bool
}

// New returns a Manager for target with an empty stack.
func New(target Target, opts Options) *Manager {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(fn func()) { fn() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{target: target, opts: opts, index: -1}
}

// Record appends a snapshot of the target labeled with label. It is a
// no-op while a restore is in progress or when no document is loaded.
func (m *Manager) Record(label string) error {
	if m.restoring || !m.target.Ready() {
		return nil
	}
	// The new snapshot already holds the changes of a pending debounced
	// entry, so it takes that entry's place.
	if m.pending {
		m.stopTimer()
		m.pending = false
	}
	snap, err := m.target.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot %q: %w", label, err)
	}

	var parentID string
	if m.index >= 0 {
		parentID = m.entries[m.index].ID
	}
	if m.index < len(m.entries)-1 {
		m.entries = m.entries[:m.index+1]
	}
	e := Entry{ID: uuid.NewString(), Label: label, Snapshot: snap, CreatedAt: m.opts.Now()}
	m.entries = append(m.entries, e)
	if over := len(m.entries) - m.opts.Limit; over > 0 {
		m.entries = append([]Entry(nil), m.entries[over:]...)
	}
	m.index = len(m.entries) - 1

	if m.opts.Journal != nil {
		if err := m.opts.Journal.Append(e, parentID); err != nil {
			log.Printf("history: journal append %q: %v", label, err)
		}
	}
	m.changed()
	return nil
}

// Debounced schedules a Record after the debounce window. Calls arriving
// within the window replace the pending one, so a burst yields one entry
// carrying the last label.
func (m *Manager) Debounced(label string) {
	if m.restoring {
		return
	}
	m.pendingLabel = label
	m.pending = true
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timerGen++
	gen := m.timerGen
	m.timer = time.AfterFunc(m.opts.Debounce, func() {
		m.opts.Dispatch(func() {
			if gen != m.timerGen {
				return
			}
			m.Flush()
		})
	})
}

// Flush records a pending debounced entry immediately.
func (m *Manager) Flush() {
	if !m.pending {
		return
	}
	m.stopTimer()
	m.pending = false
	if err := m.Record(m.pendingLabel); err != nil {
		log.Printf("history: debounced record: %v", err)
	}
}

// Cancel drops a pending debounced entry.
func (m *Manager) Cancel() {
	m.stopTimer()
	m.pending = false
}

func (m *Manager) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.timerGen++
}

// Undo restores the previous entry. It reports whether the cursor moved.
func (m *Manager) Undo() (bool, error) {
	m.Flush()
	if m.index <= 0 {
		return false, nil
	}
	return m.moveTo(m.index - 1)
}

// Redo restores the next entry. It reports whether the cursor moved.
func (m *Manager) Redo() (bool, error) {
	m.Flush()
	if m.index >= len(m.entries)-1 {
		return false, nil
	}
	return m.moveTo(m.index + 1)
}

func (m *Manager) moveTo(i int) (bool, error) {
	if !m.target.Ready() {
		return false, nil
	}
	m.restoring = true
	err := m.target.Restore(m.entries[i].Snapshot)
	m.restoring = false
	if err != nil {
		return false, fmt.Errorf("restore %q: %w", m.entries[i].Label, err)
	}
	m.index = i
	if m.opts.Journal != nil {
		if err := m.opts.Journal.MoveTo(m.entries[i].ID); err != nil {
			log.Printf("history: journal move: %v", err)
		}
	}
	m.changed()
	return true, nil
}

// Restoring reports whether a restore is running.
func (m *Manager) Restoring() bool { return m.restoring }

// State returns the current cursor position.
func (m *Manager) State() State {
	return State{
		CanUndo: m.index > 0,
		CanRedo: m.index < len(m.entries)-1,
		Index:   m.index,
		Length:  len(m.entries),
	}
}

// Entries returns a copy of the stack, oldest first.
func (m *Manager) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Resume replaces the stack with previously journaled entries and places
// the cursor on the entry with id current (or the last entry). The target
// is not restored.
func (m *Manager) Resume(entries []Entry, current string) {
	m.Cancel()
	if len(entries) > m.opts.Limit {
		entries = entries[len(entries)-m.opts.Limit:]
	}
	m.entries = append([]Entry(nil), entries...)
	m.index = len(m.entries) - 1
	for i, e := range m.entries {
		if e.ID == current {
			m.index = i
			break
		}
	}
	m.changed()
}

// Reset empties the stack.
func (m *Manager) Reset() {
	m.Cancel()
	m.entries = nil
	m.index = -1
	m.changed()
}

func (m *Manager) changed() {
	if m.opts.OnChange != nil {
		m.opts.OnChange(m.State())
	}
}
