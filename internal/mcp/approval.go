package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"vectorboard/internal/domain"
)

var (
	ErrRejected        = errors.New("action rejected by user")
	ErrApprovalTimeout = errors.New("approval timed out")
)

// EventEmitter allows the approval queue to notify the frontend.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// ApprovalStore persists pending actions for cross-process approval.
type ApprovalStore interface {
	Create(a *domain.PendingAction) error
	Status(id string) (domain.ApprovalStatus, error)
	Delete(id string) error
}

// ApprovalQueue holds destructive tool calls until the user decides.
// It supports two modes:
//   - In-process: waits on a channel fed by Approve/Reject, announced with
//     an mcp:approval-required event
//   - Store-backed (standalone MCP): writes the action to SQLite and polls
//     until the desktop app resolves it
type ApprovalQueue struct {
	mu      sync.Mutex
	pending map[string]chan bool
	emitter EventEmitter
	store   ApprovalStore

	timeout time.Duration
	poll    time.Duration
}

func NewApprovalQueue(emitter EventEmitter) *ApprovalQueue {
	return &ApprovalQueue{
		pending: make(map[string]chan bool),
		emitter: emitter,
		timeout: 120 * time.Second,
		poll:    500 * time.Millisecond,
	}
}

// SetStore switches to store-backed mode.
func (q *ApprovalQueue) SetStore(store ApprovalStore) {
	q.store = store
}

// Request blocks until the action is approved (nil), rejected (ErrRejected)
// or times out. metadata is optional JSON with extra context.
func (q *ApprovalQueue) Request(ctx context.Context, tool, description, metadata string) error {
	if metadata == "" {
		metadata = "{}"
	}
	a := domain.PendingAction{
		ID:          uuid.New().String(),
		Tool:        tool,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		Metadata:    metadata,
	}
	if q.store != nil {
		return q.requestViaStore(ctx, a)
	}
	return q.requestViaChannel(ctx, a)
}

func (q *ApprovalQueue) requestViaStore(ctx context.Context, a domain.PendingAction) error {
	if err := q.store.Create(&a); err != nil {
		return err
	}
	defer func() {
		if err := q.store.Delete(a.ID); err != nil {
			log.Printf("[MCP] approval %s cleanup: %v", a.ID, err)
		}
	}()

	deadline := time.NewTimer(q.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(q.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			status, err := q.store.Status(a.ID)
			if err != nil {
				continue
			}
			switch status {
			case domain.ApprovalApproved:
				return nil
			case domain.ApprovalRejected:
				return fmt.Errorf("%s: %w", a.Tool, ErrRejected)
			}
		case <-deadline.C:
			return fmt.Errorf("%s after %s: %w", a.Tool, q.timeout, ErrApprovalTimeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *ApprovalQueue) requestViaChannel(ctx context.Context, a domain.PendingAction) error {
	ch := make(chan bool, 1)
	q.mu.Lock()
	q.pending[a.ID] = ch
	q.mu.Unlock()
	defer q.cleanup(a.ID)

	q.emitter.Emit(ctx, domain.EventApprovalRequired, a)

	select {
	case approved := <-ch:
		if !approved {
			return fmt.Errorf("%s: %w", a.Tool, ErrRejected)
		}
		return nil
	case <-time.After(q.timeout):
		q.emitter.Emit(ctx, domain.EventApprovalDismissed, map[string]string{"id": a.ID})
		return fmt.Errorf("%s after %s: %w", a.Tool, q.timeout, ErrApprovalTimeout)
	case <-ctx.Done():
		q.emitter.Emit(ctx, domain.EventApprovalDismissed, map[string]string{"id": a.ID})
		return ctx.Err()
	}
}

// Approve resolves an in-process action. Unknown ids are ignored.
func (q *ApprovalQueue) Approve(actionID string) { q.resolve(actionID, true) }

// Reject resolves an in-process action. Unknown ids are ignored.
func (q *ApprovalQueue) Reject(actionID string) { q.resolve(actionID, false) }

func (q *ApprovalQueue) resolve(id string, approved bool) {
	q.mu.Lock()
	ch, ok := q.pending[id]
	q.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- approved:
	default:
	}
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
