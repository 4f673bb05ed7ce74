package domain

import "time"

// ApprovalStatus is the state of a destructive agent action.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// PendingAction is a destructive agent tool call awaiting the user.
type PendingAction struct {
	ID          string    `json:"id"`
	Tool        string    `json:"tool"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	// Metadata is JSON with extra context, e.g. the node ids to highlight.
	Metadata string `json:"metadata"`
}
