package domain

// Events emitted to the frontend.
const (
	EventModeChanged      = "editor:mode-changed"
	EventLayersChanged    = "editor:layers-changed"
	EventSelectionChanged = "editor:selection-changed"
	EventHistoryChanged   = "editor:history-changed"
	EventError            = "editor:error"
	EventHoverStart       = "editor:hover-start"
	EventHoverEnd         = "editor:hover-end"

	EventDocumentSaved   = "document:saved"
	EventImportStarted   = "import:started"
	EventImportCompleted = "import:completed"
	EventImportFailed    = "import:failed"
	// EventDocumentChanged reports a document rewritten by another process.
	EventDocumentChanged = "document:changed"

	EventApprovalRequired  = "mcp:approval-required"
	EventApprovalDismissed = "mcp:approval-dismissed"
)
