package models

// ItemStatus tracks a work item through its retry lifecycle.
// Terminal states (succeeded, failed) are idempotent: once reached the item
// never transitions again.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemRetrying  ItemStatus = "retrying"
	ItemSucceeded ItemStatus = "succeeded"
	ItemFailed    ItemStatus = "failed"
)

// ItemClass controls whether an item's failure fails its enclosing phase
type ItemClass string

const (
	// ItemCritical items fail the whole phase when they exhaust retries
	ItemCritical ItemClass = "critical"
	// ItemBestEffort items record their failure without failing the phase
	ItemBestEffort ItemClass = "best_effort"
)

// WorkItem is one retryable external call belonging to a phase. Items are
// created by the phase runner at phase start and summarized into an
// ItemOutcome once terminal.
type WorkItem struct {
	ID          string        `json:"id"`
	Phase       PhaseName     `json:"phase"`
	Name        string        `json:"name"`
	Target      string        `json:"target"` // URL or external-API operation
	Class       ItemClass     `json:"class"`
	PrincipalID string        `json:"principal_id,omitempty"`
	NeedsAuth   bool          `json:"needs_auth"`
	Attempts    int           `json:"attempts"`
	MaxAttempts int           `json:"max_attempts"`
	Status      ItemStatus    `json:"status"`
	Reason      FailureReason `json:"reason,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// IsTerminal returns true once the item has succeeded or failed
func (w *WorkItem) IsTerminal() bool {
	return w.Status == ItemSucceeded || w.Status == ItemFailed
}

// MarkRetrying records one more attempt ahead of a retry. No-op once terminal.
func (w *WorkItem) MarkRetrying() {
	if w.IsTerminal() {
		return
	}
	w.Status = ItemRetrying
}

// MarkSucceeded moves the item to its terminal success state. No-op once terminal.
func (w *WorkItem) MarkSucceeded() {
	if w.IsTerminal() {
		return
	}
	w.Status = ItemSucceeded
	w.Error = ""
}

// MarkFailed moves the item to its terminal failure state. No-op once terminal.
func (w *WorkItem) MarkFailed(reason FailureReason, detail string) {
	if w.IsTerminal() {
		return
	}
	w.Status = ItemFailed
	w.Reason = reason
	w.Error = detail
}

// Outcome summarizes a terminal item for phase aggregation
func (w *WorkItem) Outcome() ItemOutcome {
	return ItemOutcome{
		Name:     w.Name,
		Target:   w.Target,
		Class:    w.Class,
		Status:   w.Status,
		Attempts: w.Attempts,
		Reason:   w.Reason,
		Error:    w.Error,
	}
}

// ItemOutcome is the summarized, immutable record of one finished work item
type ItemOutcome struct {
	Name     string        `json:"name"`
	Target   string        `json:"target"`
	Class    ItemClass     `json:"class"`
	Status   ItemStatus    `json:"status"`
	Attempts int           `json:"attempts"`
	Reason   FailureReason `json:"reason,omitempty"`
	Error    string        `json:"error,omitempty"`
}
