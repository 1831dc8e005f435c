package audit

import (
	"context"
	"encoding/json"
)

// Event describes one mutation for the external audit sink.
type Event struct {
	// TraceID correlates the event with the request that caused it
	TraceID string `json:"traceId,omitempty"`

	Timestamp string `json:"timestamp"` // ISO 8601

	// Actor is the user id of the principal performing the mutation
	Actor     uint   `json:"actor"`
	ActorRole string `json:"actorRole,omitempty"`
	Action    string `json:"action"` // INSERT, UPDATE, VIEW
	Table     string `json:"table"`
	RecordID  uint   `json:"recordId"`
	Endpoint  string `json:"endpoint,omitempty"`

	// Before/After carry row snapshots without credentials or secrets
	Before json.RawMessage `json:"before,omitempty"`
	After  json.RawMessage `json:"after,omitempty"`

	Description string `json:"description,omitempty"`
}

// Audit actions
const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionView   = "VIEW"
)

// Auditor records mutation events toward the audit sink.
//
// Implementations must be fire-and-forget: LogEvent returns immediately, runs
// in the background, and degrades gracefully when the sink is unavailable. A
// failed audit write is logged locally and never surfaces to the caller.
type Auditor interface {
	LogEvent(ctx context.Context, event *Event)
	IsEnabled() bool
}
