package audit

import (
	"fmt"
	"time"

	id "dossier/pkg/domain"
)

// Action is the kind of lifecycle transition a change record captures.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Valid reports whether the action is one of the tracked transitions.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Entity type tags owned by the pipeline itself. Observing them would make
// the pipeline log its own writes.
const (
	EntityTypeActorSession = "ActorSession"
	EntityTypeChangeRecord = "ChangeRecord"
)

// Session labels and defaults for synthesized sessions.
const (
	LabelSessionStart = "session start"
	LabelSessionEnd   = "session end"

	DefaultLoopbackOrigin = "127.0.0.1"
	InternalClient        = "internal"
)

// AutomaticLabel names a session synthesized to attribute a change that had
// no prior session for its actor.
func AutomaticLabel(action Action) string {
	return fmt.Sprintf("automatic action (%s)", action)
}

// ActorSession groups change records under the actor and context that
// caused them. Sessions are immutable once inserted.
type ActorSession struct {
	ID               id.SessionID `json:"id"`
	ActorID          id.ActorID   `json:"actor_id"`
	Label            string       `json:"label"`
	Origin           string       `json:"origin,omitempty"`
	ClientDescriptor string       `json:"client_descriptor"`
	Timestamp        time.Time    `json:"timestamp"`
	SessionStart     *time.Time   `json:"session_start,omitempty"`
	SessionEnd       *time.Time   `json:"session_end,omitempty"`
	Device           string       `json:"device,omitempty"`
}

// ChangeRecord is one observed mutation, owned by exactly one session.
type ChangeRecord struct {
	ID         id.ChangeID  `json:"id"`
	SessionID  id.SessionID `json:"session_id"`
	Action     Action       `json:"action"`
	EntityType string       `json:"entity_type"`
	Detail     string       `json:"detail"`
	Timestamp  time.Time    `json:"timestamp"`
}

// ChangeEvent is the normalized form of a lifecycle transition handed from
// the observer to the writer.
type ChangeEvent struct {
	EntityType string
	EntityID   string
	Action     Action
	Entity     any
	ActorHint  id.ActorID
	// Fields is the visible field set captured at observation time. It is
	// nil when the entity state could not be read; FieldsErr says why.
	Fields    map[string]any
	FieldsErr error
}

// OutcomeStatus classifies the result of a best-effort audit operation.
type OutcomeStatus string

const (
	// OutcomeRecorded: the record was written with a full detail snapshot.
	OutcomeRecorded OutcomeStatus = "recorded"
	// OutcomeDegraded: the record was written with the fallback summary.
	OutcomeDegraded OutcomeStatus = "degraded"
	// OutcomeSkipped: nothing to write (denylisted type, no actor, missing reference).
	OutcomeSkipped OutcomeStatus = "skipped"
	// OutcomeDropped: the write was not attempted because the store is unhealthy.
	OutcomeDropped OutcomeStatus = "dropped"
	// OutcomeFailed: the write was attempted and failed.
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome reports what a best-effort audit operation did. Callers on a
// business path must not branch on it; it exists for diagnostics and tests.
type Outcome struct {
	Status    OutcomeStatus
	Reason    string
	SessionID id.SessionID
	RecordID  string
	Err       error
}

// Written reports whether a row was persisted.
func (o Outcome) Written() bool {
	return o.Status == OutcomeRecorded || o.Status == OutcomeDegraded
}

// Skipped builds a skipped outcome.
func Skipped(reason string) Outcome {
	return Outcome{Status: OutcomeSkipped, Reason: reason}
}

// Failed builds a failed outcome.
func Failed(reason string, err error) Outcome {
	return Outcome{Status: OutcomeFailed, Reason: reason, Err: err}
}
