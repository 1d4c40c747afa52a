// Package observer turns entity lifecycle transitions into change events.
//
// The observer is registered once against the persistence layer's
// after-commit notifications and dispatches on the runtime type tag, so new
// entity types are observed without code changes. Types are opted out only
// through the denylist.
package observer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
	"dossier/pkg/platform/audit/snapshot"
	"dossier/pkg/requestcontext"
)

// Field names inspected for the acting identity, in priority order.
const (
	FieldModifiedBy = "modified_by"
	FieldCreatedBy  = "created_by"
)

// DefaultDenylist holds the bookkeeping types that are never observed. The
// pipeline's own types are always denied regardless of configuration.
var DefaultDenylist = []string{
	audit.EntityTypeActorSession,
	audit.EntityTypeChangeRecord,
	"Session",
	"Credential",
	"ContentType",
}

// Recorder persists change events. It must not fail its caller.
type Recorder interface {
	Record(ctx context.Context, event audit.ChangeEvent) audit.Outcome
}

// Observer converts lifecycle transitions into change events.
type Observer struct {
	recorder Recorder
	denylist map[string]struct{}
	logger   *slog.Logger
}

// Option configures the Observer.
type Option func(*Observer)

// WithLogger sets a logger for local failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Observer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDenylist adds entity types that must not be observed.
func WithDenylist(entityTypes ...string) Option {
	return func(o *Observer) {
		for _, t := range entityTypes {
			if t != "" {
				o.denylist[t] = struct{}{}
			}
		}
	}
}

// New creates an observer dispatching to the given recorder.
func New(recorder Recorder, opts ...Option) *Observer {
	o := &Observer{
		recorder: recorder,
		denylist: make(map[string]struct{}, len(DefaultDenylist)),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, t := range DefaultDenylist {
		o.denylist[t] = struct{}{}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Denied reports whether an entity type is excluded from observation.
func (o *Observer) Denied(entityType string) bool {
	_, ok := o.denylist[entityType]
	return ok
}

// Observe captures one lifecycle transition. An empty entityType is derived
// from the entity. It never panics and never returns an error; the outcome
// is informational only.
func (o *Observer) Observe(ctx context.Context, entityType string, action audit.Action, entity any) (out audit.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("observer panic: %v", r)
			o.logger.ErrorContext(ctx, "audit observer failed",
				"entity_type", entityType,
				"action", string(action),
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			out = audit.Failed("panic", err)
		}
	}()

	if entityType == "" {
		entityType = audit.TypeOf(entity)
	}
	if o.Denied(entityType) {
		return audit.Skipped("denylisted entity type")
	}
	if !action.Valid() {
		return audit.Skipped("unknown action")
	}

	fields, fieldsErr := snapshot.Fields(entity)
	if fieldsErr != nil {
		o.logger.WarnContext(ctx, "audit observer could not read entity fields",
			"entity_type", entityType,
			"action", string(action),
			"error", fieldsErr,
		)
	}

	actor, ok := ActorHint(entity, fields)
	if !ok {
		return audit.Skipped("no actor")
	}

	return o.recorder.Record(ctx, audit.ChangeEvent{
		EntityType: entityType,
		EntityID:   snapshot.EntityID(entity, fields),
		Action:     action,
		Entity:     entity,
		ActorHint:  actor,
		Fields:     fields,
		FieldsErr:  fieldsErr,
	})
}

// AfterCommit satisfies the record store's lifecycle hook.
func (o *Observer) AfterCommit(ctx context.Context, entityType string, action audit.Action, entity any) {
	_ = o.Observe(ctx, entityType, action, entity)
}

// ActorHint derives the acting identity from the entity: "modified by"
// first, then "created by". It reports false when neither is set.
func ActorHint(entity any, fields map[string]any) (id.ActorID, bool) {
	if attributed, ok := entity.(audit.Attributed); ok {
		modifiedBy, createdBy := attributed.AuditActors()
		if !modifiedBy.IsNil() {
			return modifiedBy, true
		}
		if !createdBy.IsNil() {
			return createdBy, true
		}
		return id.ActorID{}, false
	}
	if actor, ok := actorFrom(fields[FieldModifiedBy]); ok {
		return actor, true
	}
	if actor, ok := actorFrom(fields[FieldCreatedBy]); ok {
		return actor, true
	}
	return id.ActorID{}, false
}

func actorFrom(v any) (id.ActorID, bool) {
	var actor id.ActorID
	switch val := v.(type) {
	case id.ActorID:
		actor = val
	case *id.ActorID:
		if val == nil {
			return id.ActorID{}, false
		}
		actor = *val
	case uuid.UUID:
		actor = id.ActorID(val)
	case *uuid.UUID:
		if val == nil {
			return id.ActorID{}, false
		}
		actor = id.ActorID(*val)
	case string:
		parsed, err := id.ParseActorID(val)
		if err != nil {
			return id.ActorID{}, false
		}
		actor = parsed
	default:
		return id.ActorID{}, false
	}
	return actor, !actor.IsNil()
}
