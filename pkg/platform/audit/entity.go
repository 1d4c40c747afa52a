package audit

import (
	"reflect"

	id "dossier/pkg/domain"
)

// The pipeline depends only on these capabilities, never on concrete entity
// types. All of them are optional: anything without them is introspected.

// Typed entities report their own type tag.
type Typed interface {
	EntityType() string
}

// Identified entities report their surrogate id for fallback summaries.
type Identified interface {
	AuditID() string
}

// FieldSource entities enumerate their visible fields themselves.
type FieldSource interface {
	AuditFields() (map[string]any, error)
}

// Attributed entities report who last modified and who created them. Either
// may be the nil ID.
type Attributed interface {
	AuditActors() (modifiedBy, createdBy id.ActorID)
}

// TypeOf returns the runtime type tag of an entity: its own EntityType when
// implemented, else the name of its underlying struct type.
func TypeOf(entity any) string {
	if t, ok := entity.(Typed); ok {
		return t.EntityType()
	}
	rt := reflect.TypeOf(entity)
	if rt == nil {
		return ""
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.Name()
}
