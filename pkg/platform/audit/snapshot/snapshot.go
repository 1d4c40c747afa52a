// Package snapshot flattens arbitrary entities into the human-readable
// detail block stored on change records.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	audit "dossier/pkg/platform/audit"
)

// ErrUnsupported is returned for values that have no enumerable field set.
var ErrUnsupported = errors.New("entity has no readable fields")

// Fields returns the visible field set of an entity. Entities implementing
// audit.FieldSource enumerate themselves; maps are used as-is; structs are
// introspected through their exported fields, named by json tag.
// Panics raised while reading state are converted to errors.
func Fields(entity any) (fields map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			fields, err = nil, fmt.Errorf("read entity fields: %v", r)
		}
	}()

	if src, ok := entity.(audit.FieldSource); ok {
		return src.AuditFields()
	}
	if m, ok := entity.(map[string]any); ok {
		return m, nil
	}

	rv := reflect.ValueOf(entity)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, ErrUnsupported
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, ErrUnsupported
	}

	fields = make(map[string]any, rv.NumField())
	collect(rv, fields)
	return fields, nil
}

func collect(rv reflect.Value, into map[string]any) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			collect(rv.Field(i), into)
			continue
		}
		if !sf.IsExported() || sf.Tag.Get("audit") == "-" {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		into[name] = rv.Field(i).Interface()
	}
}

// Flatten converts a field set into key -> string, dropping internal
// attributes (names with a leading underscore).
func Flatten(fields map[string]any) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = Stringify(v)
	}
	return out
}

// Stringify renders one field value. Nil and nil pointers render as "None"
// so absent references stay visible in the snapshot.
func Stringify(v any) string {
	if v == nil {
		return "None"
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "None"
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	case []byte:
		return string(val)
	}
	return fmt.Sprint(v)
}

// Detail serializes a field set into the indented JSON block stored on a
// change record.
func Detail(fields map[string]any) (string, error) {
	if fields == nil {
		return "", ErrUnsupported
	}
	raw, err := json.MarshalIndent(Flatten(fields), "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize detail: %w", err)
	}
	return string(raw), nil
}

// Summary is the fallback detail used when the snapshot cannot be built.
func Summary(action audit.Action, entityType, entityID string) string {
	if entityID == "" {
		entityID = "unknown"
	}
	return fmt.Sprintf("%s of %s id=%s", action, entityType, entityID)
}

// EntityID resolves an entity's surrogate id for summaries: its AuditID when
// implemented, else the "id" field of the captured field set.
func EntityID(entity any, fields map[string]any) string {
	if ident, ok := entity.(audit.Identified); ok {
		return ident.AuditID()
	}
	if v, ok := fields["id"]; ok && v != nil {
		return Stringify(v)
	}
	return ""
}
