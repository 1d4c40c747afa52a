package snapshot

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
)

type folder struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	ParentID   *uuid.UUID  `json:"parent_id"`
	CreatedBy  *id.ActorID `json:"created_by"`
	CreatedAt  time.Time   `json:"created_at"`
	FilePath   string      `json:"-"`
	Checksum   string      `audit:"-"`
	untracked  string
	Untagged   int
	Underscore string `json:"_state"`
}

type selfDescribing struct{ err error }

func (s selfDescribing) AuditFields() (map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return map[string]any{"id": 7, "title": "memo"}, nil
}

type exploding struct{}

func (exploding) AuditFields() (map[string]any, error) { panic("corrupt row") }

func TestFields(t *testing.T) {
	t.Run("struct fields are named by json tag", func(t *testing.T) {
		actor := id.ActorID(uuid.New())
		f := &folder{ID: uuid.New(), Name: "Evidence", CreatedBy: &actor, FilePath: "/tmp/x", Checksum: "abc", untracked: "hidden", Untagged: 3}

		fields, err := Fields(f)
		require.NoError(t, err)

		assert.Equal(t, "Evidence", fields["name"])
		assert.Equal(t, 3, fields["Untagged"])
		assert.Contains(t, fields, "parent_id")
		assert.NotContains(t, fields, "FilePath")
		assert.NotContains(t, fields, "Checksum")
		assert.NotContains(t, fields, "untracked")
	})

	t.Run("field source takes precedence", func(t *testing.T) {
		fields, err := Fields(selfDescribing{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": 7, "title": "memo"}, fields)
	})

	t.Run("field source error is returned", func(t *testing.T) {
		_, err := Fields(selfDescribing{err: errors.New("lazy load failed")})
		require.Error(t, err)
	})

	t.Run("panics become errors", func(t *testing.T) {
		_, err := Fields(exploding{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "corrupt row")
	})

	t.Run("non-struct values are unsupported", func(t *testing.T) {
		_, err := Fields(42)
		require.ErrorIs(t, err, ErrUnsupported)

		var nilFolder *folder
		_, err = Fields(nilFolder)
		require.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestDetail(t *testing.T) {
	t.Run("drops underscore-prefixed attributes and stringifies values", func(t *testing.T) {
		created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
		detail, err := Detail(map[string]any{
			"name":       "Evidence",
			"count":      2,
			"parent_id":  (*uuid.UUID)(nil),
			"created_at": created,
			"_state":     "internal",
		})
		require.NoError(t, err)

		var decoded map[string]string
		require.NoError(t, json.Unmarshal([]byte(detail), &decoded))
		assert.Equal(t, map[string]string{
			"name":       "Evidence",
			"count":      "2",
			"parent_id":  "None",
			"created_at": "2025-03-01T09:30:00Z",
		}, decoded)
	})

	t.Run("nil field set is unsupported", func(t *testing.T) {
		_, err := Detail(nil)
		require.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestStringify_TypedIDs(t *testing.T) {
	actor := id.ActorID(uuid.New())
	assert.Equal(t, actor.String(), Stringify(actor))
	assert.Equal(t, actor.String(), Stringify(&actor))
	assert.Equal(t, "None", Stringify((*id.ActorID)(nil)))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "UPDATE of Document id=42", Summary(audit.ActionUpdate, "Document", "42"))
	assert.Equal(t, "DELETE of Folder id=unknown", Summary(audit.ActionDelete, "Folder", ""))
}

func TestEntityID(t *testing.T) {
	assert.Equal(t, "7", EntityID(selfDescribing{}, map[string]any{"id": 7}))
	assert.Equal(t, "", EntityID(struct{}{}, map[string]any{}))
}
