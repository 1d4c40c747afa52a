package timeline

import (
	"time"

	id "dossier/pkg/domain"
)

// Kind classifies a case file milestone.
type Kind string

const (
	KindFolder   Kind = "FOLDER"
	KindDocument Kind = "DOCUMENT"
	KindVersion  Kind = "VERSION"
)

// Valid reports whether the kind is known.
func (k Kind) Valid() bool {
	switch k {
	case KindFolder, KindDocument, KindVersion:
		return true
	}
	return false
}

// Event is one milestone in a case file's chronological log.
type Event struct {
	ID          id.TimelineEventID `json:"id"`
	CaseFileID  id.CaseFileID      `json:"case_file_id"`
	ActorID     *id.ActorID        `json:"actor_id,omitempty"`
	Kind        Kind               `json:"kind"`
	Description string             `json:"description"`
	Timestamp   time.Time          `json:"timestamp"`
}
