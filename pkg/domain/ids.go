package domain

import (
	"github.com/google/uuid"

	dErrors "dossier/pkg/domain-errors"
)

// Typed identifiers keep actor, session and record references from being
// mixed up at compile time. All of them are UUIDs on the wire and in storage.
type (
	ActorID         uuid.UUID
	SessionID       uuid.UUID
	ChangeID        uuid.UUID
	CaseFileID      uuid.UUID
	FolderID        uuid.UUID
	DocumentID      uuid.UUID
	VersionID       uuid.UUID
	TimelineEventID uuid.UUID
)

func (id ActorID) String() string         { return uuid.UUID(id).String() }
func (id SessionID) String() string       { return uuid.UUID(id).String() }
func (id ChangeID) String() string        { return uuid.UUID(id).String() }
func (id CaseFileID) String() string      { return uuid.UUID(id).String() }
func (id FolderID) String() string        { return uuid.UUID(id).String() }
func (id DocumentID) String() string      { return uuid.UUID(id).String() }
func (id VersionID) String() string       { return uuid.UUID(id).String() }
func (id TimelineEventID) String() string { return uuid.UUID(id).String() }

func (id ActorID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ChangeID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id CaseFileID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id FolderID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id VersionID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id TimelineEventID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs render as plain UUID strings in JSON.
func (id ActorID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id SessionID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id ChangeID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id CaseFileID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id FolderID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id DocumentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id VersionID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id TimelineEventID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *ActorID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *SessionID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ChangeID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CaseFileID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *FolderID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DocumentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *VersionID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TimelineEventID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseActorID parses and validates an actor identifier.
func ParseActorID(s string) (ActorID, error) {
	u, err := parseUUID(s, "actor ID")
	return ActorID(u), err
}

// ParseSessionID parses and validates a session identifier.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session ID")
	return SessionID(u), err
}

// ParseCaseFileID parses and validates a case file identifier.
func ParseCaseFileID(s string) (CaseFileID, error) {
	u, err := parseUUID(s, "case file ID")
	return CaseFileID(u), err
}

// ParseFolderID parses and validates a folder identifier.
func ParseFolderID(s string) (FolderID, error) {
	u, err := parseUUID(s, "folder ID")
	return FolderID(u), err
}

// ParseDocumentID parses and validates a document identifier.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document ID")
	return DocumentID(u), err
}

// parseUUID rejects empty, malformed and nil UUIDs.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
