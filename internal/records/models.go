// Package records holds the host records model: actors, case files and the
// folders, documents and versions filed under them.
//
// None of these types know about auditing. The observer reads their
// created_by / modified_by fields and their visible state by tag.
package records

import (
	"time"

	"github.com/google/uuid"

	id "dossier/pkg/domain"
)

// Entity type tags.
const (
	TypeActor    = "Actor"
	TypeCaseFile = "CaseFile"
	TypeFolder   = "Folder"
	TypeDocument = "Document"
	TypeVersion  = "Version"
)

// Case file statuses.
const (
	CaseFileOpen   = "open"
	CaseFileClosed = "closed"
)

// Actor is a person who can act on records.
type Actor struct {
	ID         id.ActorID  `json:"id"`
	Username   string      `json:"username"`
	FullName   string      `json:"full_name"`
	Email      string      `json:"email"`
	CreatedBy  *id.ActorID `json:"created_by"`
	ModifiedBy *id.ActorID `json:"modified_by"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (Actor) EntityType() string    { return TypeActor }
func (a Actor) RecordID() uuid.UUID { return uuid.UUID(a.ID) }
func (a Actor) AuditID() string     { return a.ID.String() }

// CaseFile is the root of a matter's documents and timeline.
type CaseFile struct {
	ID          id.CaseFileID `json:"id"`
	Number      string        `json:"number"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	CreatedBy   *id.ActorID   `json:"created_by"`
	ModifiedBy  *id.ActorID   `json:"modified_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (CaseFile) EntityType() string           { return TypeCaseFile }
func (c CaseFile) RecordID() uuid.UUID        { return uuid.UUID(c.ID) }
func (c CaseFile) AuditID() string            { return c.ID.String() }
func (c CaseFile) CaseFileRef() id.CaseFileID { return c.ID }

// Folder groups documents within a case file. Folders nest.
type Folder struct {
	ID         id.FolderID   `json:"id"`
	CaseFileID id.CaseFileID `json:"case_file_id"`
	ParentID   *id.FolderID  `json:"parent_id"`
	Name       string        `json:"name"`
	CreatedBy  *id.ActorID   `json:"created_by"`
	ModifiedBy *id.ActorID   `json:"modified_by"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (Folder) EntityType() string    { return TypeFolder }
func (f Folder) RecordID() uuid.UUID { return uuid.UUID(f.ID) }
func (f Folder) AuditID() string     { return f.ID.String() }

// Document is a registered document inside a folder.
type Document struct {
	ID          id.DocumentID `json:"id"`
	CaseFileID  id.CaseFileID `json:"case_file_id"`
	FolderID    id.FolderID   `json:"folder_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CreatedBy   *id.ActorID   `json:"created_by"`
	ModifiedBy  *id.ActorID   `json:"modified_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Document) EntityType() string    { return TypeDocument }
func (d Document) RecordID() uuid.UUID { return uuid.UUID(d.ID) }
func (d Document) AuditID() string     { return d.ID.String() }

// Version is one filed revision of a document. Numbers start at 1.
type Version struct {
	ID         id.VersionID  `json:"id"`
	DocumentID id.DocumentID `json:"document_id"`
	Number     int           `json:"number"`
	FileName   string        `json:"file_name"`
	Checksum   string        `json:"checksum"`
	Notes      string        `json:"notes"`
	CreatedBy  *id.ActorID   `json:"created_by"`
	ModifiedBy *id.ActorID   `json:"modified_by"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (Version) EntityType() string    { return TypeVersion }
func (v Version) RecordID() uuid.UUID { return uuid.UUID(v.ID) }
func (v Version) AuditID() string     { return v.ID.String() }
